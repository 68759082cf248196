package balance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists balances in postgres. Deduct runs in a transaction with
// a row lock so concurrent settlements for the same user serialize.
type GormStore struct {
	db   *gorm.DB
	opts *Options
}

var _ Store = (*GormStore)(nil)

// NewGormStore ...
func NewGormStore(opts *Options) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to the balance database")
	}
	if err = db.AutoMigrate(&UserBalance{}); err != nil {
		return nil, errors.Wrap(err, "unable to migrate the balance schema")
	}
	return &GormStore{db: db, opts: opts}, nil
}

// ensure inserts the signup balance unless the row already exists, then
// returns the row, locked for update when tx holds a transaction.
func (s *GormStore) ensure(ctx context.Context, tx *gorm.DB, userID string, lock bool) (*UserBalance, error) {
	seed := UserBalance{
		UserID:      userID,
		FreeMinutes: s.opts.SignupFreeMinutes,
		Credits:     s.opts.SignupCredits,
		UpdatedAt:   time.Now(),
	}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return nil, errors.Wrap(err, "unable to seed the user balance")
	}

	query := tx.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var b UserBalance
	if err = query.Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, errors.Wrap(err, "unable to look up the user balance")
	}
	return &b, nil
}

// Get ...
func (s *GormStore) Get(ctx context.Context, userID string) (*UserBalance, error) {
	return s.ensure(ctx, s.db, userID, false)
}

// Deduct ...
func (s *GormStore) Deduct(ctx context.Context, userID string, minutes int, pricePerMinute float64) (*Deduction, error) {
	var d *Deduction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.ensure(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		d = settle(b, minutes, pricePerMinute)
		b.UpdatedAt = time.Now()
		if err = tx.WithContext(ctx).Save(b).Error; err != nil {
			return errors.Wrap(err, "unable to save the settled balance")
		}
		d.Balance = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// AddCredits ...
func (s *GormStore) AddCredits(ctx context.Context, userID string, amount float64) (*UserBalance, error) {
	return s.adjust(ctx, userID, func(b *UserBalance) { b.Credits += amount })
}

// GrantFreeMinutes ...
func (s *GormStore) GrantFreeMinutes(ctx context.Context, userID string, minutes int) (*UserBalance, error) {
	return s.adjust(ctx, userID, func(b *UserBalance) { b.FreeMinutes += minutes })
}

func (s *GormStore) adjust(ctx context.Context, userID string, apply func(*UserBalance)) (*UserBalance, error) {
	var res *UserBalance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.ensure(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		apply(b)
		b.UpdatedAt = time.Now()
		if err = tx.WithContext(ctx).Save(b).Error; err != nil {
			return errors.Wrap(err, "unable to save the adjusted balance")
		}
		res = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
