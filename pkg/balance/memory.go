package balance

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps balances in a map. Every operation holds the store lock,
// which makes Deduct trivially atomic.
type MemoryStore struct {
	mutex    sync.Mutex
	balances map[string]*UserBalance
	opts     *Options
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore ...
func NewMemoryStore(opts *Options) *MemoryStore {
	return &MemoryStore{
		balances: make(map[string]*UserBalance),
		opts:     opts,
	}
}

func (s *MemoryStore) getOrCreate(userID string) *UserBalance {
	b, ok := s.balances[userID]
	if !ok {
		b = &UserBalance{
			UserID:      userID,
			FreeMinutes: s.opts.SignupFreeMinutes,
			Credits:     s.opts.SignupCredits,
			UpdatedAt:   time.Now(),
		}
		s.balances[userID] = b
	}
	return b
}

// Get ...
func (s *MemoryStore) Get(_ context.Context, userID string) (*UserBalance, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b := s.getOrCreate(userID)
	copied := *b
	return &copied, nil
}

// Deduct ...
func (s *MemoryStore) Deduct(_ context.Context, userID string, minutes int, pricePerMinute float64) (*Deduction, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b := s.getOrCreate(userID)
	d := settle(b, minutes, pricePerMinute)
	b.UpdatedAt = time.Now()
	copied := *b
	d.Balance = &copied
	return d, nil
}

// AddCredits ...
func (s *MemoryStore) AddCredits(_ context.Context, userID string, amount float64) (*UserBalance, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b := s.getOrCreate(userID)
	b.Credits += amount
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

// GrantFreeMinutes ...
func (s *MemoryStore) GrantFreeMinutes(_ context.Context, userID string, minutes int) (*UserBalance, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b := s.getOrCreate(userID)
	b.FreeMinutes += minutes
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}
