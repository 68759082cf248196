package billing

import (
	"context"
	"sync"
	"time"

	"github.com/sneakyfree/sizzle/pkg/balance"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/metrics"
	"github.com/sneakyfree/sizzle/pkg/models"
	"github.com/sneakyfree/sizzle/pkg/utils"
)

// Engine accrues session cost and settles it against the user balance.
// Each metered session gets its own timer goroutine so one slow settlement
// never delays another session's tick. The engine mutates session accounting
// fields; callers serialize access to the session around each call.
type Engine struct {
	opts  *Options
	store balance.Store

	mutex  sync.Mutex
	timers map[string]chan struct{}
}

// New ...
func New(opts *Options, store balance.Store) *Engine {
	return &Engine{
		opts:   opts,
		store:  store,
		timers: make(map[string]chan struct{}),
	}
}

// StartMetering arms a periodic timer for a session. onTick runs once per
// interval; it is the caller's hook to lock the session, verify it is still
// active and call Charge. Arming an already-metered session is a no-op.
func (e *Engine) StartMetering(sessionID string, onTick func()) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if _, ok := e.timers[sessionID]; ok {
		return
	}
	stop := make(chan struct{})
	e.timers[sessionID] = stop

	go func() {
		ticker := time.NewTicker(e.opts.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onTick()
			}
		}
	}()
	log.Debugw("armed billing timer", "session", sessionID, "interval", e.opts.TickInterval)
}

// StopMetering disarms a session's timer. Safe to call twice.
func (e *Engine) StopMetering(sessionID string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if stop, ok := e.timers[sessionID]; ok {
		close(stop)
		delete(e.timers, sessionID)
		log.Debugw("disarmed billing timer", "session", sessionID)
	}
}

// Charge bills whole minutes to a session and deducts them from the user's
// balance. Total cost is recomputed from total minutes each time so repeated
// float additions cannot drift away from minutes * rate.
func (e *Engine) Charge(ctx context.Context, sess *models.PumpSession, minutes int) (*balance.Deduction, error) {
	now := time.Now()
	if minutes <= 0 {
		return &balance.Deduction{}, nil
	}

	sess.TotalMinutes += minutes
	sess.TotalCost = float64(sess.TotalMinutes) * sess.PricePerMinute
	sess.LastBilledAt = &now
	metrics.BilledMinutes.WithLabelValues(sess.Provider, sess.Tier).Add(float64(minutes))

	d, err := e.store.Deduct(ctx, sess.UserID, minutes, sess.PricePerMinute)
	if err != nil {
		return nil, err
	}
	if d.Shortfall > 0 {
		log.CtxWarnw(ctx, "balance could not cover the full charge", "session", sess.ID,
			"user", sess.UserID, "shortfall", d.Shortfall)
	}
	return d, nil
}

// SettlePartial bills the time elapsed since the last tick, rounded up to a
// whole minute. It is called on every exit from active so a partial minute
// of GPU occupancy is never under-billed.
func (e *Engine) SettlePartial(ctx context.Context, sess *models.PumpSession, now time.Time) (*balance.Deduction, error) {
	anchor := sess.StartedAt
	if sess.LastBilledAt != nil {
		anchor = sess.LastBilledAt
	}
	if anchor == nil {
		return &balance.Deduction{}, nil
	}
	return e.Charge(ctx, sess, utils.CeilMinutes(now.Sub(*anchor)))
}
