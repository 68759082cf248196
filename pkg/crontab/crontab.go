package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Crontab wraps a cron runner with a re-entrancy guard per job: a tick that
// fires while the previous run is still going is skipped, not queued.
type Crontab struct {
	cron *cron.Cron
}

// New ...
func New() *Crontab {
	return &Crontab{cron: cron.New()}
}

// Register schedules fn at a fixed period.
func (t *Crontab) Register(period time.Duration, fn func()) error {
	running := false
	_, err := t.cron.AddFunc(fmt.Sprintf("@every %s", period.String()), func() {
		if running {
			return
		}
		running = true
		fn()
		running = false
	})
	return err
}

// Start ...
func (t *Crontab) Start() {
	t.cron.Start()
}

// Stop halts scheduling; the returned context is done when running jobs
// finish.
func (t *Crontab) Stop() context.Context {
	return t.cron.Stop()
}
