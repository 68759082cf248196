package session

import (
	"context"
	"time"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/crontab"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/utils"
)

// RegisterReconciler schedules the provisioning reconciler on the crontab.
func (m *Manager) RegisterReconciler(tab *crontab.Crontab) error {
	return tab.Register(m.opts.ReconcileInterval, func() {
		m.Reconcile(context.Background())
	})
}

// Reconcile sweeps provisioning sessions: polls the adapter for progress and
// errors out sessions that have been provisioning for too long. Ready and
// terminal sessions are untouched.
func (m *Manager) Reconcile(ctx context.Context) {
	m.mutex.RLock()
	handles := make([]*handle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.mutex.RUnlock()

	now := time.Now()
	for _, h := range handles {
		h.mutex.Lock()
		sess := h.sess
		if sess.Status == consts.SessionProvisioning {
			m.reconcileLocked(ctx, sess)
			if sess.Status == consts.SessionProvisioning &&
				now.Sub(sess.RequestedAt) > m.opts.ProvisioningTimeout {
				sess.Status = consts.SessionError
				sess.LastError = "provisioning timed out"
				sess.TerminatedAt = utils.Point(now)
				log.CtxWarnw(ctx, "session provisioning timed out", "session", sess.ID,
					"provider", sess.Provider, "age", now.Sub(sess.RequestedAt))
			}
		}
		h.mutex.Unlock()
	}
}
