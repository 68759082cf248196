package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sneakyfree/sizzle/pkg/apperrors"
	"github.com/sneakyfree/sizzle/pkg/balance"
	"github.com/sneakyfree/sizzle/pkg/billing"
	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/metrics"
	"github.com/sneakyfree/sizzle/pkg/models"
	"github.com/sneakyfree/sizzle/pkg/provider"
	"github.com/sneakyfree/sizzle/pkg/registry"
	"github.com/sneakyfree/sizzle/pkg/selector"
	"github.com/sneakyfree/sizzle/pkg/tiers"
	"github.com/sneakyfree/sizzle/pkg/utils"
)

// Manager owns session records and drives the lifecycle state machine.
// Every session has a handle whose lock serializes operations on that
// session, so a stop and a billing tick can never interleave.
type Manager struct {
	opts     *Options
	registry *registry.Registry
	selector *selector.Selector
	billing  *billing.Engine
	balances balance.Store

	mutex   sync.RWMutex
	handles map[string]*handle
}

type handle struct {
	mutex sync.Mutex
	sess  *models.PumpSession
}

// NewManager ...
func NewManager(opts *Options, reg *registry.Registry, sel *selector.Selector,
	engine *billing.Engine, balances balance.Store) *Manager {
	return &Manager{
		opts:     opts,
		registry: reg,
		selector: sel,
		billing:  engine,
		balances: balances,
		handles:  make(map[string]*handle),
	}
}

// CreateRequest ...
type CreateRequest struct {
	UserID          string  `json:"userId"`
	Tier            string  `json:"tier"`
	ModelID         string  `json:"modelId,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	Region          string  `json:"region,omitempty"`
	MaxPricePerHour float64 `json:"maxPricePerHour,omitempty"`
}

func newSessionID() string {
	return "pump_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// splitPinnedModel peels a "slug:model" pin off the model id. Model names
// themselves contain colons (ollama tags), so the prefix only counts as a
// pin when it names a registered provider.
func (m *Manager) splitPinnedModel(modelID string) (pinned, model string) {
	before, after, found := strings.Cut(modelID, ":")
	if found {
		if _, ok := m.registry.GetBySlug(before); ok {
			return before, after
		}
	}
	return "", modelID
}

// Create validates the request, gates on balance, provisions a GPU through
// the selection engine and persists the resulting session.
func (m *Manager) Create(ctx context.Context, req *CreateRequest) (*models.PumpSession, error) {
	tier, err := tiers.Get(req.Tier)
	if err != nil {
		metrics.SessionsCreated.WithLabelValues(req.Tier, "invalid_tier").Inc()
		return nil, apperrors.New(consts.CodeInvalidTier, "invalid tier: %s", req.Tier)
	}

	userBalance, err := m.balances.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if userBalance.AffordableMinutes(tier.PricePerMinute) < consts.MinimumSessionMinutes {
		metrics.SessionsCreated.WithLabelValues(req.Tier, "insufficient_balance").Inc()
		return nil, apperrors.New(consts.CodeInsufficientBalance,
			"balance covers less than %d minutes of the %s tier, top up and retry",
			consts.MinimumSessionMinutes, tier.Key)
	}

	pinned := req.Provider
	modelID := req.ModelID
	if pinned == "" {
		pinned, modelID = m.splitPinnedModel(modelID)
	}

	now := time.Now()
	sess := &models.PumpSession{
		ID:             newSessionID(),
		UserID:         req.UserID,
		Tier:           tier.Key,
		ModelID:        modelID,
		Status:         consts.SessionPending,
		PricePerMinute: tier.PricePerMinute,
		WasFreeMinutes: userBalance.FreeMinutes > 0,
		RequestedAt:    now,
	}
	h := &handle{sess: sess}
	m.mutex.Lock()
	m.handles[sess.ID] = h
	m.mutex.Unlock()

	h.mutex.Lock()
	defer h.mutex.Unlock()
	sess.Status = consts.SessionProvisioning

	provisionCtx, cancel := context.WithTimeout(ctx, m.opts.ProvisionTimeout)
	defer cancel()
	result, slug, err := m.selector.Provision(provisionCtx, &provider.ProvisionRequest{
		Tier:               tier.Key,
		ModelID:            modelID,
		Region:             req.Region,
		MaxPricePerHour:    req.MaxPricePerHour,
		MaxWaitTimeSeconds: int(m.opts.ProvisionTimeout.Seconds()),
		SessionID:          sess.ID,
		UserID:             req.UserID,
	}, pinned)
	if err != nil {
		return nil, m.failProvisioning(sess, tier.Key, err.Error(), err == selector.ErrNoCapacity)
	}
	if !result.Success {
		metrics.ProvisionFailures.WithLabelValues(slug).Inc()
		return nil, m.failProvisioning(sess, tier.Key, result.Error, false)
	}

	instance := result.Instance
	sess.Provider = slug
	sess.ProviderInstanceID = instance.ProviderInstanceID
	sess.GpuType = instance.GpuType
	sess.GpuCount = instance.GpuCount
	sess.AccessURL = instance.AccessURL
	// bill at the realized instance rate, not the tier's nominal one
	if instance.PricePerHour > 0 {
		sess.PricePerMinute = instance.PricePerHour / 60
	}
	if instance.Status == consts.InstanceRunning {
		sess.Status = consts.SessionReady
		sess.ProvisionedAt = utils.Point(time.Now())
	}

	metrics.SessionsCreated.WithLabelValues(tier.Key, "success").Inc()
	log.CtxInfow(ctx, "created session", "session", sess.ID, "user", req.UserID,
		"tier", tier.Key, "provider", slug, "status", sess.Status)
	return snapshot(sess), nil
}

func (m *Manager) failProvisioning(sess *models.PumpSession, tier, reason string, noCapacity bool) error {
	sess.Status = consts.SessionError
	sess.LastError = reason
	sess.TerminatedAt = utils.Point(time.Now())
	if noCapacity {
		metrics.SessionsCreated.WithLabelValues(tier, "no_capacity").Inc()
		return apperrors.New(consts.CodeNoCapacity, "%s", reason)
	}
	metrics.SessionsCreated.WithLabelValues(tier, "provisioning_failed").Inc()
	return apperrors.New(consts.CodeProvisioningFailed, "%s", reason)
}

// Start transitions ready or paused into active and arms metering. Resuming
// from paused asks the adapter to start the backend first.
func (m *Manager) Start(ctx context.Context, sessionID, userID string) (*models.PumpSession, error) {
	h, err := m.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	sess := h.sess

	if sess.Status != consts.SessionReady && sess.Status != consts.SessionPaused {
		return nil, apperrors.New(consts.CodeInvalidState, "cannot start a session in status %s", sess.Status)
	}

	if sess.Status == consts.SessionPaused {
		if p, ok := m.registry.GetBySlug(sess.Provider); ok {
			if !p.Start(ctx, sess.ProviderInstanceID) {
				log.CtxWarnw(ctx, "adapter declined resume, continuing anyway",
					"session", sess.ID, "provider", sess.Provider)
			}
		}
		sess.PausedAt = nil
	}

	now := time.Now()
	if sess.StartedAt == nil {
		sess.StartedAt = &now
	}
	sess.LastBilledAt = &now
	sess.Status = consts.SessionActive
	metrics.ActiveSessions.Inc()

	m.billing.StartMetering(sess.ID, func() { m.tick(sess.ID) })
	log.CtxInfow(ctx, "started session", "session", sess.ID, "provider", sess.Provider)
	return snapshot(sess), nil
}

// tick is the per-minute metering callback. A tick racing a stop sees a
// non-active status under the handle lock and does nothing.
func (m *Manager) tick(sessionID string) {
	h, ok := m.handle(sessionID)
	if !ok {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.sess.Status != consts.SessionActive {
		return
	}
	if _, err := m.billing.Charge(context.Background(), h.sess, 1); err != nil {
		log.Errorw("failed to settle billing tick", "session", sessionID, "err", err)
	}
}

// Pause settles elapsed time and suspends the backend. Only providers that
// declare pause support accept it.
func (m *Manager) Pause(ctx context.Context, sessionID, userID string) (*models.PumpSession, error) {
	h, err := m.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	sess := h.sess

	if sess.Status != consts.SessionActive {
		return nil, apperrors.New(consts.CodeInvalidState, "cannot pause a session in status %s", sess.Status)
	}
	p, ok := m.registry.GetBySlug(sess.Provider)
	if !ok {
		return nil, apperrors.New(consts.CodeInvalidState, "provider %s is no longer registered", sess.Provider)
	}
	if caps := p.GetCapabilities(ctx); caps == nil || !caps.SupportsPause {
		return nil, apperrors.New(consts.CodeInvalidState, "provider %s does not support pause", sess.Provider)
	}

	if _, err = m.billing.SettlePartial(ctx, sess, time.Now()); err != nil {
		log.CtxErrorw(ctx, "failed to settle on pause", "session", sess.ID, "err", err)
	}
	m.billing.StopMetering(sess.ID)

	if !p.Stop(ctx, sess.ProviderInstanceID) {
		log.CtxWarnw(ctx, "adapter declined pause, session pauses locally anyway",
			"session", sess.ID, "provider", sess.Provider)
	}

	sess.PausedAt = utils.Point(time.Now())
	sess.Status = consts.SessionPaused
	metrics.ActiveSessions.Dec()
	log.CtxInfow(ctx, "paused session", "session", sess.ID)
	return snapshot(sess), nil
}

// Stop terminates a session from any non-terminal status and returns the
// final cost summary. Adapter teardown failures are logged, never surfaced:
// the user's session is over and their accounting is settled regardless.
func (m *Manager) Stop(ctx context.Context, sessionID, userID string) (*models.SessionSummary, error) {
	h, err := m.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	sess := h.sess

	if sess.Terminal() {
		return nil, apperrors.New(consts.CodeInvalidState, "session %s is already %s", sess.ID, sess.Status)
	}

	m.billing.StopMetering(sess.ID)
	wasActive := sess.Status == consts.SessionActive
	if wasActive {
		if _, err = m.billing.SettlePartial(ctx, sess, time.Now()); err != nil {
			log.CtxErrorw(ctx, "failed to settle on stop", "session", sess.ID, "err", err)
		}
		metrics.ActiveSessions.Dec()
	}

	if sess.Provider != "" && sess.ProviderInstanceID != "" {
		if p, ok := m.registry.GetBySlug(sess.Provider); ok {
			if !p.Terminate(ctx, sess.ProviderInstanceID) {
				log.CtxWarnw(ctx, "adapter failed to terminate instance",
					"session", sess.ID, "provider", sess.Provider, "instance", sess.ProviderInstanceID)
			}
		}
	}

	sess.TerminatedAt = utils.Point(time.Now())
	sess.Status = consts.SessionTerminated
	log.CtxInfow(ctx, "stopped session", "session", sess.ID,
		"totalMinutes", sess.TotalMinutes, "totalCost", sess.TotalCost)

	return &models.SessionSummary{
		SessionID:    sess.ID,
		Status:       sess.Status,
		TotalMinutes: sess.TotalMinutes,
		TotalCost:    sess.TotalCost,
		TerminatedAt: sess.TerminatedAt,
	}, nil
}

// Get returns the session view, reconciled against the adapter while the
// session is provisioning. Reconciliation only moves status forward; a
// stale remote read never regresses it.
func (m *Manager) Get(ctx context.Context, sessionID, userID string) (*models.PumpSession, error) {
	h, err := m.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	m.reconcileLocked(ctx, h.sess)
	return snapshot(h.sess), nil
}

func (m *Manager) reconcileLocked(ctx context.Context, sess *models.PumpSession) {
	if sess.Status != consts.SessionProvisioning || sess.ProviderInstanceID == "" {
		return
	}
	p, ok := m.registry.GetBySlug(sess.Provider)
	if !ok {
		return
	}
	instance, err := p.GetStatus(ctx, sess.ProviderInstanceID)
	if err != nil {
		log.CtxWarnw(ctx, "failed to poll instance status", "session", sess.ID, "err", err)
		return
	}
	if instance == nil {
		return
	}
	if instance.AccessURL != "" {
		sess.AccessURL = instance.AccessURL
	}
	switch instance.Status {
	case consts.InstanceRunning:
		sess.Status = consts.SessionReady
		sess.ProvisionedAt = utils.Point(time.Now())
		log.CtxInfow(ctx, "session became ready", "session", sess.ID, "provider", sess.Provider)
	case consts.InstanceError:
		sess.Status = consts.SessionError
		sess.LastError = "instance entered error state"
		sess.TerminatedAt = utils.Point(time.Now())
	}
}

// List returns the user's sessions, newest first.
func (m *Manager) List(_ context.Context, userID string) []*models.PumpSession {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	res := make([]*models.PumpSession, 0)
	for _, h := range m.handles {
		h.mutex.Lock()
		if h.sess.UserID == userID {
			res = append(res, snapshot(h.sess))
		}
		h.mutex.Unlock()
	}
	sortSessions(res)
	return res
}

// Metrics returns live utilization while the instance exists, or the
// last-known sample afterwards.
func (m *Manager) Metrics(ctx context.Context, sessionID, userID string) (*provider.InstanceMetrics, error) {
	h, err := m.owned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	sess := h.sess

	if !sess.Terminal() && sess.Provider != "" && sess.ProviderInstanceID != "" {
		if p, ok := m.registry.GetBySlug(sess.Provider); ok {
			if sample := p.GetMetrics(ctx, sess.ProviderInstanceID); sample != nil {
				sess.LastMetrics = sample
			}
		}
	}
	return sess.LastMetrics, nil
}

// Stats aggregates over every session ever created by this process.
func (m *Manager) Stats(_ context.Context) *models.Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	stats := &models.Stats{ByTier: make(map[string]int)}
	for _, h := range m.handles {
		h.mutex.Lock()
		sess := h.sess
		stats.TotalSessions++
		stats.ByTier[sess.Tier]++
		stats.TotalMinutes += sess.TotalMinutes
		stats.TotalRevenue += sess.TotalCost
		switch sess.Status {
		case consts.SessionActive:
			stats.ActiveSessions++
		case consts.SessionReady:
			stats.ReadySessions++
		case consts.SessionTerminated:
			stats.TerminatedSessions++
		}
		h.mutex.Unlock()
	}
	return stats
}

func (m *Manager) handle(sessionID string) (*handle, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	h, ok := m.handles[sessionID]
	return h, ok
}

func (m *Manager) owned(sessionID, userID string) (*handle, error) {
	h, ok := m.handle(sessionID)
	if !ok {
		return nil, apperrors.New(consts.CodeSessionNotFound, "session %s not found", sessionID)
	}
	h.mutex.Lock()
	owner := h.sess.UserID
	h.mutex.Unlock()
	if owner != userID {
		return nil, apperrors.New(consts.CodeForbidden, "session %s belongs to another user", sessionID)
	}
	return h, nil
}

// snapshot copies a session so callers never share the mutable record.
func snapshot(sess *models.PumpSession) *models.PumpSession {
	copied := *sess
	return &copied
}

func sortSessions(sessions []*models.PumpSession) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].RequestedAt.After(sessions[j].RequestedAt)
	})
}
