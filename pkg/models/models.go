package models

import (
	"time"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/provider"
)

// PumpSession is the user-facing unit of rental. Records are never deleted,
// only transitioned into a terminal status and retained for audit.
type PumpSession struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Tier      string `json:"tier"`
	ModelID   string `json:"modelId,omitempty"`
	ModelName string `json:"modelName,omitempty"`

	Provider           string `json:"provider,omitempty"`
	ProviderInstanceID string `json:"providerInstanceId,omitempty"`
	GpuType            string `json:"gpuType,omitempty"`
	GpuCount           int    `json:"gpuCount,omitempty"`
	AccessURL          string `json:"accessUrl,omitempty"`

	Status string `json:"status"`

	// PricePerMinute is derived from the realized instance and may differ
	// from the tier's nominal rate.
	PricePerMinute float64 `json:"pricePerMinute"`
	TotalMinutes   int     `json:"totalMinutes"`
	TotalCost      float64 `json:"totalCost"`
	WasFreeMinutes bool    `json:"wasFreeMinutes"`

	RequestedAt   time.Time  `json:"requestedAt"`
	ProvisionedAt *time.Time `json:"provisionedAt,omitempty"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	PausedAt      *time.Time `json:"pausedAt,omitempty"`
	TerminatedAt  *time.Time `json:"terminatedAt,omitempty"`
	LastBilledAt  *time.Time `json:"lastBilledAt,omitempty"`

	LastError string `json:"lastError,omitempty"`

	// LastMetrics is the last-known utilization sample, kept so the session
	// view can answer metrics queries after the instance goes away.
	LastMetrics *provider.InstanceMetrics `json:"lastMetrics,omitempty"`
}

// Terminal reports whether the session has reached an absorbing status.
func (s *PumpSession) Terminal() bool {
	return s.Status == consts.SessionTerminated || s.Status == consts.SessionError
}

// SessionSummary is the final cost report returned by stop.
type SessionSummary struct {
	SessionID    string     `json:"sessionId"`
	Status       string     `json:"status"`
	TotalMinutes int        `json:"totalMinutes"`
	TotalCost    float64    `json:"totalCost"`
	TerminatedAt *time.Time `json:"terminatedAt,omitempty"`
}

// Stats is an aggregate view over all sessions.
type Stats struct {
	TotalSessions      int            `json:"totalSessions"`
	ActiveSessions     int            `json:"activeSessions"`
	ReadySessions      int            `json:"readySessions"`
	TerminatedSessions int            `json:"terminatedSessions"`
	TotalMinutes       int            `json:"totalMinutes"`
	TotalRevenue       float64        `json:"totalRevenue"`
	ByTier             map[string]int `json:"byTier"`
}
