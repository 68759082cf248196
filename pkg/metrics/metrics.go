package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SessionsCreated counts createSession calls grouped by tier and outcome.
	SessionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sizzle",
		Name:      "sessions_created_total",
		Help:      "Total session creation attempts grouped by tier and outcome.",
	}, []string{"tier", "outcome"})

	// ActiveSessions tracks sessions currently in the active status.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sizzle",
		Name:      "active_sessions",
		Help:      "Number of sessions currently being metered.",
	})

	// BilledMinutes counts minutes billed, grouped by provider and tier.
	BilledMinutes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sizzle",
		Name:      "billed_minutes_total",
		Help:      "Total minutes billed grouped by provider and tier.",
	}, []string{"provider", "tier"})

	// ProviderHealthy reports the last observed health per provider.
	ProviderHealthy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sizzle",
		Name:      "provider_healthy",
		Help:      "Whether the provider's last health check succeeded.",
	}, []string{"provider"})

	// ProvisionFailures counts provisioning attempts that ended in error.
	ProvisionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sizzle",
		Name:      "provision_failures_total",
		Help:      "Total failed provisioning attempts grouped by provider.",
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(
		SessionsCreated,
		ActiveSessions,
		BilledMinutes,
		ProviderHealthy,
		ProvisionFailures,
	)
}
