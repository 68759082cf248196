package provider

import (
	"context"
	"time"
)

// Provider is the uniform contract every GPU backend implements. Adapters
// convert transport failures into typed results at this boundary; no method
// propagates a raw network error as an unhealthy crash of the registry.
type Provider interface {
	// Name is the human-readable provider name.
	Name() string
	// Slug is the stable identifier the registry keys on.
	Slug() string

	// HealthCheck reports a point-in-time health snapshot. It must not
	// return an error on transport failure; that is reported via
	// Health.IsHealthy=false plus Health.Error.
	HealthCheck(ctx context.Context) *Health

	// GetCapabilities describes the static feature set of the backend.
	GetCapabilities(ctx context.Context) *Capabilities

	// GetAvailability lists current GPU offerings. An empty list is a valid
	// degraded answer for backends without real-time inventory.
	GetAvailability(ctx context.Context) []*GpuOffering

	// Provision allocates an instance for the request. Adapters label the
	// remote resource with the session id where the backend supports
	// lookup-by-label, so a retry after a timeout does not double-allocate.
	Provision(ctx context.Context, req *ProvisionRequest) *ProvisionResult

	// GetStatus returns the instance, or nil if the backend does not know
	// the id. nil with a nil error means "not found", not failure.
	GetStatus(ctx context.Context, instanceID string) (*GpuInstance, error)

	// Start resumes a stopped instance.
	Start(ctx context.Context, instanceID string) bool
	// Stop pauses the instance while preserving the allocation. Backends
	// without pause support declare so via capabilities and return false.
	Stop(ctx context.Context, instanceID string) bool
	// Terminate releases the allocation irreversibly.
	Terminate(ctx context.Context, instanceID string) bool

	// GetMetrics returns live utilization, or nil when the backend exposes
	// none. Adapters never fabricate numbers here.
	GetMetrics(ctx context.Context, instanceID string) *InstanceMetrics
}

// Health is a point-in-time provider health snapshot.
type Health struct {
	Provider      string         `json:"provider"`
	IsHealthy     bool           `json:"isHealthy"`
	LatencyMs     int64          `json:"latencyMs"`
	LastCheck     time.Time      `json:"lastCheck"`
	AvailableGpus []*GpuOffering `json:"availableGpus"`
	Error         string         `json:"error,omitempty"`
}

// GpuOffering is one rentable GPU type with its current price.
type GpuOffering struct {
	Type         string  `json:"type"`
	Available    int     `json:"available"`
	PricePerHour float64 `json:"pricePerHour"`
	Region       string  `json:"region,omitempty"`
}

// Capabilities is the slow-changing description of what a backend supports.
type Capabilities struct {
	Provider                string   `json:"provider"`
	Name                    string   `json:"name"`
	GpuTypes                []string `json:"gpuTypes"`
	Regions                 []string `json:"regions"`
	SupportsPreloadedModels bool     `json:"supportsPreloadedModels"`
	SupportsPause           bool     `json:"supportsPause"`
	SupportsSnapshot        bool     `json:"supportsSnapshot"`
	MinPricePerHour         float64  `json:"minPricePerHour"`
	MaxPricePerHour         float64  `json:"maxPricePerHour"`
}

// ProvisionRequest is the input to Provision.
type ProvisionRequest struct {
	Tier     string `json:"tier"`
	GpuType  string `json:"gpuType,omitempty"`
	GpuCount int    `json:"gpuCount,omitempty"`

	ModelID string `json:"modelId,omitempty"`

	Region             string  `json:"region,omitempty"`
	MaxWaitTimeSeconds int     `json:"maxWaitTimeSeconds,omitempty"`
	MaxPricePerHour    float64 `json:"maxPricePerHour,omitempty"`

	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// ProvisionResult is the outcome of Provision. A no-capacity condition is a
// normal unsuccessful result, not an adapter failure.
type ProvisionResult struct {
	Success               bool         `json:"success"`
	Instance              *GpuInstance `json:"instance,omitempty"`
	Error                 string       `json:"error,omitempty"`
	EstimatedReadySeconds int          `json:"estimatedReadySeconds,omitempty"`
}

// GpuInstance is the provider-side allocation. It is owned by the adapter
// that created it; callers mutate provider state only through adapter calls.
type GpuInstance struct {
	ID                 string `json:"id"`
	Provider           string `json:"provider"`
	ProviderInstanceID string `json:"providerInstanceId"`

	GpuType  string `json:"gpuType"`
	GpuCount int    `json:"gpuCount"`
	VramGb   int    `json:"vramGb"`

	Status string `json:"status"`

	AccessURL string `json:"accessUrl,omitempty"`
	SSHHost   string `json:"sshHost,omitempty"`
	SSHPort   int    `json:"sshPort,omitempty"`

	PricePerHour float64 `json:"pricePerHour"`

	CreatedAt time.Time  `json:"createdAt"`
	ReadyAt   *time.Time `json:"readyAt,omitempty"`

	Region   string            `json:"region,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// InstanceMetrics is a live utilization sample.
type InstanceMetrics struct {
	GpuUtilization float64 `json:"gpuUtilization"`
	MemoryUsed     float64 `json:"memoryUsed"`
	Temperature    float64 `json:"temperature"`
	PowerDraw      float64 `json:"powerDraw"`
}
