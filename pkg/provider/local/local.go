package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/provider"
	"github.com/sneakyfree/sizzle/pkg/utils"
)

// entryTier is the only tier the single local GPU can serve.
const entryTier = "starter"

const region = "local"

// Local is the adapter for the one physical GPU on this machine. It has a
// single slot: at most one session may hold the GPU at a time, and the slot
// claim is a test-and-set under the mutex to prevent double-booking.
type Local struct {
	opts *Options
	cli  *http.Client

	mutex    sync.Mutex
	instance *provider.GpuInstance

	nvml *nvmlSampler
}

var _ provider.Provider = (*Local)(nil)

// New ...
func New(opts *Options) *Local {
	return &Local{
		opts: opts,
		cli:  &http.Client{Timeout: 10 * time.Second},
		nvml: newNvmlSampler(),
	}
}

// Name ...
func (l *Local) Name() string {
	return "Veron 1 Local"
}

// Slug ...
func (l *Local) Slug() string {
	return consts.ProviderLocal
}

// HealthCheck probes the local ollama runtime. Latency is the wall-clock
// time of the probe itself.
func (l *Local) HealthCheck(ctx context.Context) *provider.Health {
	start := time.Now()
	health := &provider.Health{
		Provider:      consts.ProviderLocal,
		LastCheck:     start,
		AvailableGpus: []*provider.GpuOffering{},
	}
	if !l.opts.Enable {
		health.Error = "provider disabled"
		return health
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.opts.OllamaURL+"/api/tags", nil)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	resp, err := l.cli.Do(req)
	health.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		health.Error = err.Error()
		return health
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		health.Error = fmt.Sprintf("ollama responded with %d", resp.StatusCode)
		return health
	}

	health.IsHealthy = true
	health.AvailableGpus = l.GetAvailability(ctx)
	return health
}

// GetCapabilities ...
func (l *Local) GetCapabilities(_ context.Context) *provider.Capabilities {
	return &provider.Capabilities{
		Provider:                consts.ProviderLocal,
		Name:                    l.Name(),
		GpuTypes:                []string{l.opts.GpuType},
		Regions:                 []string{region},
		SupportsPreloadedModels: true,
		// the local GPU has no pause: Stop is a declared no-op-false,
		// only Terminate frees the slot
		SupportsPause:    false,
		SupportsSnapshot: false,
		MinPricePerHour:  l.opts.PricePerHour,
		MaxPricePerHour:  l.opts.PricePerHour,
	}
}

// GetAvailability reports the single slot: one offering when free, zero
// when occupied.
func (l *Local) GetAvailability(_ context.Context) []*provider.GpuOffering {
	l.mutex.Lock()
	occupied := l.instance != nil
	l.mutex.Unlock()

	available := 1
	if occupied {
		available = 0
	}
	return []*provider.GpuOffering{{
		Type:         l.opts.GpuType,
		Available:    available,
		PricePerHour: l.opts.PricePerHour,
		Region:       region,
	}}
}

// Provision claims the slot. Readiness is instantaneous: there is no remote
// allocation, the GPU is already here.
func (l *Local) Provision(ctx context.Context, req *provider.ProvisionRequest) *provider.ProvisionResult {
	if !l.opts.Enable {
		return &provider.ProvisionResult{Success: false, Error: "provider disabled"}
	}
	if req.Tier != entryTier {
		return &provider.ProvisionResult{
			Success: false,
			Error:   fmt.Sprintf("local provider only supports %q tier, requested: %s", entryTier, req.Tier),
		}
	}

	now := time.Now()
	instance := &provider.GpuInstance{
		ID:                 req.SessionID,
		Provider:           consts.ProviderLocal,
		ProviderInstanceID: "local_" + req.SessionID,
		GpuType:            l.opts.GpuType,
		GpuCount:           1,
		VramGb:             l.opts.VramGb,
		Status:             consts.InstanceRunning,
		AccessURL:          l.opts.OllamaURL,
		PricePerHour:       l.opts.PricePerHour,
		CreatedAt:          now,
		ReadyAt:            utils.Point(now),
		Region:             region,
	}
	if req.ModelID != "" {
		instance.Metadata = map[string]string{"modelId": req.ModelID}
	}

	l.mutex.Lock()
	if l.instance != nil {
		l.mutex.Unlock()
		return &provider.ProvisionResult{
			Success: false,
			Error:   "local GPU is currently in use, try another provider",
		}
	}
	l.instance = instance
	l.mutex.Unlock()

	if req.ModelID != "" {
		// best-effort, the model can still be pulled later
		if err := l.preloadModel(ctx, req.ModelID); err != nil {
			log.CtxWarnw(ctx, "failed to preload model on local GPU", "model", req.ModelID, "err", err)
		}
	}

	return &provider.ProvisionResult{
		Success:               true,
		Instance:              instance,
		EstimatedReadySeconds: 0,
	}
}

// GetStatus ...
func (l *Local) GetStatus(_ context.Context, instanceID string) (*provider.GpuInstance, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.instance == nil || l.instance.ProviderInstanceID != instanceID {
		return nil, nil
	}
	res := *l.instance
	return &res, nil
}

// Start ...
func (l *Local) Start(_ context.Context, instanceID string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.instance == nil || l.instance.ProviderInstanceID != instanceID {
		return false
	}
	l.instance.Status = consts.InstanceRunning
	return true
}

// Stop always fails: the local GPU cannot pause, as declared via
// capabilities. Terminate is the only way to release the slot.
func (l *Local) Stop(_ context.Context, _ string) bool {
	return false
}

// Terminate frees the slot.
func (l *Local) Terminate(_ context.Context, instanceID string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.instance == nil || l.instance.ProviderInstanceID != instanceID {
		return false
	}
	l.instance = nil
	return true
}

// GetMetrics samples the physical GPU through NVML. Returns nil when NVML
// is unavailable on this machine.
func (l *Local) GetMetrics(_ context.Context, instanceID string) *provider.InstanceMetrics {
	l.mutex.Lock()
	known := l.instance != nil && l.instance.ProviderInstanceID == instanceID
	l.mutex.Unlock()
	if !known {
		return nil
	}
	return l.nvml.sample()
}

func (l *Local) preloadModel(ctx context.Context, modelID string) error {
	body, err := json.Marshal(map[string]string{"name": ollamaModelName(modelID)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.opts.OllamaURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := l.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to pull model: %s", resp.Status)
	}
	return nil
}

// ollamaModelName maps catalog model ids onto ollama model names; unknown
// ids pass through unchanged.
func ollamaModelName(modelID string) string {
	modelMap := map[string]string{
		"llama-3-8b":     "llama3:8b",
		"llama-3-70b":    "llama3:70b",
		"mistral-7b":     "mistral:7b",
		"codellama-34b":  "codellama:34b",
		"deepseek-coder": "deepseek-coder:33b",
		"qwen-72b":       "qwen:72b",
	}
	if name, ok := modelMap[modelID]; ok {
		return name
	}
	return modelID
}
