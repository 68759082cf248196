package vast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/provider"
	"github.com/sneakyfree/sizzle/pkg/tiers"
	"github.com/sneakyfree/sizzle/pkg/utils"
)

// Vast is the spot-market marketplace adapter. Offers are queried live and
// ranked by price ascending; a search with no matching offer is a normal
// no-capacity outcome, not an adapter failure. The backend exposes no
// instance metrics, so GetMetrics always reports nil.
type Vast struct {
	opts *Options
	cli  *http.Client
}

var _ provider.Provider = (*Vast)(nil)

// New ...
func New(opts *Options) *Vast {
	return &Vast{
		opts: opts,
		cli:  &http.Client{Timeout: opts.Timeout},
	}
}

// Name ...
func (v *Vast) Name() string {
	return "Vast.ai"
}

// Slug ...
func (v *Vast) Slug() string {
	return consts.ProviderVast
}

type offer struct {
	ID          int     `json:"id"`
	GpuName     string  `json:"gpu_name"`
	NumGpus     int     `json:"num_gpus"`
	GpuRam      int     `json:"gpu_ram"` // MB
	DphTotal    float64 `json:"dph_total"`
	Reliability float64 `json:"reliability"`
	Geolocation string  `json:"geolocation"`
	Verified    bool    `json:"verified"`
}

type instance struct {
	ID           int     `json:"id"`
	ActualStatus string  `json:"actual_status"`
	SSHHost      string  `json:"ssh_host"`
	SSHPort      int     `json:"ssh_port"`
	JupyterURL   string  `json:"jupyter_url"`
	StartDate    float64 `json:"start_date"`
	GpuName      string  `json:"gpu_name"`
	NumGpus      int     `json:"num_gpus"`
	DphTotal     float64 `json:"dph_total"`
	Label        string  `json:"label"`
}

// HealthCheck queries the offer listing and aggregates the first hundred
// offers into a per-GPU availability summary.
func (v *Vast) HealthCheck(ctx context.Context) *provider.Health {
	start := time.Now()
	health := &provider.Health{
		Provider:      consts.ProviderVast,
		LastCheck:     start,
		AvailableGpus: []*provider.GpuOffering{},
	}
	if !v.opts.Enable {
		health.Error = "provider disabled"
		return health
	}

	offers, err := v.searchOffers(ctx, map[string]interface{}{})
	health.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		health.Error = err.Error()
		return health
	}

	if len(offers) > 100 {
		offers = offers[:100]
	}
	aggregated := make(map[string]*provider.GpuOffering)
	types := make([]string, 0)
	for _, o := range offers {
		existing, ok := aggregated[o.GpuName]
		if !ok {
			aggregated[o.GpuName] = &provider.GpuOffering{
				Type:         o.GpuName,
				Available:    o.NumGpus,
				PricePerHour: o.DphTotal,
			}
			types = append(types, o.GpuName)
			continue
		}
		existing.Available += o.NumGpus
		if o.DphTotal < existing.PricePerHour {
			existing.PricePerHour = o.DphTotal
		}
	}
	for _, t := range types {
		health.AvailableGpus = append(health.AvailableGpus, aggregated[t])
	}
	health.IsHealthy = true
	return health
}

// GetCapabilities ...
func (v *Vast) GetCapabilities(_ context.Context) *provider.Capabilities {
	return &provider.Capabilities{
		Provider: consts.ProviderVast,
		Name:     v.Name(),
		GpuTypes: []string{
			"RTX 4090", "RTX 3090", "RTX 3080",
			"A100 40GB", "A100 80GB",
			"H100 80GB", "H100 NVLink",
			"A6000", "A5000", "A4000",
		},
		Regions:                 []string{"US", "EU", "ASIA"},
		SupportsPreloadedModels: false,
		SupportsPause:           false,
		SupportsSnapshot:        false,
		MinPricePerHour:         0.10,
		MaxPricePerHour:         10.00,
	}
}

// GetAvailability lists one offering per GPU type and region from the live
// offer feed. Errors degrade to an empty list.
func (v *Vast) GetAvailability(ctx context.Context) []*provider.GpuOffering {
	if !v.opts.Enable {
		return []*provider.GpuOffering{}
	}
	offers, err := v.searchOffers(ctx, map[string]interface{}{})
	if err != nil {
		log.Debugw("failed to list vast offers", "err", err)
		return []*provider.GpuOffering{}
	}
	if len(offers) > 200 {
		offers = offers[:200]
	}

	res := make([]*provider.GpuOffering, 0)
	seen := make(map[string]struct{})
	for _, o := range offers {
		key := o.GpuName + "-" + o.Geolocation
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, &provider.GpuOffering{
			Type:         o.GpuName,
			Available:    o.NumGpus,
			PricePerHour: o.DphTotal,
			Region:       o.Geolocation,
		})
	}
	return res
}

// Provision searches for the cheapest reliable offer matching the tier's
// GPU set and accepts it. The new contract is labeled with the session id,
// so a retried provision can be found instead of double-allocated.
func (v *Vast) Provision(ctx context.Context, req *provider.ProvisionRequest) *provider.ProvisionResult {
	if !v.opts.Enable {
		return &provider.ProvisionResult{Success: false, Error: "provider disabled"}
	}

	tier, err := tiers.Get(req.Tier)
	if err != nil {
		return &provider.ProvisionResult{Success: false, Error: err.Error()}
	}

	gpuCount := req.GpuCount
	if gpuCount == 0 {
		gpuCount = 1
	}
	query := map[string]interface{}{
		"verified":    map[string]interface{}{"eq": true},
		"rentable":    map[string]interface{}{"eq": true},
		"num_gpus":    map[string]interface{}{"gte": gpuCount},
		"gpu_ram":     map[string]interface{}{"gte": tier.MinVramGb * 1024},
		"reliability": map[string]interface{}{"gte": v.opts.MinReliability},
	}
	offers, err := v.searchOffers(ctx, query)
	if err != nil {
		return &provider.ProvisionResult{Success: false, Error: err.Error()}
	}

	sort.Slice(offers, func(i, j int) bool { return offers[i].DphTotal < offers[j].DphTotal })

	var matched *offer
	for i := range offers {
		if req.MaxPricePerHour > 0 && offers[i].DphTotal > req.MaxPricePerHour {
			continue
		}
		for _, want := range tier.GpuOptions {
			if strings.Contains(strings.ToLower(offers[i].GpuName), strings.ToLower(want)) {
				matched = &offers[i]
				break
			}
		}
		if matched != nil {
			break
		}
	}
	if matched == nil {
		// normal no-capacity outcome
		return &provider.ProvisionResult{
			Success: false,
			Error:   fmt.Sprintf("no available GPUs matching tier %q", req.Tier),
		}
	}

	var created struct {
		NewContract int `json:"new_contract"`
	}
	body := map[string]interface{}{
		"client_id": "sizzle",
		"image":     "nvidia/cuda:12.3.1-devel-ubuntu22.04",
		"disk":      50,
		"runtype":   "args",
		"label":     "pump-" + req.SessionID,
		"extra":     map[string]string{"sessionId": req.SessionID},
	}
	if err := v.doRequest(ctx, http.MethodPut, fmt.Sprintf("/asks/%d/", matched.ID), body, &created); err != nil {
		return &provider.ProvisionResult{Success: false, Error: err.Error()}
	}

	inst, err := v.GetStatus(ctx, strconv.Itoa(created.NewContract))
	if err != nil || inst == nil {
		return &provider.ProvisionResult{Success: false, Error: "failed to get instance status after creation"}
	}
	return &provider.ProvisionResult{
		Success:               true,
		Instance:              inst,
		EstimatedReadySeconds: 60,
	}
}

// GetStatus maps vast's actual_status onto the canonical statuses.
func (v *Vast) GetStatus(ctx context.Context, instanceID string) (*provider.GpuInstance, error) {
	if !v.opts.Enable {
		return nil, nil
	}

	var resp struct {
		Instances []instance `json:"instances"`
	}
	if err := v.doRequest(ctx, http.MethodGet, "/instances/", nil, &resp); err != nil {
		return nil, err
	}
	for _, inst := range resp.Instances {
		if strconv.Itoa(inst.ID) != instanceID {
			continue
		}
		status := consts.InstancePending
		switch inst.ActualStatus {
		case "running":
			status = consts.InstanceRunning
		case "loading":
			status = consts.InstanceProvisioning
		case "exited":
			status = consts.InstanceStopped
		case "error":
			status = consts.InstanceError
		}
		res := &provider.GpuInstance{
			ID:                 instanceID,
			Provider:           consts.ProviderVast,
			ProviderInstanceID: instanceID,
			GpuType:            inst.GpuName,
			GpuCount:           inst.NumGpus,
			Status:             status,
			AccessURL:          inst.JupyterURL,
			SSHHost:            inst.SSHHost,
			SSHPort:            inst.SSHPort,
			PricePerHour:       inst.DphTotal,
			CreatedAt:          time.Unix(int64(inst.StartDate), 0),
		}
		if status == consts.InstanceRunning {
			res.ReadyAt = utils.Point(time.Now())
		}
		return res, nil
	}
	return nil, nil
}

// Start ...
func (v *Vast) Start(ctx context.Context, instanceID string) bool {
	return v.setState(ctx, instanceID, "running")
}

// Stop ...
func (v *Vast) Stop(ctx context.Context, instanceID string) bool {
	return v.setState(ctx, instanceID, "stopped")
}

// Terminate destroys the contract.
func (v *Vast) Terminate(ctx context.Context, instanceID string) bool {
	if !v.opts.Enable {
		return false
	}
	if err := v.doRequest(ctx, http.MethodDelete, "/instances/"+instanceID+"/", nil, nil); err != nil {
		log.Errorw("failed to terminate vast instance", "instance", instanceID, "err", err)
		return false
	}
	return true
}

// GetMetrics always reports nil: vast exposes no metrics API, and the
// adapter does not fabricate numbers.
func (v *Vast) GetMetrics(_ context.Context, _ string) *provider.InstanceMetrics {
	return nil
}

func (v *Vast) setState(ctx context.Context, instanceID, state string) bool {
	if !v.opts.Enable {
		return false
	}
	if err := v.doRequest(ctx, http.MethodPut, "/instances/"+instanceID+"/", map[string]string{"state": state}, nil); err != nil {
		log.Errorw("failed to set vast instance state", "instance", instanceID, "state", state, "err", err)
		return false
	}
	return true
}

func (v *Vast) searchOffers(ctx context.Context, query map[string]interface{}) ([]offer, error) {
	query["order"] = [][]string{{"dph_total", "asc"}}
	encoded, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Offers []offer `json:"offers"`
	}
	if err := v.doRequest(ctx, http.MethodGet, "/bundles?q="+url.QueryEscape(string(encoded)), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Offers, nil
}

func (v *Vast) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		content, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(content)
	}
	request, err := http.NewRequestWithContext(ctx, method, v.opts.Endpoint+path, reader)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+v.opts.APIKey)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := v.cli.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode > 399 {
		message, _ := io.ReadAll(response.Body)
		return fmt.Errorf("vast api error: %d: %s", response.StatusCode, message)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(out)
}
