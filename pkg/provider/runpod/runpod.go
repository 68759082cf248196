package runpod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/provider"
	"github.com/sneakyfree/sizzle/pkg/tiers"
	"github.com/sneakyfree/sizzle/pkg/utils"
)

// gpuPricing is the known runpod on-demand price table. The backend exposes
// no real-time inventory, so availability is synthesized from this table.
var gpuPricing = map[string]float64{
	"RTX 4090":       0.44,
	"RTX 3090":       0.22,
	"A100 80GB PCIe": 1.89,
	"A100 80GB SXM":  1.99,
	"H100 80GB":      2.99,
	"H100 NVLink":    3.29,
	"A6000":          0.76,
	"RTX A5000":      0.44,
}

// tierGpuTypes maps tiers onto the runpod GPU type ids used for deployment.
var tierGpuTypes = map[string]string{
	"starter": "RTX 4090",
	"pro":     "A100 80GB PCIe",
	"beast":   "H100 80GB",
	"ultra":   "H100 NVLink",
}

const estimatedReadySeconds = 90

// RunPod is the pod-rental marketplace adapter. Provisioning is
// asynchronous: pods take around 90 seconds to come up, and the backend's
// own status enum is mapped onto the canonical instance statuses.
type RunPod struct {
	opts *Options
	cli  *http.Client
}

var _ provider.Provider = (*RunPod)(nil)

// New ...
func New(opts *Options) *RunPod {
	return &RunPod{
		opts: opts,
		cli:  &http.Client{Timeout: opts.Timeout},
	}
}

// Name ...
func (r *RunPod) Name() string {
	return "RunPod"
}

// Slug ...
func (r *RunPod) Slug() string {
	return consts.ProviderRunPod
}

type pod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DesiredStatus string `json:"desiredStatus"`
	Machine       struct {
		GpuDisplayName string `json:"gpuDisplayName"`
	} `json:"machine"`
	Runtime *struct {
		Ports []struct {
			IP          string `json:"ip"`
			PublicPort  int    `json:"publicPort"`
			PrivatePort int    `json:"privatePort"`
		} `json:"ports"`
		GpuUtilPercent    float64 `json:"gpuUtilPercent"`
		MemoryUtilPercent float64 `json:"memoryUtilPercent"`
	} `json:"runtime"`
	CostPerHr string `json:"costPerHr"`
}

// HealthCheck verifies API reachability with an account query.
func (r *RunPod) HealthCheck(ctx context.Context) *provider.Health {
	start := time.Now()
	health := &provider.Health{
		Provider:      consts.ProviderRunPod,
		LastCheck:     start,
		AvailableGpus: []*provider.GpuOffering{},
	}
	if !r.opts.Enable {
		health.Error = "provider disabled"
		return health
	}

	var resp struct {
		Myself struct {
			Pods []pod `json:"pods"`
		} `json:"myself"`
	}
	err := r.graphql(ctx, `query { myself { pods { id machine { gpuDisplayName } } } }`, nil, &resp)
	health.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		health.Error = err.Error()
		return health
	}

	health.IsHealthy = true
	for gpuType, price := range gpuPricing {
		health.AvailableGpus = append(health.AvailableGpus, &provider.GpuOffering{
			Type:         gpuType,
			Available:    100,
			PricePerHour: price,
		})
	}
	return health
}

// GetCapabilities ...
func (r *RunPod) GetCapabilities(_ context.Context) *provider.Capabilities {
	gpuTypes := make([]string, 0, len(gpuPricing))
	for gpuType := range gpuPricing {
		gpuTypes = append(gpuTypes, gpuType)
	}
	return &provider.Capabilities{
		Provider:                consts.ProviderRunPod,
		Name:                    r.Name(),
		GpuTypes:                gpuTypes,
		Regions:                 []string{"US-TX", "US-CA", "EU-RO", "EU-NL", "EU-SE"},
		SupportsPreloadedModels: true,
		SupportsPause:           true,
		SupportsSnapshot:        false,
		MinPricePerHour:         0.22,
		MaxPricePerHour:         3.99,
	}
}

// GetAvailability synthesizes a plausible offering list from the static
// price table, since runpod exposes no real-time inventory.
func (r *RunPod) GetAvailability(_ context.Context) []*provider.GpuOffering {
	if !r.opts.Enable {
		return []*provider.GpuOffering{}
	}
	res := make([]*provider.GpuOffering, 0, len(gpuPricing)*2)
	for gpuType, price := range gpuPricing {
		res = append(res,
			&provider.GpuOffering{Type: gpuType, Available: 50, PricePerHour: price, Region: "US-TX"},
			&provider.GpuOffering{Type: gpuType, Available: 30, PricePerHour: price * 1.1, Region: "EU-NL"},
		)
	}
	return res
}

// Provision deploys an on-demand pod named after the session id, so a retry
// after a timeout can be reconciled by label instead of double-allocating.
func (r *RunPod) Provision(ctx context.Context, req *provider.ProvisionRequest) *provider.ProvisionResult {
	if !r.opts.Enable {
		return &provider.ProvisionResult{Success: false, Error: "provider disabled"}
	}

	tier, err := tiers.Get(req.Tier)
	if err != nil {
		return &provider.ProvisionResult{Success: false, Error: err.Error()}
	}

	gpuType := req.GpuType
	if gpuType == "" {
		gpuType = tierGpuTypes[req.Tier]
	}
	gpuCount := req.GpuCount
	if gpuCount == 0 {
		gpuCount = 1
		if req.Tier == "ultra" {
			gpuCount = 8
		}
	}
	imageName := "nvidia/cuda:12.3.1-devel-ubuntu22.04"
	if req.ModelID != "" {
		imageName = "ollama/ollama:latest"
	}

	var resp struct {
		PodFindAndDeployOnDemand pod `json:"podFindAndDeployOnDemand"`
	}
	query := `mutation Deploy($input: PodFindAndDeployOnDemandInput!) {
		podFindAndDeployOnDemand(input: $input) {
			id name desiredStatus machine { gpuDisplayName } costPerHr
		}
	}`
	variables := map[string]interface{}{
		"input": map[string]interface{}{
			"name":              "pump-" + req.SessionID,
			"imageName":         imageName,
			"gpuTypeId":         gpuType,
			"gpuCount":          gpuCount,
			"volumeInGb":        50,
			"containerDiskInGb": 20,
			"env": []map[string]string{
				{"key": "PUMP_SESSION_ID", "value": req.SessionID},
			},
		},
	}
	if err := r.graphql(ctx, query, variables, &resp); err != nil {
		return &provider.ProvisionResult{Success: false, Error: err.Error()}
	}

	deployed := resp.PodFindAndDeployOnDemand
	pricePerHour, _ := strconv.ParseFloat(deployed.CostPerHr, 64)
	return &provider.ProvisionResult{
		Success: true,
		Instance: &provider.GpuInstance{
			ID:                 deployed.ID,
			Provider:           consts.ProviderRunPod,
			ProviderInstanceID: deployed.ID,
			GpuType:            deployed.Machine.GpuDisplayName,
			GpuCount:           gpuCount,
			VramGb:             tier.MinVramGb,
			Status:             consts.InstanceProvisioning,
			PricePerHour:       pricePerHour,
			CreatedAt:          time.Now(),
		},
		EstimatedReadySeconds: estimatedReadySeconds,
	}
}

// GetStatus maps the pod's own status enum onto the canonical set. A pod
// without a runtime is still provisioning regardless of its desired status.
func (r *RunPod) GetStatus(ctx context.Context, instanceID string) (*provider.GpuInstance, error) {
	if !r.opts.Enable {
		return nil, nil
	}

	var resp struct {
		Pod *pod `json:"pod"`
	}
	query := `query Pod($input: PodFilter!) {
		pod(input: $input) {
			id name desiredStatus machine { gpuDisplayName }
			runtime { ports { ip publicPort privatePort } gpuUtilPercent memoryUtilPercent }
			costPerHr
		}
	}`
	if err := r.graphql(ctx, query, map[string]interface{}{"input": map[string]string{"podId": instanceID}}, &resp); err != nil {
		return nil, err
	}
	if resp.Pod == nil {
		return nil, nil
	}

	p := resp.Pod
	status := consts.InstanceProvisioning
	if p.Runtime != nil {
		switch p.DesiredStatus {
		case "RUNNING":
			status = consts.InstanceRunning
		case "STOPPED", "TERMINATED":
			status = consts.InstanceStopped
		}
	}

	pricePerHour, _ := strconv.ParseFloat(p.CostPerHr, 64)
	instance := &provider.GpuInstance{
		ID:                 p.ID,
		Provider:           consts.ProviderRunPod,
		ProviderInstanceID: p.ID,
		GpuType:            p.Machine.GpuDisplayName,
		GpuCount:           1,
		Status:             status,
		PricePerHour:       pricePerHour,
		CreatedAt:          time.Now(),
	}
	if p.Runtime != nil {
		instance.ReadyAt = utils.Point(time.Now())
		for _, port := range p.Runtime.Ports {
			switch port.PrivatePort {
			case 22:
				instance.SSHHost = port.IP
				instance.SSHPort = port.PublicPort
			case 8888:
				instance.AccessURL = fmt.Sprintf("http://%s:%d", port.IP, port.PublicPort)
			}
		}
	}
	return instance, nil
}

// Start resumes a stopped pod.
func (r *RunPod) Start(ctx context.Context, instanceID string) bool {
	return r.podMutation(ctx, "podResume", instanceID)
}

// Stop pauses the pod while keeping its volume.
func (r *RunPod) Stop(ctx context.Context, instanceID string) bool {
	return r.podMutation(ctx, "podStop", instanceID)
}

// Terminate releases the pod irreversibly.
func (r *RunPod) Terminate(ctx context.Context, instanceID string) bool {
	if !r.opts.Enable {
		return false
	}
	var resp json.RawMessage
	query := `mutation Terminate($input: PodFilter!) { podTerminate(input: $input) }`
	if err := r.graphql(ctx, query, map[string]interface{}{"input": map[string]string{"podId": instanceID}}, &resp); err != nil {
		log.Errorw("failed to terminate runpod pod", "pod", instanceID, "err", err)
		return false
	}
	return true
}

// GetMetrics reports the utilization the backend exposes; temperature and
// power are not available from runpod and are left zero.
func (r *RunPod) GetMetrics(ctx context.Context, instanceID string) *provider.InstanceMetrics {
	if !r.opts.Enable {
		return nil
	}
	var resp struct {
		Pod *pod `json:"pod"`
	}
	query := `query Metrics($input: PodFilter!) {
		pod(input: $input) { runtime { gpuUtilPercent memoryUtilPercent } }
	}`
	if err := r.graphql(ctx, query, map[string]interface{}{"input": map[string]string{"podId": instanceID}}, &resp); err != nil {
		log.Debugw("failed to get runpod metrics", "pod", instanceID, "err", err)
		return nil
	}
	if resp.Pod == nil || resp.Pod.Runtime == nil {
		return nil
	}
	return &provider.InstanceMetrics{
		GpuUtilization: resp.Pod.Runtime.GpuUtilPercent,
		MemoryUsed:     resp.Pod.Runtime.MemoryUtilPercent,
	}
}

func (r *RunPod) podMutation(ctx context.Context, mutation, instanceID string) bool {
	if !r.opts.Enable {
		return false
	}
	var resp json.RawMessage
	query := fmt.Sprintf(`mutation Pod($input: PodFilter!) { %s(input: $input) { id } }`, mutation)
	if err := r.graphql(ctx, query, map[string]interface{}{"input": map[string]string{"podId": instanceID}}, &resp); err != nil {
		log.Errorw("runpod pod mutation failed", "mutation", mutation, "pod", instanceID, "err", err)
		return false
	}
	return true
}

func (r *RunPod) graphql(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+r.opts.APIKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := r.cli.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode > 399 {
		message, _ := io.ReadAll(response.Body)
		return fmt.Errorf("runpod api error: %d: %s", response.StatusCode, message)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err = json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("runpod graphql error: %s", envelope.Errors[0].Message)
	}
	return json.Unmarshal(envelope.Data, out)
}
