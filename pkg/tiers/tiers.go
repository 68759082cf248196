package tiers

import "fmt"

// Tier is a named GPU capacity class. The catalog is immutable and defined
// at process start; sessions reference tiers by key.
type Tier struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	GpuOptions     []string `json:"gpuOptions"`
	MinVramGb      int      `json:"minVramGb"`
	PricePerMinute float64  `json:"pricePerMinute"`
}

// PricePerHour ...
func (t *Tier) PricePerHour() float64 {
	return t.PricePerMinute * 60
}

// MatchesGpu reports whether the given GPU type satisfies the tier.
func (t *Tier) MatchesGpu(gpuType string) bool {
	for _, opt := range t.GpuOptions {
		if opt == gpuType {
			return true
		}
	}
	return false
}

var catalog = map[string]*Tier{
	"starter": {
		Key:            "starter",
		Name:           "Starter",
		Description:    "Great for learning and small projects",
		GpuOptions:     []string{"RTX 4090", "RTX 5090"},
		MinVramGb:      24,
		PricePerMinute: 0.15,
	},
	"pro": {
		Key:            "pro",
		Name:           "Pro",
		Description:    "Production workloads and medium training",
		GpuOptions:     []string{"A100 40GB", "A100 80GB"},
		MinVramGb:      40,
		PricePerMinute: 0.45,
	},
	"beast": {
		Key:            "beast",
		Name:           "Beast Mode",
		Description:    "Maximum performance for serious work",
		GpuOptions:     []string{"H100 80GB", "8x H100 NVLink"},
		MinVramGb:      80,
		PricePerMinute: 1.50,
	},
	"ultra": {
		Key:            "ultra",
		Name:           "Ultra Beast",
		Description:    "Render an Oscar-winning film in hours",
		GpuOptions:     []string{"8x B300", "16x B300"},
		MinVramGb:      192,
		PricePerMinute: 4.00,
	},
}

// order for List, cheapest first
var order = []string{"starter", "pro", "beast", "ultra"}

// Get looks up a tier by key.
func Get(key string) (*Tier, error) {
	t, ok := catalog[key]
	if !ok {
		return nil, fmt.Errorf("invalid tier: %s", key)
	}
	return t, nil
}

// List returns the tier catalog, cheapest first.
func List() []*Tier {
	res := make([]*Tier, 0, len(order))
	for _, key := range order {
		res = append(res, catalog[key])
	}
	return res
}
