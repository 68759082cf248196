package selector

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/metrics"
	"github.com/sneakyfree/sizzle/pkg/provider"
	"github.com/sneakyfree/sizzle/pkg/registry"
	"github.com/sneakyfree/sizzle/pkg/tiers"
)

// score multipliers; lower score is better
const (
	localBonus          = 0.8
	modelSupportPenalty = 1.2
)

// ErrNoProviders means no healthy provider had a matching offering.
var ErrNoProviders = errors.New("no available providers")

// ErrNoCapacity means every provider in the fallback chain refused the
// provision call. It is a normal outcome, surfaced to the user as a "try
// again" condition.
var ErrNoCapacity = errors.New("no GPU capacity available, please try again later")

// unknownPriority sorts providers without a configured rank last.
const unknownPriority = 999

// Selector picks a provider for a provision request, either by score over
// the registry's cached health or by walking a static priority order.
type Selector struct {
	opts     *Options
	registry *registry.Registry
}

// New ...
func New(opts *Options, reg *registry.Registry) *Selector {
	return &Selector{opts: opts, registry: reg}
}

// Selection is the outcome of best-by-score selection.
type Selection struct {
	Provider              provider.Provider
	EstimatedPricePerHour float64
	Score                 float64
}

// SelectBest scores every healthy provider with a tier-matching offering
// and returns the minimum. Scoring is deterministic: providers are visited
// in priority order and ties keep the first minimum encountered.
func (s *Selector) SelectBest(ctx context.Context, req *provider.ProvisionRequest) (*Selection, error) {
	tier, err := tiers.Get(req.Tier)
	if err != nil {
		return nil, err
	}

	healths := s.registry.GetHealthForAll(ctx)
	healthBySlug := make(map[string]*provider.Health, len(healths))
	for _, h := range healths {
		healthBySlug[h.Provider] = h
	}

	var best *Selection
	for _, p := range s.prioritized() {
		health, ok := healthBySlug[p.Slug()]
		if !ok || !health.IsHealthy {
			continue
		}

		cheapest := cheapestMatchingOffer(health.AvailableGpus, tier, req.MaxPricePerHour)
		if cheapest == nil {
			continue
		}

		score := cheapest.PricePerHour
		score *= 1 + float64(health.LatencyMs)/1000
		if p.Slug() == consts.ProviderLocal {
			score *= localBonus
		}
		if req.ModelID != "" {
			if caps := p.GetCapabilities(ctx); caps != nil && !caps.SupportsPreloadedModels {
				score *= modelSupportPenalty
			}
		}

		if best == nil || score < best.Score {
			best = &Selection{
				Provider:              p,
				EstimatedPricePerHour: cheapest.PricePerHour,
				Score:                 score,
			}
		}
	}

	if best == nil {
		return nil, ErrNoProviders
	}
	return best, nil
}

// Provision routes a request to a provider. A pinned provider bypasses
// selection entirely; otherwise the best-scored provider is tried first and
// the static priority chain is the safety net. One pass, no retries.
func (s *Selector) Provision(ctx context.Context, req *provider.ProvisionRequest, pinned string) (*provider.ProvisionResult, string, error) {
	if pinned != "" {
		p, ok := s.registry.GetBySlug(pinned)
		if !ok {
			return nil, "", errors.New("unknown provider: " + pinned)
		}
		return p.Provision(ctx, req), pinned, nil
	}

	if best, err := s.SelectBest(ctx, req); err == nil {
		log.CtxInfow(ctx, "selected provider by score", "provider", best.Provider.Slug(),
			"session", req.SessionID, "estimatedPricePerHour", best.EstimatedPricePerHour)
		result := best.Provider.Provision(ctx, req)
		if result.Success {
			return result, best.Provider.Slug(), nil
		}
		metrics.ProvisionFailures.WithLabelValues(best.Provider.Slug()).Inc()
		log.CtxWarnw(ctx, "best provider refused provision, falling back", "provider", best.Provider.Slug(),
			"session", req.SessionID, "reason", result.Error)
	} else if !errors.Is(err, ErrNoProviders) {
		return nil, "", err
	}

	for _, p := range s.prioritized() {
		result := p.Provision(ctx, req)
		if result.Success {
			log.CtxInfow(ctx, "provisioned via fallback chain", "provider", p.Slug(), "session", req.SessionID)
			return result, p.Slug(), nil
		}
		metrics.ProvisionFailures.WithLabelValues(p.Slug()).Inc()
		log.CtxDebugw(ctx, "fallback provider refused provision", "provider", p.Slug(),
			"session", req.SessionID, "reason", result.Error)
	}
	return nil, "", ErrNoCapacity
}

// TierPricing lists healthy providers' tier-matching offerings, cheapest
// first.
type TierPricing struct {
	Provider       string  `json:"provider"`
	GpuType        string  `json:"gpuType"`
	Available      int     `json:"available"`
	PricePerHour   float64 `json:"pricePerHour"`
	PricePerMinute float64 `json:"pricePerMinute"`
}

// GetTierPricing ...
func (s *Selector) GetTierPricing(ctx context.Context, tierKey string) ([]*TierPricing, error) {
	tier, err := tiers.Get(tierKey)
	if err != nil {
		return nil, err
	}

	res := make([]*TierPricing, 0)
	for _, health := range s.registry.GetHealthForAll(ctx) {
		if !health.IsHealthy {
			continue
		}
		for _, offering := range health.AvailableGpus {
			if offering.Available <= 0 || !offerMatchesTier(offering, tier) {
				continue
			}
			res = append(res, &TierPricing{
				Provider:       health.Provider,
				GpuType:        offering.Type,
				Available:      offering.Available,
				PricePerHour:   offering.PricePerHour,
				PricePerMinute: offering.PricePerHour / 60,
			})
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].PricePerHour < res[j].PricePerHour })
	return res, nil
}

// prioritized returns all providers sorted by the static priority ranking,
// most preferred first.
func (s *Selector) prioritized() []provider.Provider {
	providers := s.registry.GetAll()
	sort.SliceStable(providers, func(i, j int) bool {
		return s.priorityOf(providers[i].Slug()) < s.priorityOf(providers[j].Slug())
	})
	return providers
}

func (s *Selector) priorityOf(slug string) int {
	if rank, ok := s.opts.Priority[slug]; ok {
		return rank
	}
	return unknownPriority
}

func cheapestMatchingOffer(offerings []*provider.GpuOffering, tier *tiers.Tier, maxPricePerHour float64) *provider.GpuOffering {
	var cheapest *provider.GpuOffering
	for _, offering := range offerings {
		if offering.Available <= 0 || !offerMatchesTier(offering, tier) {
			continue
		}
		if maxPricePerHour > 0 && offering.PricePerHour > maxPricePerHour {
			continue
		}
		if cheapest == nil || offering.PricePerHour < cheapest.PricePerHour {
			cheapest = offering
		}
	}
	return cheapest
}

// offerMatchesTier compares GPU names loosely: marketplace names often
// carry suffixes like "A100 80GB PCIe" that should satisfy "A100 80GB".
func offerMatchesTier(offering *provider.GpuOffering, tier *tiers.Tier) bool {
	for _, want := range tier.GpuOptions {
		if strings.Contains(strings.ToLower(offering.Type), strings.ToLower(want)) {
			return true
		}
	}
	return false
}
