package registry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/coocood/freecache"

	"github.com/sneakyfree/sizzle/pkg/log"
	"github.com/sneakyfree/sizzle/pkg/metrics"
	"github.com/sneakyfree/sizzle/pkg/provider"
)

const healthCacheSize = 256 * 1024 // 256KiB

// Registry owns the set of provider adapters and caches their health
// snapshots with a TTL. Stale snapshots are recomputed on the next access,
// not proactively. Concurrent cache misses for the same provider may issue
// redundant health checks; that is an accepted efficiency cost.
type Registry struct {
	mutex     sync.RWMutex
	providers map[string]provider.Provider
	// registration order, so iteration is deterministic
	order []string

	expireSecond int
	healthCache  *freecache.Cache
}

// New ...
func New(opts *Options) *Registry {
	return &Registry{
		providers:    make(map[string]provider.Provider),
		expireSecond: int(opts.HealthCacheTTL.Seconds()),
		healthCache:  freecache.NewCache(healthCacheSize),
	}
}

// Register adds a provider, overwriting any previous adapter with the same
// slug. There is no removal operation.
func (r *Registry) Register(p provider.Provider) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.providers[p.Slug()]; !ok {
		r.order = append(r.order, p.Slug())
	}
	r.providers[p.Slug()] = p
	log.Infow("registered provider", "provider", p.Name(), "slug", p.Slug())
}

// GetAll returns all providers in registration order.
func (r *Registry) GetAll() []provider.Provider {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	res := make([]provider.Provider, 0, len(r.order))
	for _, slug := range r.order {
		res = append(res, r.providers[slug])
	}
	return res
}

// GetBySlug ...
func (r *Registry) GetBySlug(slug string) (provider.Provider, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	p, ok := r.providers[slug]
	return p, ok
}

// GetHealthForAll returns a health snapshot per provider, in registration
// order, reusing cached snapshots younger than the TTL.
func (r *Registry) GetHealthForAll(ctx context.Context) []*provider.Health {
	providers := r.GetAll()
	res := make([]*provider.Health, len(providers))

	var wg sync.WaitGroup
	for idx, p := range providers {
		wg.Add(1)
		go func(idx int, p provider.Provider) {
			defer wg.Done()
			res[idx] = r.healthFor(ctx, p)
		}(idx, p)
	}
	wg.Wait()
	return res
}

// GetHealth returns the (possibly cached) health of one provider.
func (r *Registry) GetHealth(ctx context.Context, slug string) (*provider.Health, bool) {
	p, ok := r.GetBySlug(slug)
	if !ok {
		return nil, false
	}
	return r.healthFor(ctx, p), true
}

func (r *Registry) healthFor(ctx context.Context, p provider.Provider) *provider.Health {
	key := []byte(p.Slug())
	cached, err := r.healthCache.Get(key)
	if err == nil {
		res := &provider.Health{}
		if unmarshalErr := json.Unmarshal(cached, res); unmarshalErr == nil {
			return res
		} else {
			log.CtxErrorw(ctx, "failed to unmarshal cached provider health", "provider", p.Slug(), "err", unmarshalErr)
		}
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.CtxErrorw(ctx, "failed to get provider health from cache", "provider", p.Slug(), "err", err)
	}

	health := p.HealthCheck(ctx)
	healthy := 0.0
	if health.IsHealthy {
		healthy = 1
	}
	metrics.ProviderHealthy.WithLabelValues(p.Slug()).Set(healthy)

	toCache, marshalErr := json.Marshal(health)
	if marshalErr != nil {
		log.CtxErrorw(ctx, "failed to marshal provider health", "provider", p.Slug(), "err", marshalErr)
		return health
	}
	if cacheErr := r.healthCache.Set(key, toCache, r.expireSecond); cacheErr != nil {
		log.CtxErrorw(ctx, "failed to set provider health cache", "provider", p.Slug(), "err", cacheErr)
	}
	return health
}

// InvalidateHealth drops the cached snapshot for a provider, forcing the
// next access to recompute.
func (r *Registry) InvalidateHealth(slug string) {
	r.healthCache.Del([]byte(slug))
}
