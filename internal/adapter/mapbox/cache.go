package mapbox

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/observability"
	"github.com/zzfadi/deeptime-anomaly-engine/internal/survey"
)

// CachedProvider wraps a SiteContextProvider with an LRU cache keyed by
// rounded coordinates. Survey scans of the same site hit the same handful
// of centroids over and over, so even a small cache absorbs most lookups.
type CachedProvider struct {
	provider survey.SiteContextProvider
	metrics  *observability.Metrics

	mu      sync.Mutex
	maxSize int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	result survey.SiteContextResult
}

// NewCachedProvider wraps provider with a cache holding up to maxSize results.
// A non-positive maxSize is clamped to 1.
func NewCachedProvider(provider survey.SiteContextProvider, maxSize int, metrics *observability.Metrics) *CachedProvider {
	if maxSize < 1 {
		maxSize = 1
	}
	return &CachedProvider{
		provider: provider,
		metrics:  metrics,
		maxSize:  maxSize,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// ReverseGeocode returns a cached result when one exists for the rounded
// coordinate, otherwise delegates to the wrapped provider. Only non-empty
// results are cached so transient API misses are retried.
func (p *CachedProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (survey.SiteContextResult, error) {
	// Four decimal places is roughly 11 m, well inside one site.
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	if result, ok := p.get(key); ok {
		p.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	p.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := p.provider.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return survey.SiteContextResult{}, err
	}
	if result.PlaceName != "" {
		p.put(key, result)
	}
	return result, nil
}

func (p *CachedProvider) get(key string) (survey.SiteContextResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elem, ok := p.entries[key]
	if !ok {
		return survey.SiteContextResult{}, false
	}
	p.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

func (p *CachedProvider) put(key string, result survey.SiteContextResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if elem, ok := p.entries[key]; ok {
		elem.Value.(*cacheEntry).result = result
		p.order.MoveToFront(elem)
		return
	}

	for p.order.Len() >= p.maxSize {
		oldest := p.order.Back()
		p.order.Remove(oldest)
		delete(p.entries, oldest.Value.(*cacheEntry).key)
	}
	p.entries[key] = p.order.PushFront(&cacheEntry{key: key, result: result})
}

// Len reports the number of cached results.
func (p *CachedProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}
