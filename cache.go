package terminology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// File names used inside the cache directory.
const (
	codeSystemCacheFile = "codesystem_cache.json"
	valueSetCacheFile   = "valueset_cache.json"
	lookupCacheFile     = "lookup_cache.json"
)

// CachedService wraps a Service and memoizes successful results of the
// three lookup-shaped operations. Failures are never cached, so a
// transient network error stays retryable.
//
// Entries have no TTL; a persisted cache stays valid until its files are
// deleted. The zero hit is served from the inner service, every repeat
// from memory.
//
// Supplement registration is delegated to the inner service. Because the
// inner service is shared, register supplements before wrapping; entries
// already cached for a URL are not invalidated by a later registration.
type CachedService struct {
	inner   Service
	metrics CacheMetrics
	logger  zerolog.Logger

	dir     string
	persist bool

	csMu sync.RWMutex
	cs   map[string]*ValidateResult

	vsMu sync.RWMutex
	vs   map[string]*ValidateResult

	lkMu sync.RWMutex
	lk   map[string]*LookupResult
}

// CacheOption configures a CachedService.
type CacheOption func(*CachedService)

// WithCacheDir sets the directory holding the three cache files. The
// default is ${HOME}/.fhir/terminology-cache.
func WithCacheDir(dir string) CacheOption {
	return func(c *CachedService) { c.dir = dir }
}

// WithoutPersistence keeps the cache purely in memory.
func WithoutPersistence() CacheOption {
	return func(c *CachedService) { c.persist = false }
}

// WithCacheLogger sets the logger used to report persistence problems.
func WithCacheLogger(l zerolog.Logger) CacheOption {
	return func(c *CachedService) { c.logger = l }
}

// NewCachedService wraps inner with a persistent cache. When persistence
// is enabled (the default) the constructor loads whatever cache files
// exist in the directory; missing or corrupted files start empty.
func NewCachedService(inner Service, opts ...CacheOption) *CachedService {
	c := &CachedService{
		inner:   inner,
		logger:  zerolog.Nop(),
		persist: true,
		cs:      make(map[string]*ValidateResult),
		vs:      make(map[string]*ValidateResult),
		lk:      make(map[string]*LookupResult),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.persist && c.dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			c.logger.Warn().Err(err).Msg("no home directory, cache persistence disabled")
			c.persist = false
		} else {
			c.dir = filepath.Join(home, ".fhir", "terminology-cache")
		}
	}

	if c.persist {
		c.load()
	}
	return c
}

// Key construction. Keys are stable across processes because they are
// what the disk files are indexed by.

func codeSystemKey(system, code, display string) string {
	return fmt.Sprintf("cs:%s#%s:%s", system, code, display)
}

func valueSetKey(valueSetURL, system, code, display string) string {
	return fmt.Sprintf("vs:%s|%s#%s:%s", valueSetURL, system, code, display)
}

func lookupKey(system, code string) string {
	return fmt.Sprintf("lookup:%s#%s", system, code)
}

// ValidateCodeInCodeSystem implements CodeValidator with caching.
func (c *CachedService) ValidateCodeInCodeSystem(system, code, display string) (*ValidateResult, error) {
	if base, ok := c.inner.IsSupplement(system); ok {
		return nil, invalidRequestErr("CodeSystem '%s' is a supplement to '%s' and cannot be used as a Coding system", system, base)
	}

	key := codeSystemKey(system, code, display)

	c.csMu.RLock()
	cached, ok := c.cs[key]
	c.csMu.RUnlock()
	if ok {
		c.metrics.RecordHit()
		return cached, nil
	}
	c.metrics.RecordMiss()

	result, err := c.inner.ValidateCodeInCodeSystem(system, code, display)
	if err != nil {
		return nil, err
	}

	c.csMu.Lock()
	c.cs[key] = result
	c.csMu.Unlock()
	return result, nil
}

// ValidateCodeInValueSet implements CodeValidator with caching.
func (c *CachedService) ValidateCodeInValueSet(valueSetURL, system, code, display string) (*ValidateResult, error) {
	key := valueSetKey(valueSetURL, system, code, display)

	c.vsMu.RLock()
	cached, ok := c.vs[key]
	c.vsMu.RUnlock()
	if ok {
		c.metrics.RecordHit()
		return cached, nil
	}
	c.metrics.RecordMiss()

	result, err := c.inner.ValidateCodeInValueSet(valueSetURL, system, code, display)
	if err != nil {
		return nil, err
	}

	c.vsMu.Lock()
	c.vs[key] = result
	c.vsMu.Unlock()
	return result, nil
}

// LookupCode implements CodeLookup with caching.
func (c *CachedService) LookupCode(system, code string) (*LookupResult, error) {
	key := lookupKey(system, code)

	c.lkMu.RLock()
	cached, ok := c.lk[key]
	c.lkMu.RUnlock()
	if ok {
		c.metrics.RecordHit()
		return cached, nil
	}
	c.metrics.RecordMiss()

	result, err := c.inner.LookupCode(system, code)
	if err != nil {
		return nil, err
	}

	c.lkMu.Lock()
	c.lk[key] = result
	c.lkMu.Unlock()
	return result, nil
}

// SupportsCodeSystem implements CapabilityProber. Probes are cheap and
// never cached.
func (c *CachedService) SupportsCodeSystem(system string) bool {
	return c.inner.SupportsCodeSystem(system)
}

// SupportsValueSet implements CapabilityProber.
func (c *CachedService) SupportsValueSet(valueSetURL string) bool {
	return c.inner.SupportsValueSet(valueSetURL)
}

// IsSupplement implements SupplementRegistry.
func (c *CachedService) IsSupplement(system string) (string, bool) {
	return c.inner.IsSupplement(system)
}

// RegisterSupplement implements SupplementRegistry by delegating to the
// inner service.
func (c *CachedService) RegisterSupplement(system, baseURL string) {
	c.inner.RegisterSupplement(system, baseURL)
}

// Metrics returns the hit/miss counters.
func (c *CachedService) Metrics() *CacheMetrics {
	return &c.metrics
}

// CacheMetrics returns hits, misses, and the hit rate.
func (c *CachedService) CacheMetrics() (hits, misses uint64, hitRate float64) {
	return c.metrics.Snapshot()
}

// Len reports the number of entries per map: code-system validations,
// value-set validations, lookups.
func (c *CachedService) Len() (cs, vs, lookup int) {
	c.csMu.RLock()
	cs = len(c.cs)
	c.csMu.RUnlock()
	c.vsMu.RLock()
	vs = len(c.vs)
	c.vsMu.RUnlock()
	c.lkMu.RLock()
	lookup = len(c.lk)
	c.lkMu.RUnlock()
	return cs, vs, lookup
}

// Clear drops every in-memory entry. Disk files are untouched until the
// next Flush.
func (c *CachedService) Clear() {
	c.csMu.Lock()
	c.cs = make(map[string]*ValidateResult)
	c.csMu.Unlock()
	c.vsMu.Lock()
	c.vs = make(map[string]*ValidateResult)
	c.vsMu.Unlock()
	c.lkMu.Lock()
	c.lk = make(map[string]*LookupResult)
	c.lkMu.Unlock()
}

// Flush writes the three maps to disk. Write failures are logged, never
// returned: a cache must not take the host process down on shutdown.
// Flush is a no-op when persistence is disabled.
func (c *CachedService) Flush() {
	if !c.persist {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Error().Err(err).Str("dir", c.dir).Msg("cannot create cache directory")
		return
	}

	c.csMu.RLock()
	c.writeFile(codeSystemCacheFile, c.cs)
	c.csMu.RUnlock()

	c.vsMu.RLock()
	c.writeFile(valueSetCacheFile, c.vs)
	c.vsMu.RUnlock()

	c.lkMu.RLock()
	c.writeFile(lookupCacheFile, c.lk)
	c.lkMu.RUnlock()
}

// Close flushes the cache. It always returns nil; it exists so a
// CachedService can sit behind io.Closer in shutdown paths.
func (c *CachedService) Close() error {
	c.Flush()
	return nil
}

func (c *CachedService) writeFile(name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error().Err(err).Str("file", name).Msg("cannot serialize cache")
		return
	}
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Error().Err(err).Str("file", path).Msg("cannot write cache file")
	}
}

// load reads whatever cache files exist. A missing or corrupted file
// leaves its map empty; the cache warms back up through normal use.
func (c *CachedService) load() {
	loadInto(c, codeSystemCacheFile, &c.cs)
	loadInto(c, valueSetCacheFile, &c.vs)
	loadInto(c, lookupCacheFile, &c.lk)
}

func loadInto[V any](c *CachedService, name string, dst *map[string]V) {
	path := filepath.Join(c.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("file", path).Msg("cannot read cache file, starting empty")
		}
		return
	}
	m := make(map[string]V)
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Warn().Err(err).Str("file", path).Msg("corrupted cache file, starting empty")
		return
	}
	*dst = m
}

var _ Service = (*CachedService)(nil)
