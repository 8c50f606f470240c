// Package resolver implements the method resolution cache.
package resolver

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/zerr"
)

// MeterName is the instrumentation scope of the resolver counters.
const MeterName = "go.trai.ch/interpose/resolver"

type cacheKey struct {
	method   domain.MethodKey
	concrete reflect.Type
	mode     domain.DispatchMode
}

type entry struct {
	method     *domain.ConcreteMethod
	mode       domain.DispatchMode
	resolvedAt time.Time
}

// shard is one independently locked partition of the cache.
// Entries are inserted once and never replaced.
type shard struct {
	mu      sync.RWMutex
	entries map[cacheKey]entry
}

// Stats holds cumulative resolver counters.
type Stats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Computations int64 `json:"computations"`
	Failures     int64 `json:"failures"`
}

// Resolver implements ports.MethodResolver with a sharded read-mostly cache.
type Resolver struct {
	shards   []*shard
	mask     uint64
	generics ports.GenericSource
	logger   ports.Logger
	now      func() time.Time

	hits         atomic.Int64
	misses       atomic.Int64
	computations atomic.Int64
	failures     atomic.Int64

	hitCounter     metric.Int64Counter
	missCounter    metric.Int64Counter
	failureCounter metric.Int64Counter
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	shards   int
	generics ports.GenericSource
	logger   ports.Logger
	meter    metric.Meter
	now      func() time.Time
}

// WithShards sets the number of cache shards. It must be a positive power of two.
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}

// WithGenerics sets the source of generic method implementations.
func WithGenerics(src ports.GenericSource) Option {
	return func(o *options) { o.generics = src }
}

// WithLogger sets the logger used for cache misses and failures.
func WithLogger(l ports.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeter sets the OpenTelemetry meter for the resolver counters.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithClock sets the clock used to timestamp cache entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Resolver.
func New(opts ...Option) (*Resolver, error) {
	o := options{
		shards: domain.DefaultShards,
		logger: ports.NopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.shards <= 0 || o.shards&(o.shards-1) != 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "shards must be a positive power of two"), "shards", o.shards)
	}
	if o.meter == nil {
		o.meter = noop.NewMeterProvider().Meter(MeterName)
	}

	r := &Resolver{
		shards:   make([]*shard, o.shards),
		mask:     uint64(o.shards - 1),
		generics: o.generics,
		logger:   o.logger,
		now:      o.now,
	}
	for i := range r.shards {
		r.shards[i] = &shard{entries: make(map[cacheKey]entry)}
	}

	var err error
	if r.hitCounter, err = o.meter.Int64Counter("interpose.resolver.hits",
		metric.WithDescription("resolutions served from the cache")); err != nil {
		return nil, zerr.Wrap(err, "failed to create hit counter")
	}
	if r.missCounter, err = o.meter.Int64Counter("interpose.resolver.misses",
		metric.WithDescription("resolutions that required a computation")); err != nil {
		return nil, zerr.Wrap(err, "failed to create miss counter")
	}
	if r.failureCounter, err = o.meter.Int64Counter("interpose.resolver.failures",
		metric.WithDescription("resolutions that found no concrete method")); err != nil {
		return nil, zerr.Wrap(err, "failed to create failure counter")
	}

	return r, nil
}

// Resolve returns the concrete method fulfilling declared on concrete in the given mode.
// Hits only take the shard's read lock. A miss takes the write lock, re-checks
// and computes inside it, so each key is computed at most once. Every call
// counts as exactly one hit or one miss. Failures are returned to the caller
// and never cached.
func (r *Resolver) Resolve(
	declared *domain.MethodDescriptor,
	concrete reflect.Type,
	mode domain.DispatchMode,
) (*domain.ConcreteMethod, error) {
	if declared == nil || concrete == nil {
		return nil, zerr.Wrap(domain.ErrInvariantViolated, "nil method or type")
	}

	key := cacheKey{method: declared.Key(), concrete: concrete, mode: mode}
	s := r.shards[declared.Fingerprint()&r.mask]

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		r.hit()
		return e.method, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have inserted the key while we waited for the lock.
	if e, ok := s.entries[key]; ok {
		r.hit()
		return e.method, nil
	}

	r.misses.Add(1)
	r.missCounter.Add(context.Background(), 1)

	r.computations.Add(1)
	m, err := r.compute(declared, concrete, mode)
	if err != nil {
		r.failures.Add(1)
		r.failureCounter.Add(context.Background(), 1)
		r.logger.Error(err)
		return nil, err
	}

	s.entries[key] = entry{method: m, mode: mode, resolvedAt: r.now()}
	r.logger.Debug("resolved " + declared.String() + " on " + domain.TypeName(concrete) + " (" + mode.String() + ")")
	return m, nil
}

func (r *Resolver) hit() {
	r.hits.Add(1)
	r.hitCounter.Add(context.Background(), 1)
}

// Stats returns a snapshot of the resolver counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Hits:         r.hits.Load(),
		Misses:       r.misses.Load(),
		Computations: r.computations.Load(),
		Failures:     r.failures.Load(),
	}
}

// Len returns the number of cached entries.
func (r *Resolver) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Entries returns a snapshot of the cache for diagnostics, sorted by method then type.
func (r *Resolver) Entries() []domain.ResolutionRecord {
	var records []domain.ResolutionRecord
	for _, s := range r.shards {
		s.mu.RLock()
		for _, e := range s.entries {
			rec := e.method.Record()
			rec.Dispatch = e.mode.String()
			rec.ResolvedAt = e.resolvedAt
			records = append(records, rec)
		}
		s.mu.RUnlock()
	}

	slices.SortFunc(records, func(a, b domain.ResolutionRecord) int {
		if c := strings.Compare(a.Method, b.Method); c != 0 {
			return c
		}
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Dispatch, b.Dispatch)
	})
	return records
}

// Reset clears all cached entries. Counters are kept.
func (r *Resolver) Reset() {
	for _, s := range r.shards {
		s.mu.Lock()
		clear(s.entries)
		s.mu.Unlock()
	}
}
