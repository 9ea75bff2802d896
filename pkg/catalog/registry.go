package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/coolbeans/numisref/pkg/citation"
	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
	"github.com/coolbeans/numisref/pkg/logging"
	"github.com/coolbeans/numisref/pkg/metrics"
	"github.com/coolbeans/numisref/pkg/numeral"
)

// DefaultSuccessCutoff is the candidate confidence at or above which a
// reconciliation candidate counts as a confident match.
const DefaultSuccessCutoff = 0.8

// DefaultLookupConcurrency bounds LookupMany when no limit is given.
const DefaultLookupConcurrency = 4

// DefaultFlightTimeout bounds a shared catalog request, which no longer
// follows the cancellation of the caller that started it.
const DefaultFlightTimeout = 2 * time.Minute

// Operation names used for cache keys, metrics and logs.
const (
	opLookup = "lookup"
	opGet    = "get"
)

// Registry routes lookups to the catalog service registered for each
// system, in front of a shared result cache and per-system rate limiter.
// Thread-safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	services  map[citation.System]Service
	resolvers map[citation.System]DirectResolver

	engine        *citation.Engine
	cache         *ResultCache
	limiter       *RateLimiter
	flights       singleflight.Group
	metrics       *metrics.Metrics
	logger        *zerolog.Logger
	successCutoff float64
	flightTimeout time.Duration
	now           func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithEngine sets the parser engine used to read references.
func WithEngine(engine *citation.Engine) Option {
	return func(registry *Registry) {
		if engine != nil {
			registry.engine = engine
		}
	}
}

// WithCache sets the result cache. A nil cache disables caching.
func WithCache(cache *ResultCache) Option {
	return func(registry *Registry) {
		registry.cache = cache
	}
}

// WithRateLimiter sets the rate limiter. A nil limiter disables limiting.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(registry *Registry) {
		registry.limiter = limiter
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(collectors *metrics.Metrics) Option {
	return func(registry *Registry) {
		registry.metrics = collectors
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(registry *Registry) {
		registry.logger = logger
	}
}

// WithSuccessCutoff sets the confident-match threshold.
func WithSuccessCutoff(cutoff float64) Option {
	return func(registry *Registry) {
		if cutoff > 0 && cutoff <= 1 {
			registry.successCutoff = cutoff
		}
	}
}

// WithFlightTimeout sets the deadline of a shared catalog request.
func WithFlightTimeout(timeout time.Duration) Option {
	return func(registry *Registry) {
		if timeout > 0 {
			registry.flightTimeout = timeout
		}
	}
}

// NewRegistry creates a registry with no services, a default cache and a
// default rate limiter.
func NewRegistry(opts ...Option) *Registry {
	registry := &Registry{
		services:      make(map[citation.System]Service),
		resolvers:     make(map[citation.System]DirectResolver),
		engine:        citation.NewEngine(),
		cache:         NewResultCache(DefaultCacheTTL, DefaultCacheCleanupInterval, DefaultCacheMaxEntries),
		limiter:       NewRateLimiter(DefaultRateLimit, DefaultRateLimitWindow),
		successCutoff: DefaultSuccessCutoff,
		flightTimeout: DefaultFlightTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

// RegisterService adds a reconciliation service, replacing any service or
// resolver already registered for its system.
func (registry *Registry) RegisterService(service Service) error {
	if service == nil {
		return fmt.Errorf("cannot register nil service: %w", pkgerrors.ErrInvalidInput)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.resolvers, service.System())
	registry.services[service.System()] = service
	return nil
}

// RegisterResolver adds a direct resolver, replacing any service or
// resolver already registered for its system.
func (registry *Registry) RegisterResolver(resolver DirectResolver) error {
	if resolver == nil {
		return fmt.Errorf("cannot register nil resolver: %w", pkgerrors.ErrInvalidInput)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.services, resolver.System())
	registry.resolvers[resolver.System()] = resolver
	return nil
}

// Systems returns the systems with a registered service or resolver, sorted.
func (registry *Registry) Systems() []citation.System {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	systems := make([]citation.System, 0, len(registry.services)+len(registry.resolvers))
	for system := range registry.services {
		systems = append(systems, system)
	}
	for system := range registry.resolvers {
		systems = append(systems, system)
	}
	sort.Slice(systems, func(i, j int) bool { return systems[i] < systems[j] })
	return systems
}

// Engine returns the parser engine.
func (registry *Registry) Engine() *citation.Engine {
	return registry.engine
}

// Cache returns the result cache, which may be nil.
func (registry *Registry) Cache() *ResultCache {
	return registry.cache
}

func (registry *Registry) service(system citation.System) (Service, DirectResolver) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.services[system], registry.resolvers[system]
}

// DetectSystem reports which catalog raw belongs to.
func (registry *Registry) DetectSystem(raw string) (citation.System, bool) {
	return registry.engine.DetectSystem(raw)
}

// Lookup reconciles reference against the catalog for system. A system of
// "" or "auto" is detected from the reference. The returned result is
// owned by the caller. A caller whose ctx ends while the catalog request is
// in flight gets a deferred result; the request itself carries on for the
// callers still waiting on it.
func (registry *Registry) Lookup(ctx context.Context, system, reference string, hints *LookupHints) *Result {
	ctx = registry.scope(ctx, opLookup)
	result := &Result{Reference: reference, LookedUpAt: registry.now()}
	if numeral.CollapseSpace(reference) == "" {
		return registry.finish(ctx, result.setError(StatusError,
			pkgerrors.NewParseError("reference", reference, "empty reference", nil)))
	}

	outcome, err := registry.read(system, reference)
	if err != nil {
		return registry.finish(ctx, result.setError(StatusError, err))
	}
	if outcome.Reference == nil && isAuto(system) {
		result.Error = "catalog system could not be detected"
		result.Status = StatusNotFound
		return registry.finish(ctx, result)
	}

	resolved := outcome.Reference
	result.System = resolvedSystem(outcome, system)
	result.Key = lookupKeyText(outcome)
	if resolved != nil {
		result.Warnings = append(result.Warnings, resolved.Warnings...)
	}

	ctx = logging.WithSystem(ctx, string(result.System))

	service, resolver := registry.service(result.System)
	if service == nil && resolver == nil {
		return registry.finish(ctx, result.setError(StatusDeferred,
			&pkgerrors.UnsupportedError{System: string(result.System)}))
	}

	hints = hints.withReference(resolved)
	cacheKey := LookupKey(result.System, result.Key, hints)
	if cached, ok := registry.cached(ctx, opLookup, cacheKey); ok {
		cached.Reference = reference
		return cached
	}

	answer := registry.share(ctx, cacheKey, result, func(flightCtx context.Context) *Result {
		var (
			fresh     *Result
			cacheable bool
		)
		if service != nil {
			fresh, cacheable = registry.reconcile(flightCtx, service, result.clone(), resolved, hints)
		} else {
			fresh, cacheable = registry.resolve(flightCtx, resolver, result.clone(), resolved)
		}
		if cacheable && registry.cache != nil {
			registry.cache.Set(cacheKey, fresh)
		}
		return registry.finish(flightCtx, fresh)
	})
	answer.Reference = reference
	return answer
}

// share runs fn once per key among concurrent callers. fn runs under the
// flight timeout instead of the starting caller's cancellation. A caller
// whose ctx ends first gets pending back as a deferred result.
func (registry *Registry) share(
	ctx context.Context,
	key string,
	pending *Result,
	fn func(context.Context) *Result,
) *Result {
	flight := registry.flights.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), registry.flightTimeout)
		defer cancel()
		return fn(flightCtx), nil
	})
	select {
	case shared := <-flight:
		return shared.Val.(*Result).clone()
	case <-ctx.Done():
		abandoned := pending.clone()
		registry.log(ctx).Warn().Err(ctx.Err()).
			Str("key", key).
			Msg("caller left before the catalog answered")
		return registry.finish(ctx, abandoned.setError(StatusDeferred, ctx.Err()))
	}
}

// read parses reference for the named system, or detects the system.
func (registry *Registry) read(system, reference string) (citation.ParseOutcome, error) {
	if isAuto(system) {
		return registry.engine.Parse(reference), nil
	}
	named, ok := citation.ParseSystem(system)
	if !ok {
		return citation.ParseOutcome{}, fmt.Errorf("unknown catalog system %q: %w", system, pkgerrors.ErrInvalidInput)
	}
	return registry.engine.ParseAs(named, reference), nil
}

func (registry *Registry) reconcile(
	ctx context.Context,
	service Service,
	result *Result,
	ref *citation.ParsedReference,
	hints *LookupHints,
) (*Result, bool) {
	if !registry.acquire(ctx, result) {
		return result, false
	}

	query := service.BuildQuery(ref, result.Reference, hints)
	start := time.Now()
	candidates, err := service.Reconcile(ctx, query)
	registry.metrics.ObserveRequest(string(result.System), "reconcile", start)
	if err != nil {
		return registry.failed(ctx, result, err), false
	}

	result.Candidates = candidates
	status, chosen := registry.decideStatus(candidates)
	result.Status = status
	if status != StatusSuccess {
		return result, true
	}

	result.ExternalID = chosen.ExternalID
	result.ExternalURL = chosen.ExternalURL
	result.Confidence = chosen.Confidence

	start = time.Now()
	payload, err := service.FetchType(ctx, chosen.ExternalID)
	registry.metrics.ObserveRequest(string(result.System), "fetch_type", start)
	if err != nil {
		registry.log(ctx).Warn().Err(err).
			Str("external_id", chosen.ExternalID).
			Msg("type payload unavailable")
		result.AddWarning("type payload unavailable: " + err.Error())
		return result, false
	}
	result.Payload = payload
	return result, true
}

func (registry *Registry) resolve(
	ctx context.Context,
	resolver DirectResolver,
	result *Result,
	ref *citation.ParsedReference,
) (*Result, bool) {
	if ref == nil {
		return result.setError(StatusError,
			pkgerrors.NewParseError("reference", result.Reference, "not a "+result.System.Label()+" reference", nil)), false
	}
	if resolver.Online() && !registry.acquire(ctx, result) {
		return result, false
	}

	start := time.Now()
	resolved, err := resolver.Resolve(ctx, ref)
	if resolver.Online() {
		registry.metrics.ObserveRequest(string(result.System), "resolve", start)
	}
	if err != nil {
		return registry.failed(ctx, result, err), false
	}
	resolved.Reference = result.Reference
	resolved.LookedUpAt = result.LookedUpAt
	for _, warning := range result.Warnings {
		resolved.AddWarning(warning)
	}
	return resolved, resolved.Status.Cacheable()
}

// acquire takes a rate-limit slot for the result's system. On rejection the
// result is turned into an error result.
func (registry *Registry) acquire(ctx context.Context, result *Result) bool {
	if registry.limiter == nil {
		return true
	}
	ok, retryAfter := registry.limiter.Acquire(string(result.System))
	if ok {
		return true
	}
	registry.metrics.RecordRateLimited(string(result.System))
	registry.log(ctx).Warn().
		Dur("retry_after", retryAfter).
		Msg("rate limit exceeded")
	result.setError(StatusError, &pkgerrors.RateLimitError{
		Service:    string(result.System),
		Limit:      registry.limiter.Limit(),
		Window:     registry.limiter.Window(),
		RetryAfter: retryAfter,
	})
	return false
}

// failed maps a service error onto a result: timeouts are deferred, every
// other failure is an error.
func (registry *Registry) failed(ctx context.Context, result *Result, err error) *Result {
	if pkgerrors.IsTimeout(err) {
		registry.log(ctx).Warn().Err(err).
			Str("reference", result.Reference).
			Msg("catalog request timed out")
		return result.setError(StatusDeferred, err)
	}
	registry.log(ctx).Error().Err(err).
		Str("reference", result.Reference).
		Msg("catalog request failed")
	return result.setError(StatusError, err)
}

// decideStatus maps candidates onto a status. A candidate passes when the
// service flags it as a match or its confidence reaches the cutoff. A single
// passing candidate wins; among several, a single flagged match wins.
func (registry *Registry) decideStatus(candidates []Candidate) (Status, *Candidate) {
	if len(candidates) == 0 {
		return StatusNotFound, nil
	}
	var passing, flagged []int
	for i, candidate := range candidates {
		if candidate.Match {
			flagged = append(flagged, i)
		}
		if candidate.Match || candidate.Confidence >= registry.successCutoff {
			passing = append(passing, i)
		}
	}
	switch {
	case len(passing) == 1:
		return StatusSuccess, &candidates[passing[0]]
	case len(flagged) == 1:
		return StatusSuccess, &candidates[flagged[0]]
	}
	return StatusAmbiguous, nil
}

// GetByID fetches the type record of externalID from the system's service.
// A Crawford citation such as "RRC 335/1c" is accepted in place of its CRRO
// identifier. Cancellation behaves as in Lookup.
func (registry *Registry) GetByID(ctx context.Context, system, externalID string) *Result {
	ctx = registry.scope(ctx, opGet)
	externalID = strings.TrimSpace(externalID)
	result := &Result{ExternalID: externalID, LookedUpAt: registry.now()}

	named, ok := citation.ParseSystem(system)
	if !ok {
		return registry.finish(ctx, result.setError(StatusError,
			fmt.Errorf("unknown catalog system %q: %w", system, pkgerrors.ErrInvalidInput)))
	}
	result.System = named
	ctx = logging.WithSystem(ctx, string(named))
	if externalID == "" {
		return registry.finish(ctx, result.setError(StatusError,
			fmt.Errorf("empty external id: %w", pkgerrors.ErrInvalidInput)))
	}

	service, _ := registry.service(named)
	if service == nil {
		return registry.finish(ctx, result.setError(StatusDeferred,
			&pkgerrors.UnsupportedError{System: string(named)}))
	}
	externalID = registry.typeID(named, externalID)
	result.ExternalID = externalID
	result.ExternalURL = service.TypeURL(externalID)

	cacheKey := IDKey(named, externalID)
	if cached, ok := registry.cached(ctx, opGet, cacheKey); ok {
		return cached
	}

	return registry.share(ctx, cacheKey, result, func(flightCtx context.Context) *Result {
		fresh := result.clone()
		if !registry.acquire(flightCtx, fresh) {
			return registry.finish(flightCtx, fresh)
		}
		start := time.Now()
		payload, err := service.FetchType(flightCtx, externalID)
		registry.metrics.ObserveRequest(string(named), "fetch_type", start)
		switch {
		case err == nil:
			fresh.Status = StatusSuccess
			fresh.Confidence = 1
			fresh.Payload = payload
		case pkgerrors.IsNotFound(err):
			fresh.setError(StatusNotFound, err)
		default:
			registry.failed(flightCtx, fresh, err)
		}
		if registry.cache != nil {
			registry.cache.Set(cacheKey, fresh)
		}
		return registry.finish(flightCtx, fresh)
	})
}

// typeID turns a Crawford citation into its CRRO identifier. Anything
// else is returned unchanged.
func (registry *Registry) typeID(system citation.System, externalID string) string {
	if system != citation.SystemCrawford || strings.HasPrefix(strings.ToLower(externalID), "rrc-") {
		return externalID
	}
	if id, ok := citation.CRROTypeID(registry.engine.ParseAs(system, externalID).Reference); ok {
		return id
	}
	return externalID
}

// LookupMany runs the lookups with at most concurrency in flight and
// returns the results in request order.
func (registry *Registry) LookupMany(ctx context.Context, requests []LookupRequest, concurrency int) []*Result {
	if concurrency <= 0 {
		concurrency = DefaultLookupConcurrency
	}
	results := make([]*Result, len(requests))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for i, request := range requests {
		group.Go(func() error {
			results[i] = registry.Lookup(ctx, request.System, request.Reference, request.Hints)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (registry *Registry) cached(ctx context.Context, operation, cacheKey string) (*Result, bool) {
	if registry.cache == nil {
		return nil, false
	}
	cached, ok := registry.cache.Get(cacheKey)
	registry.metrics.RecordCache(operation, ok)
	if ok {
		registry.log(ctx).Debug().
			Str("key", cacheKey).
			Msg("cache hit")
	}
	return cached, ok
}

// finish records metrics for a result leaving the registry.
func (registry *Registry) finish(ctx context.Context, result *Result) *Result {
	registry.metrics.RecordLookup(string(result.System), string(result.Status))
	registry.log(ctx).Debug().
		Str("reference", result.Reference).
		Str("status", string(result.Status)).
		Msg("lookup finished")
	return result
}

// scope tags the request's logger with the operation.
func (registry *Registry) scope(ctx context.Context, operation string) context.Context {
	return logging.WithOperation(logging.WithLogger(ctx, registry.log(ctx)), operation)
}

// log returns the request's logger, falling back to the registry logger.
func (registry *Registry) log(ctx context.Context) *zerolog.Logger {
	logger := logging.FromContext(ctx)
	if logger == logging.Default() && registry.logger != nil {
		return registry.logger
	}
	return logger
}

func isAuto(system string) bool {
	system = strings.TrimSpace(strings.ToLower(system))
	return system == "" || system == "auto"
}

func resolvedSystem(outcome citation.ParseOutcome, requested string) citation.System {
	if outcome.Reference != nil {
		return outcome.Reference.System
	}
	named, _ := citation.ParseSystem(requested)
	return named
}

// lookupKeyText is the canonical key of the parsed reference, or the
// collapsed lower-case text when it did not parse.
func lookupKeyText(outcome citation.ParseOutcome) string {
	if outcome.Reference != nil && outcome.Reference.Normalized != "" {
		return outcome.Reference.Normalized
	}
	return strings.ToLower(numeral.CollapseSpace(outcome.Raw))
}
