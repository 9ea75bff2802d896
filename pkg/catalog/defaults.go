package catalog

import (
	"net/http"

	"github.com/coolbeans/numisref/pkg/citation"
	"github.com/coolbeans/numisref/pkg/config"
)

// NewFromConfig builds a registry with the OCRE, CRRO and RPC services
// configured from cfg. A nil httpClient selects an *http.Client with the
// configured timeout. A shared catalog request may take two HTTP timeouts,
// one to reconcile and one to fetch the type. Options are applied after
// the configured ones.
func NewFromConfig(cfg *config.Config, httpClient HTTPClient, opts ...Option) (*Registry, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}

	thresholds := citation.DefaultThresholds()
	thresholds.ReviewCutoff = cfg.Thresholds.ReviewCutoff

	configured := []Option{
		WithEngine(citation.NewEngine(citation.WithThresholds(thresholds))),
		WithCache(NewResultCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval, cfg.Cache.MaxEntries)),
		WithRateLimiter(NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)),
		WithSuccessCutoff(cfg.Thresholds.SuccessCutoff),
		WithFlightTimeout(2 * cfg.HTTP.Timeout),
	}
	registry := NewRegistry(append(configured, opts...)...)

	services := []Service{
		NewOCREService(NomismaConfig{
			BaseURL:    cfg.OCRE.BaseURL,
			Limit:      cfg.OCRE.Limit,
			UserAgent:  cfg.HTTP.UserAgent,
			HTTPClient: httpClient,
		}),
		NewCRROService(NomismaConfig{
			BaseURL:    cfg.CRRO.BaseURL,
			Limit:      cfg.CRRO.Limit,
			UserAgent:  cfg.HTTP.UserAgent,
			HTTPClient: httpClient,
		}),
	}
	for _, service := range services {
		if err := registry.RegisterService(service); err != nil {
			return nil, err
		}
	}

	rpc := NewRPCResolver(RPCConfig{
		BaseURL:    cfg.RPC.BaseURL,
		Scrape:     cfg.RPC.Scrape,
		UserAgent:  cfg.HTTP.UserAgent,
		HTTPClient: httpClient,
	})
	if err := registry.RegisterResolver(rpc); err != nil {
		return nil, err
	}
	return registry, nil
}
