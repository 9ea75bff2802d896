package catalog

import (
	"context"
	"net/http"

	"github.com/coolbeans/numisref/pkg/citation"
)

// HTTPClient is an interface matching the Do method of *http.Client.
// This allows injection of mock clients for testing and custom transports.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service is a catalog backed by a reconciliation API and a type endpoint.
// Implementations must be safe for concurrent use.
type Service interface {
	// System returns the catalog system the service answers for.
	System() citation.System

	// BuildQuery renders the reconciliation query string. ref is nil when the
	// reference could not be parsed; raw is the caller's text.
	BuildQuery(ref *citation.ParsedReference, raw string, hints *LookupHints) string

	// Reconcile returns the candidates for query.
	Reconcile(ctx context.Context, query string) ([]Candidate, error)

	// FetchType retrieves and flattens the type record for externalID.
	FetchType(ctx context.Context, externalID string) (*TypePayload, error)

	// TypeURL returns the browsable URL of a type.
	TypeURL(externalID string) string
}

// DirectResolver is a catalog without a reconciliation API. It resolves a
// parsed reference to a result on its own.
type DirectResolver interface {
	// System returns the catalog system the resolver answers for.
	System() citation.System

	// Resolve produces a result for ref. A nil error with a deferred result
	// is the normal outcome for offline resolvers.
	Resolve(ctx context.Context, ref *citation.ParsedReference) (*Result, error)

	// Online reports whether Resolve makes network requests, and therefore
	// whether it consumes rate-limit budget.
	Online() bool
}
