package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/coolbeans/numisref/pkg/citation"
	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
	"github.com/coolbeans/numisref/pkg/logging"
	"github.com/coolbeans/numisref/pkg/numeral"
)

// DefaultRPCBaseURL is the root of RPC Online.
const DefaultRPCBaseURL = "https://rpc.ashmus.ox.ac.uk/"

// Scrape confidence: the first recognised field scores the base plus a step,
// each further field adds a step, capped below a reconciled match.
const (
	rpcBaseConfidence = 0.6
	rpcFieldStep      = 0.1
	rpcMaxConfidence  = 0.9
)

// RPCConfig holds configuration for the RPC resolver.
type RPCConfig struct {
	// BaseURL is the RPC Online root.
	// Default: "https://rpc.ashmus.ox.ac.uk/".
	BaseURL string

	// Scrape enables fetching and reading the coin page. When false the
	// resolver only builds the browsable URL.
	Scrape bool

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// HTTPClient is the underlying HTTP client used for requests.
	// If nil, http.DefaultClient is used.
	HTTPClient HTTPClient
}

// RPCResolver resolves Roman Provincial Coinage references. RPC Online has
// no reconciliation API, so results are deferred with a link unless page
// scraping is enabled.
type RPCResolver struct {
	baseURL    string
	scrape     bool
	userAgent  string
	httpClient HTTPClient
	now        func() time.Time
}

var _ DirectResolver = (*RPCResolver)(nil)

// NewRPCResolver creates an RPC resolver.
func NewRPCResolver(config RPCConfig) *RPCResolver {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultRPCBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &RPCResolver{
		baseURL:    baseURL,
		scrape:     config.Scrape,
		userAgent:  userAgent,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// System returns citation.SystemRPC.
func (resolver *RPCResolver) System() citation.System {
	return citation.SystemRPC
}

// Online reports whether page scraping is enabled.
func (resolver *RPCResolver) Online() bool {
	return resolver.scrape
}

// Resolve builds the RPC Online link for ref and, when scraping is enabled,
// reads the type fields from the page.
func (resolver *RPCResolver) Resolve(ctx context.Context, ref *citation.ParsedReference) (*Result, error) {
	if ref == nil || ref.System != citation.SystemRPC {
		return nil, fmt.Errorf("rpc resolver given a non-RPC reference: %w", pkgerrors.ErrInvalidInput)
	}
	result := &Result{
		System:     citation.SystemRPC,
		Reference:  ref.Raw,
		Key:        ref.Normalized,
		ExternalID: rpcExternalID(ref),
		LookedUpAt: resolver.now(),
	}

	link, ok := citation.RPCURL(resolver.baseURL, ref)
	if !ok {
		result.AddWarning("RPC reference has no volume; search RPC Online manually")
		return result.setError(StatusDeferred, &pkgerrors.UnsupportedError{System: string(citation.SystemRPC)}), nil
	}
	result.ExternalURL = link

	if !resolver.scrape {
		result.AddWarning("RPC Online has no lookup API; check the link manually")
		return result.setError(StatusDeferred, &pkgerrors.UnsupportedError{System: string(citation.SystemRPC)}), nil
	}

	// The link is derived from the citation, not looked up, so a 404 may only
	// mean the derived URL is wrong.
	payload, fields, err := resolver.scrapePage(ctx, link)
	switch {
	case err == nil:
	case pkgerrors.IsNotFound(err):
		result.AddWarning("RPC Online has no page at this link; check it manually")
		return result.setError(StatusDeferred, err), nil
	default:
		result.AddWarning("RPC page could not be read: " + err.Error())
		return result.setError(StatusDeferred, err), nil
	}
	if fields == 0 {
		logging.FromContext(ctx).Warn().
			Str("url", link).
			Msg("RPC page has no recognisable type fields")
		result.AddWarning("RPC page has no recognisable type fields; check the link manually")
		return result.setError(StatusDeferred,
			pkgerrors.NewParseError("html", link, "no type fields on RPC page", nil)), nil
	}

	payload.ID = result.ExternalID
	result.Status = StatusSuccess
	result.Payload = payload
	result.Confidence = rpcConfidence(fields)
	return result, nil
}

func (resolver *RPCResolver) scrapePage(ctx context.Context, link string) (*TypePayload, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create RPC request: %w", err)
	}
	request.Header.Set("User-Agent", resolver.userAgent)
	request.Header.Set("Accept", "text/html")

	response, err := resolver.httpClient.Do(request)
	if err != nil {
		return nil, 0, fmt.Errorf("rpc request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		apiErr := pkgerrors.NewAPIError("rpc", response.StatusCode, http.StatusText(response.StatusCode))
		apiErr.Endpoint = link
		return nil, 0, apiErr
	}

	document, err := goquery.NewDocumentFromReader(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, pkgerrors.NewParseError("html", link, "unreadable RPC page", err)
	}
	payload, fields := readRPCPage(document)
	payload.URL = link
	return payload, fields, nil
}

// readRPCPage collects label/value pairs from definition lists and
// two-column tables and maps the known labels onto the payload. It returns
// the number of fields recognised.
func readRPCPage(document *goquery.Document) (*TypePayload, int) {
	values := make(map[string]string)
	record := func(label, value string) {
		label = strings.ToLower(strings.TrimSuffix(numeral.CollapseSpace(label), ":"))
		value = numeral.CollapseSpace(value)
		if label == "" || value == "" {
			return
		}
		if _, seen := values[label]; !seen {
			values[label] = value
		}
	}

	document.Find("dt").Each(func(_ int, term *goquery.Selection) {
		record(term.Text(), term.NextFiltered("dd").Text())
	})
	document.Find("tr").Each(func(_ int, row *goquery.Selection) {
		header := row.Find("th").First()
		cell := row.Find("td").First()
		if header.Length() == 0 {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			header, cell = cells.Eq(0), cells.Eq(1)
		}
		record(header.Text(), cell.Text())
	})

	payload := &TypePayload{Title: numeral.CollapseSpace(document.Find("h1").First().Text())}
	fields := 0
	assign := func(target *string, labels ...string) {
		for _, label := range labels {
			if value, ok := values[label]; ok {
				*target = value
				fields++
				return
			}
		}
	}
	assign(&payload.Mint, "city", "mint")
	assign(&payload.Authority, "authority", "ruler", "emperor")
	assign(&payload.Denomination, "denomination")
	assign(&payload.Material, "metal", "material")
	assign(&payload.ObverseDescription, "obverse design", "obverse")
	assign(&payload.ObverseLegend, "obverse inscription", "obverse legend")
	assign(&payload.ReverseDescription, "reverse design", "reverse")
	assign(&payload.ReverseLegend, "reverse inscription", "reverse legend")
	return payload, fields
}

func rpcConfidence(fields int) float64 {
	confidence := rpcBaseConfidence + rpcFieldStep*float64(fields)
	if confidence > rpcMaxConfidence {
		return rpcMaxConfidence
	}
	return confidence
}

// rpcExternalID renders identifiers such as "1/4374" and "1/4374/S2".
func rpcExternalID(ref *citation.ParsedReference) string {
	volume, ok := numeral.ArabicVolume(ref.Volume)
	if !ok {
		return ref.Number + ref.Variant
	}
	id := volume + "/" + ref.Number + ref.Variant
	if ref.Supplement != "" {
		id += "/" + strings.ToUpper(ref.Supplement)
	}
	return id
}
