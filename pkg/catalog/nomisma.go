package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coolbeans/numisref/pkg/citation"
	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
)

// Default Nomisma endpoints.
const (
	DefaultOCREBaseURL = "http://numismatics.org/ocre/"
	DefaultCRROBaseURL = "http://numismatics.org/crro/"

	// DefaultReconcileLimit is the number of candidates requested per query.
	DefaultReconcileLimit = 5

	// DefaultUserAgent is the User-Agent header sent with catalog requests.
	DefaultUserAgent = "numisref/1.0 (+https://github.com/coolbeans/numisref)"
)

// maxResponseBytes bounds the size of a reconciliation or type response.
const maxResponseBytes = 8 << 20

// NomismaConfig holds configuration for a Nomisma-backed service.
type NomismaConfig struct {
	// BaseURL is the corpus root, e.g. "http://numismatics.org/ocre/".
	BaseURL string

	// Limit is the number of candidates requested per query.
	// Default: 5.
	Limit int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// HTTPClient is the underlying HTTP client used for requests.
	// If nil, http.DefaultClient is used.
	HTTPClient HTTPClient
}

// NomismaService reconciles references against a Nomisma type corpus (OCRE
// or CRRO). The two corpora share the protocol and differ only in how the
// query text is rendered.
type NomismaService struct {
	system     citation.System
	name       string
	baseURL    string
	limit      int
	userAgent  string
	httpClient HTTPClient
	buildQuery func(ref *citation.ParsedReference, raw string, hints *LookupHints) string
}

var _ Service = (*NomismaService)(nil)

// NewOCREService creates the RIC service backed by Online Coins of the
// Roman Empire.
func NewOCREService(config NomismaConfig) *NomismaService {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOCREBaseURL
	}
	return newNomismaService(citation.SystemRIC, "ocre", config, ricQuery)
}

// NewCRROService creates the Crawford service backed by Coinage of the
// Roman Republic Online.
func NewCRROService(config NomismaConfig) *NomismaService {
	if config.BaseURL == "" {
		config.BaseURL = DefaultCRROBaseURL
	}
	return newNomismaService(citation.SystemCrawford, "crro", config, crawfordQuery)
}

func newNomismaService(
	system citation.System,
	name string,
	config NomismaConfig,
	buildQuery func(*citation.ParsedReference, string, *LookupHints) string,
) *NomismaService {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limit := config.Limit
	if limit <= 0 {
		limit = DefaultReconcileLimit
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	baseURL := config.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &NomismaService{
		system:     system,
		name:       name,
		baseURL:    baseURL,
		limit:      limit,
		userAgent:  userAgent,
		httpClient: httpClient,
		buildQuery: buildQuery,
	}
}

// System returns the catalog system the service answers for.
func (service *NomismaService) System() citation.System {
	return service.system
}

// Name returns the short service name used in errors and logs.
func (service *NomismaService) Name() string {
	return service.name
}

// BuildQuery renders the reconciliation query for ref.
func (service *NomismaService) BuildQuery(ref *citation.ParsedReference, raw string, hints *LookupHints) string {
	return service.buildQuery(ref, raw, hints)
}

// TypeURL returns the browsable URL of a type.
func (service *NomismaService) TypeURL(externalID string) string {
	return service.baseURL + "id/" + externalID
}

// Reconcile posts query to the reconciliation endpoint and returns the
// candidates it proposes.
func (service *NomismaService) Reconcile(ctx context.Context, query string) ([]Candidate, error) {
	form, err := reconcileForm(query, service.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query %q: %w", query, err)
	}

	endpoint := service.baseURL + "apis/reconcile"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile request for %s: %w", service.name, err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")

	body, err := service.do(request)
	if err != nil {
		return nil, err
	}
	raw, err := decodeReconcileResponse(body)
	if err != nil {
		return nil, err
	}
	return toCandidates(raw, service.TypeURL), nil
}

// FetchType retrieves the JSON-LD record of a type and flattens it.
func (service *NomismaService) FetchType(ctx context.Context, externalID string) (*TypePayload, error) {
	typeURL := service.TypeURL(externalID)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, typeURL+".jsonld", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create type request for %s: %w", externalID, err)
	}
	request.Header.Set("Accept", "application/ld+json")

	body, err := service.do(request)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}
	return flattenType(doc, externalID, typeURL), nil
}

func (service *NomismaService) do(request *http.Request) ([]byte, error) {
	request.Header.Set("User-Agent", service.userAgent)

	response, err := service.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%s request to %s failed: %w", service.name, request.URL.Path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", service.name, err)
	}
	if response.StatusCode != http.StatusOK {
		apiErr := pkgerrors.NewAPIError(service.name, response.StatusCode, http.StatusText(response.StatusCode))
		apiErr.Endpoint = request.URL.String()
		return nil, apiErr
	}
	return body, nil
}

// flattenType extracts the payload fields from a Nomisma type document.
// Obverse and reverse may be inline nodes or references to "#obverse" and
// "#reverse" nodes elsewhere in the graph.
func flattenType(doc *Document, externalID, typeURL string) *TypePayload {
	node := doc.TypeNode(typeURL)
	payload := &TypePayload{
		ID:           externalID,
		URL:          typeURL,
		Title:        doc.nodeLabel(node),
		Authority:    doc.GetLabel(doc.Property(node, propAuthority)),
		Denomination: doc.GetLabel(doc.Property(node, propDenomination)),
		Mint:         doc.GetLabel(doc.Property(node, propMint)),
		Material:     doc.GetLabel(doc.Property(node, propMaterial)),
	}
	if year, ok := ParseDateValue(doc.Property(node, propStartDate)); ok {
		payload.DateFrom = &year
	}
	if year, ok := ParseDateValue(doc.Property(node, propEndDate)); ok {
		payload.DateTo = &year
	}
	if side, ok := doc.Resolve(doc.Property(node, propObverse)); ok {
		payload.ObverseLegend = doc.GetLabel(doc.Property(side, propLegend))
		payload.ObverseDescription = doc.GetLabel(doc.Property(side, propDescription))
	}
	if side, ok := doc.Resolve(doc.Property(node, propReverse)); ok {
		payload.ReverseLegend = doc.GetLabel(doc.Property(side, propLegend))
		payload.ReverseDescription = doc.GetLabel(doc.Property(side, propDescription))
	}
	return payload
}

// ricQuery renders "RIC I (2) Augustus 207" or "RIC VII Trier 12". OCRE
// matches better without the edition marker once an authority narrows the
// query. The mint is kept because RIC VI-X numbers restart at each mint.
func ricQuery(ref *citation.ParsedReference, raw string, hints *LookupHints) string {
	hints = hints.withReference(ref)
	authority, mint := hints.authority(), hints.mint()
	if ref == nil {
		if strings.Contains(strings.ToLower(raw), strings.ToLower(mint)) {
			mint = ""
		}
		return strings.TrimSpace(strings.Join(nonEmpty(raw, authority, mint), " "))
	}
	parts := []string{"RIC"}
	if ref.Volume != "" {
		parts = append(parts, ref.Volume)
	}
	if ref.Edition != "" && authority == "" {
		parts = append(parts, "("+ref.Edition+")")
	}
	parts = append(parts, nonEmpty(authority, mint, ref.Number+ref.Variant)...)
	return strings.Join(parts, " ")
}

// crawfordQuery renders "RRC 335/1c".
func crawfordQuery(ref *citation.ParsedReference, raw string, _ *LookupHints) string {
	if ref == nil {
		return strings.TrimSpace(raw)
	}
	return "RRC " + ref.Number + ref.Variant
}

func nonEmpty(values ...string) []string {
	kept := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			kept = append(kept, value)
		}
	}
	return kept
}
