package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zenrin-geocode/internal/auth"
	"zenrin-geocode/internal/logging"
	"zenrin-geocode/internal/util"

	"github.com/tidwall/gjson"
)

// apiPath is the fixed route of the address-coding endpoint.
const apiPath = "/data-coding/ac_standard"

const (
	singleTimeout = 10 * time.Second
	batchTimeout  = 30 * time.Second

	// maxBatchSize is the upstream limit on addresses per combined request.
	maxBatchSize = 100

	// maxErrorBody caps how much of a failed response body is carried in an
	// error value.
	maxErrorBody = 500
)

// Encoding selects the character encoding of the submitted address text.
type Encoding int

const (
	EncodingUTF8     Encoding = 0
	EncodingEUCJP    Encoding = 1
	EncodingShiftJIS Encoding = 2
)

// Options are the optional request parameters shared by single and batch
// geocoding. The zero value requests UTF-8 and the JGD datum.
type Options struct {
	Encoding     Encoding
	UseKana      bool
	UseMultiAddr bool
	MatchLevel   string
	Datum        string
}

// Doer performs a single HTTP exchange. *http.Client satisfies it; tests
// substitute deterministic fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Geocoder issues geocoding requests against one API domain with one fixed
// authorization scheme. Its configuration is read-only after New.
type Geocoder struct {
	endpoint string
	headers  http.Header
	client   Doer
}

// New constructs a Geocoder for the given domain. The auth headers are
// derived once and reused for every call.
func New(domain, apiKey string, scheme auth.Scheme, client Doer) *Geocoder {
	return &Geocoder{
		endpoint: "https://" + domain + apiPath,
		headers:  auth.BuildHeaders(apiKey, scheme),
		client:   client,
	}
}

// Endpoint returns the resolved endpoint URL.
func (g *Geocoder) Endpoint() string {
	return g.endpoint
}

// Geocode resolves a single free-text address. Failures are returned as
// error-valued Results, never as Go errors.
func (g *Geocoder) Geocode(ctx context.Context, address string, opts Options) Result {
	body, apiErr := g.post(ctx, buildForm(address, opts), singleTimeout)
	if apiErr != nil {
		return errorResult(apiErr)
	}

	items, ok := extractItems(body)
	if !ok {
		// Unrecognized shape: pass the parsed body through unchanged.
		return itemResult(body)
	}
	if len(items) == 0 {
		return errorResult(&APIError{Message: "No results found"})
	}
	return itemResult(json.RawMessage(items[0].Raw))
}

// GeocodeBatch resolves up to 100 addresses in one combined request. The
// address list is joined into a single word parameter; the service returns
// one item per input address in input order. Exceeding the batch limit is a
// caller error and fails before any network activity.
func (g *Geocoder) GeocodeBatch(ctx context.Context, addresses []string, opts Options) ([]Result, error) {
	if len(addresses) > maxBatchSize {
		return nil, fmt.Errorf("maximum %d addresses per batch, got %d", maxBatchSize, len(addresses))
	}

	word := strings.Join(addresses, ",")
	body, apiErr := g.post(ctx, buildForm(word, opts), batchTimeout)
	if apiErr != nil {
		return []Result{errorResult(apiErr)}, nil
	}

	items, ok := extractItems(body)
	if !ok {
		return []Result{itemResult(body)}, nil
	}
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, itemResult(json.RawMessage(item.Raw)))
	}
	return results, nil
}

// buildForm assembles the form parameters for one request.
func buildForm(word string, opts Options) url.Values {
	datum := opts.Datum
	if datum == "" {
		datum = "JGD"
	}
	form := url.Values{}
	form.Set("word", word)
	form.Set("enc", strconv.Itoa(int(opts.Encoding)))
	form.Set("datum", datum)
	if opts.UseKana {
		form.Set("use_kana", "true")
	}
	if opts.UseMultiAddr {
		form.Set("use_multi_addr", "true")
	}
	if opts.MatchLevel != "" {
		form.Set("match_level", opts.MatchLevel)
	}
	return form
}

// post performs one form-encoded POST and returns the response body, or an
// error value for transport failures, non-2xx statuses, and unparseable
// bodies.
func (g *Geocoder) post(ctx context.Context, form url.Values, timeout time.Duration) (json.RawMessage, *APIError) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	for name, values := range g.headers {
		req.Header[name] = values
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logging.Logf(logging.Debug, "POST %s word=%q", g.endpoint, form.Get("word"))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("failed to read response body: %v", err)}
	}

	logging.Logf(logging.Debug, "Response status %d, body snippet: %s", resp.StatusCode, util.Snippet(bodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Message:      fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			StatusCode:   resp.StatusCode,
			ResponseText: util.Truncate(string(bodyBytes), maxErrorBody),
		}
	}

	if !gjson.ValidBytes(bodyBytes) {
		return nil, &APIError{Message: fmt.Sprintf("invalid JSON response: %s", util.Snippet(bodyBytes))}
	}
	return json.RawMessage(bodyBytes), nil
}

// extractItems returns the result.item array when the response carries the
// expected envelope.
func extractItems(body json.RawMessage) ([]gjson.Result, bool) {
	items := gjson.GetBytes(body, "result.item")
	if !items.Exists() || !items.IsArray() {
		return nil, false
	}
	return items.Array(), true
}
