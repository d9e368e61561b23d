// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries NCBI E-utilities: ESearch for the PMIDs matching a
// query within a publication-date lookback window, and EFetch for the
// bibliographic records of those PMIDs in one batch.
//
// Neither call is retried. Requests are paced by a client-side limiter at
// NCBI's published per-client rate (3/s, or 10/s with an API key).
package pubmed

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-digest/internal/httputil"
	"github.com/pdiddy/pubmed-digest/pkg/types"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// postThreshold is the id count above which EFetch is sent as a POST;
	// long id lists overflow the URL length NCBI accepts.
	postThreshold = 200

	rateWithoutKey = 3
	rateWithKey    = 10
)

var (
	// ErrInvalidQuery is wrapped by SearchError when a query is rejected
	// before any request is made.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNoIDs is wrapped by FetchError when Fetch is called with no ids.
	ErrNoIDs = errors.New("no ids to fetch")
)

// SearchError reports a failed ESearch call.
type SearchError struct {
	Term string
	Err  error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("pubmed search %q: %v", e.Term, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// FetchError reports a failed EFetch call.
type FetchError struct {
	Count int
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("pubmed fetch of %d ids: %v", e.Count, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Query holds the ESearch parameters.
type Query struct {
	// Term is the PubMed query string.
	Term string
	// DaysBack restricts results to publications within the trailing
	// number of days (reldate with datetype=pdat).
	DaysBack int
	// MaxResults caps the number of PMIDs returned (retmax).
	MaxResults int
}

// Validate checks the query bounds.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Term) == "" {
		return fmt.Errorf("%w: term is empty", ErrInvalidQuery)
	}
	if q.DaysBack < 0 {
		return fmt.Errorf("%w: days back must be >= 0, got %d", ErrInvalidQuery, q.DaysBack)
	}
	if q.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be > 0, got %d", ErrInvalidQuery, q.MaxResults)
	}
	return nil
}

// Client calls ESearch and EFetch.
type Client struct {
	cfg     types.PubMedConfig
	http    *http.Client
	limiter *rate.Limiter
}

// New returns a Client. A nil httpClient is built from cfg.HTTPConfig.
func New(cfg types.PubMedConfig, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = httputil.NewClient(cfg.HTTPConfig)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = rateWithoutKey
		if cfg.APIKey != "" {
			rps = rateWithKey
		}
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Search returns the PMIDs matching q, in the order ESearch returns them.
// No matches yields an empty slice and a nil error.
func (c *Client) Search(ctx context.Context, q Query) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, &SearchError{Term: q.Term, Err: err}
	}

	params := c.baseParams()
	params.Set("term", q.Term)
	params.Set("reldate", strconv.Itoa(q.DaysBack))
	params.Set("datetype", "pdat")
	params.Set("retmax", strconv.Itoa(q.MaxResults))
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, &SearchError{Term: q.Term, Err: err}
	}

	var sr esearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, &SearchError{Term: q.Term, Err: fmt.Errorf("parsing ESearch response: %w", err)}
	}
	if sr.Error != "" {
		return nil, &SearchError{Term: q.Term, Err: fmt.Errorf("ESearch: %s", sr.Error)}
	}
	if sr.Result.Error != "" {
		return nil, &SearchError{Term: q.Term, Err: fmt.Errorf("ESearch: %s", sr.Result.Error)}
	}

	ids := make([]string, 0, len(sr.Result.IDs))
	for _, id := range sr.Result.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Fetch retrieves the records for ids in a single EFetch call. The
// returned order is the provider's and need not match ids.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, &FetchError{Err: ErrNoIDs}
	}

	params := c.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	var body []byte
	var err error
	if len(ids) > postThreshold {
		body, err = c.post(ctx, "efetch.fcgi", params)
	} else {
		body, err = c.get(ctx, "efetch.fcgi", params)
	}
	if err != nil {
		return nil, &FetchError{Count: len(ids), Err: err}
	}

	var set articleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, &FetchError{Count: len(ids), Err: fmt.Errorf("parsing EFetch response: %w", err)}
	}
	if set.Error != "" {
		return nil, &FetchError{Count: len(ids), Err: fmt.Errorf("EFetch: %s", strings.TrimSpace(set.Error))}
	}
	return set.Articles, nil
}

// baseParams returns the parameters every E-utilities call carries.
func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {"pubmed"}}
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	return params
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return httputil.Do(c.http, req, c.cfg.UserAgent)
}

func (c *Client) post(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	reqURL := c.cfg.BaseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBufferString(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return httputil.Do(c.http, req, c.cfg.UserAgent)
}

// ESearch JSON structures (retmode=json).
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
	Error  string        `json:"error"`
}

type esearchResult struct {
	Count            string   `json:"count"`
	RetMax           string   `json:"retmax"`
	IDs              []string `json:"idlist"`
	QueryTranslation string   `json:"querytranslation"`
	Error            string   `json:"ERROR"`
}
