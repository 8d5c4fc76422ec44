// Package cms is the lookup gateway for the CMS Medicare Physician & Other
// Practitioners public dataset.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/gyeh/ccmcalc/internal/model"
	"github.com/gyeh/ccmcalc/internal/roster"
)

// DefaultDatasetURL points at the Medicare Physician & Other Practitioners
// by-provider dataset on data.cms.gov.
const DefaultDatasetURL = "https://data.cms.gov/data-api/v1/dataset/8889d81e-2ee7-448f-8713-f071038289b5/data"

const (
	requestTimeout = 30 * time.Second
	pageSize       = 5000
	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
)

// ErrNotFound is returned when a lookup yields no matching physician.
var ErrNotFound = errors.New("no matching physician")

// SearchType selects how a single-lookup term is interpreted.
type SearchType string

const (
	SearchByName SearchType = "name"
	SearchByNPI  SearchType = "npi"
)

// Client queries the dataset API. Requests run through a circuit breaker and
// retry on 429/5xx, mirroring how the dataset behaves under load.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient creates a dataset client. An empty baseURL selects the default
// CMS dataset.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultDatasetURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "cms-dataset",
			Interval: 30 * time.Second,
			Timeout:  60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && ratio >= 0.6
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).
					Msg("circuit breaker state change")
			},
		}),
	}
}

// datasetRow mirrors one provider row as returned by the data API. The API
// serves every column as a string, but numeric JSON shows up in mirrored
// copies of the dataset, so fields decode both.
type datasetRow struct {
	NPI        flexString `json:"Rndrng_NPI"`
	FirstName  flexString `json:"Rndrng_Prvdr_First_Name"`
	LastName   flexString `json:"Rndrng_Prvdr_Last_Org_Name"`
	State      flexString `json:"Rndrng_Prvdr_State_Abrvtn"`
	TotBenes   flexString `json:"Tot_Benes"`
	TotAllowed flexString `json:"Tot_Mdcr_Alowd_Amt"`
}

// flexString decodes JSON values that may arrive quoted or as bare numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// LookupOne searches for a single physician by name or NPI. Name search
// splits the term into first/last ("last only" for a single token), then
// selects the first exact case-insensitive match, honoring the optional
// state filter. Returns ErrNotFound when nothing matches.
func (c *Client) LookupOne(ctx context.Context, term string, st SearchType, state string) (*model.PhysicianRecord, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("empty search term")
	}

	if st == SearchByNPI {
		rows, err := c.fetch(ctx, "filter[Rndrng_NPI]", term)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrNotFound
		}
		return rowToRecord(&rows[0]), nil
	}

	first, last := splitName(term)
	rows, err := c.fetch(ctx, "filter[Rndrng_Prvdr_Last_Org_Name]", last)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if !strings.EqualFold(string(rows[i].LastName), last) ||
			!strings.EqualFold(string(rows[i].FirstName), first) {
			continue
		}
		if state != "" && !strings.EqualFold(string(rows[i].State), state) {
			continue
		}
		return rowToRecord(&rows[i]), nil
	}
	return nil, ErrNotFound
}

// LookupBulkNames resolves a list of free-form names. Items that fail to
// parse, fail to fetch, or match nothing are logged and skipped; the result
// contains only the records found. An error is returned only when the input
// yields no valid names at all.
func (c *Client) LookupBulkNames(ctx context.Context, names []string, state string) ([]model.PhysicianRecord, error) {
	entries := roster.ParseNames(names)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid names in input")
	}
	return c.lookupEntries(ctx, entries, state), nil
}

// LookupBulkFile resolves roster file content. Per-line states override the
// request-level state.
func (c *Client) LookupBulkFile(ctx context.Context, content, state string) ([]model.PhysicianRecord, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty roster file")
	}
	entries := roster.ParseFile(content)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid names in roster file")
	}
	return c.lookupEntries(ctx, entries, state), nil
}

// LookupBulkNPIs issues one lookup per NPI and tracks identifiers that match
// nothing in a separate not-found list. Transport failures count as
// not-found for the item but never abort the loop.
func (c *Client) LookupBulkNPIs(ctx context.Context, npis []string) (found []model.PhysicianRecord, notFound []string, err error) {
	if len(npis) == 0 {
		return nil, nil, fmt.Errorf("empty NPI list")
	}
	for _, npi := range npis {
		rec, lookupErr := c.LookupOne(ctx, npi, SearchByNPI, "")
		if lookupErr != nil {
			if !errors.Is(lookupErr, ErrNotFound) {
				c.log.Warn().Err(lookupErr).Str("npi", npi).Msg("NPI lookup failed")
			}
			notFound = append(notFound, npi)
			continue
		}
		found = append(found, *rec)
	}
	return found, notFound, nil
}

func (c *Client) lookupEntries(ctx context.Context, entries []roster.Entry, state string) []model.PhysicianRecord {
	var out []model.PhysicianRecord
	for _, e := range entries {
		st := e.State
		if st == "" {
			st = state
		}
		rec, err := c.LookupOne(ctx, e.Name, SearchByName, st)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.log.Info().Str("name", e.Name).Str("state", st).Msg("no data found")
			} else {
				c.log.Warn().Err(err).Str("name", e.Name).Msg("lookup failed")
			}
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// fetch issues one filtered dataset query, retrying on 429/5xx with doubling
// backoff. Each attempt runs through the circuit breaker.
func (c *Client) fetch(ctx context.Context, filterKey, filterVal string) ([]datasetRow, error) {
	q := url.Values{}
	q.Set(filterKey, filterVal)
	q.Set("size", strconv.Itoa(pageSize))
	q.Set("offset", "0")
	reqURL := c.baseURL + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := c.breaker.Execute(func() (any, error) {
			return c.doFetch(ctx, reqURL)
		})
		if err == nil {
			return result.([]datasetRow), nil
		}
		lastErr = err

		var re *retryableError
		if errors.Is(err, gobreaker.ErrOpenState) || !errors.As(err, &re) {
			break
		}
		c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("dataset request retrying")
	}
	return nil, fmt.Errorf("dataset request: %w", lastErr)
}

// retryableError marks transient transport failures (429/5xx, network).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) doFetch(ctx context.Context, reqURL string) ([]datasetRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &retryableError{err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, &retryableError{fmt.Errorf("dataset returned HTTP %d", resp.StatusCode)}
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("dataset returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err}
	}

	var rows []datasetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse dataset response: %w", err)
	}
	return rows, nil
}

// rowToRecord converts a dataset row to the domain record. Missing or
// unparseable numeric fields become zero.
func rowToRecord(row *datasetRow) *model.PhysicianRecord {
	return &model.PhysicianRecord{
		NPI:                string(row.NPI),
		Name:               strings.TrimSpace(string(row.FirstName) + " " + string(row.LastName)),
		State:              string(row.State),
		TotalBeneficiaries: parseCount(string(row.TotBenes)),
		MedicareAllowed:    parseAmount(string(row.TotAllowed)),
	}
}

func parseCount(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Counts occasionally arrive as decimals in mirrored datasets.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return v
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// splitName breaks a cleaned search term into first and last name. A single
// token is treated as a last name only.
func splitName(term string) (first, last string) {
	parts := strings.SplitN(term, " ", 2)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return parts[0], parts[1]
}
