// Package edgar is a client for the SEC EDGAR full-text submission feeds.
// It resolves bank holding companies to CIK numbers and lists their recent
// regulatory filings.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/bankiq/bankiq-cli/internal/resilience"
)

const (
	defaultDataBaseURL = "https://data.sec.gov"
	defaultWWWBaseURL  = "https://www.sec.gov"
	defaultUserAgent   = "bankiq-cli research agent contact@bankiq.dev"
	maxFilings         = 10
)

// Filing is one EDGAR filing reference.
type Filing struct {
	Form            string `json:"form"`
	FilingDate      string `json:"filing_date"`
	AccessionNumber string `json:"accession_number"`
	PrimaryDocument string `json:"primary_document,omitempty"`
	Description     string `json:"description,omitempty"`
	DocumentURL     string `json:"document_url,omitempty"`
}

// Company is an EDGAR registrant.
type Company struct {
	CIK    string `json:"cik"`
	Name   string `json:"name"`
	Ticker string `json:"ticker,omitempty"`
}

// Client lists filings and resolves registrants against EDGAR.
type Client interface {
	// Filings returns recent filings of the given form type for a bank
	// holding company, newest first, capped at 10.
	Filings(ctx context.Context, bank, formType string) ([]Filing, error)

	// SearchCompanies finds registrants whose name matches the term.
	SearchCompanies(ctx context.Context, term string) ([]Company, error)

	// ResolveCIK maps a bank name to its zero-padded 10-digit CIK.
	ResolveCIK(ctx context.Context, bank string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithDataBaseURL overrides the data.sec.gov base URL.
func WithDataBaseURL(u string) Option {
	return func(c *httpClient) { c.dataBaseURL = strings.TrimRight(u, "/") }
}

// WithWWWBaseURL overrides the www.sec.gov base URL.
func WithWWWBaseURL(u string) Option {
	return func(c *httpClient) { c.wwwBaseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the User-Agent sent on every request. SEC rejects
// requests without a descriptive one.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithYears restricts filings to the given filing years.
func WithYears(years []int) Option {
	return func(c *httpClient) {
		if len(years) > 0 {
			c.years = years
		}
	}
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

// WithRequestRecorder registers a callback observing each request outcome,
// typically monitoring.Metrics.RecordUpstream.
func WithRequestRecorder(record func(service, result string)) Option {
	return func(c *httpClient) { c.record = record }
}

type httpClient struct {
	dataBaseURL string
	wwwBaseURL  string
	userAgent   string
	years       []int
	http        *http.Client
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
	breaker     *resilience.Breaker
	record      func(service, result string)
}

// NewClient creates an EDGAR client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		dataBaseURL: defaultDataBaseURL,
		wwwBaseURL:  defaultWWWBaseURL,
		userAgent:   defaultUserAgent,
		years:       []int{2023, 2024, 2025},
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// SEC fair-access guidance caps automated clients at 10 req/s.
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			ShouldTrip: resilience.IsTransient,
		}),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("edgar", "request")
	return c
}

// bankCIKs maps major bank holding companies to their EDGAR CIK numbers.
// Matched by substring against the upper-cased query.
var bankCIKs = []struct {
	key string
	cik string
}{
	{"JPMORGAN", "0000019617"},
	{"BANK OF AMERICA", "0000070858"},
	{"WELLS FARGO", "0000072971"},
	{"CITIGROUP", "0000831001"},
	{"CITI", "0000831001"},
	{"GOLDMAN SACHS", "0000886982"},
	{"MORGAN STANLEY", "0000895421"},
	{"U.S. BANCORP", "0000036104"},
	{"US BANCORP", "0000036104"},
	{"PNC", "0000713676"},
	{"CAPITAL ONE", "0000927628"},
	{"TRUIST", "0001534701"},
	{"WEBSTER", "0000801337"},
	{"FIFTH THIRD", "0000035527"},
	{"KEYCORP", "0000091576"},
	{"REGIONS", "0001281761"},
	{"M&T BANK", "0000036270"},
	{"HUNTINGTON", "0000049196"},
}

func (c *httpClient) ResolveCIK(ctx context.Context, bank string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(bank))
	if n, err := strconv.Atoi(upper); err == nil {
		// Caller passed a CIK directly.
		return fmt.Sprintf("%010d", n), nil
	}
	for _, entry := range bankCIKs {
		if strings.Contains(upper, entry.key) {
			return entry.cik, nil
		}
	}

	companies, err := c.SearchCompanies(ctx, bank)
	if err != nil {
		return "", err
	}
	if len(companies) == 0 {
		return "", eris.Errorf("edgar: no CIK found for %q", bank)
	}
	return companies[0].CIK, nil
}

// submissionsResponse mirrors the column-oriented layout of the EDGAR
// submissions feed: parallel arrays indexed together.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber       []string `json:"accessionNumber"`
			FilingDate            []string `json:"filingDate"`
			Form                  []string `json:"form"`
			PrimaryDocument       []string `json:"primaryDocument"`
			PrimaryDocDescription []string `json:"primaryDocDescription"`
		} `json:"recent"`
	} `json:"filings"`
}

func (c *httpClient) Filings(ctx context.Context, bank, formType string) ([]Filing, error) {
	cik, err := c.ResolveCIK(ctx, bank)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, c.dataBaseURL+"/submissions/CIK"+cik+".json")
	if err != nil {
		return nil, eris.Wrapf(err, "edgar: submissions cik=%s", cik)
	}

	var subs submissionsResponse
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, eris.Wrap(err, "edgar: unmarshal submissions")
	}

	recent := subs.Filings.Recent
	filings := make([]Filing, 0, maxFilings)
	for i := range recent.Form {
		if formType != "" && !strings.EqualFold(recent.Form[i], formType) {
			continue
		}
		if i >= len(recent.FilingDate) || !c.inYearWindow(recent.FilingDate[i]) {
			continue
		}
		f := Filing{
			Form:       recent.Form[i],
			FilingDate: recent.FilingDate[i],
		}
		if i < len(recent.AccessionNumber) {
			f.AccessionNumber = recent.AccessionNumber[i]
		}
		if i < len(recent.PrimaryDocument) {
			f.PrimaryDocument = recent.PrimaryDocument[i]
		}
		if i < len(recent.PrimaryDocDescription) {
			f.Description = recent.PrimaryDocDescription[i]
		}
		f.DocumentURL = c.documentURL(cik, f)
		filings = append(filings, f)
	}

	sort.SliceStable(filings, func(i, j int) bool {
		return filings[i].FilingDate > filings[j].FilingDate
	})
	if len(filings) > maxFilings {
		filings = filings[:maxFilings]
	}
	return filings, nil
}

// tickerEntry is one row of company_tickers.json, which is keyed by
// arbitrary string indices.
type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

func (c *httpClient) SearchCompanies(ctx context.Context, term string) ([]Company, error) {
	body, err := c.get(ctx, c.wwwBaseURL+"/files/company_tickers.json")
	if err != nil {
		return nil, eris.Wrap(err, "edgar: company tickers")
	}

	var entries map[string]tickerEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, eris.Wrap(err, "edgar: unmarshal company tickers")
	}

	upper := strings.ToUpper(strings.TrimSpace(term))
	var out []Company
	for _, e := range entries {
		if !strings.Contains(strings.ToUpper(e.Title), upper) {
			continue
		}
		out = append(out, Company{
			CIK:    fmt.Sprintf("%010d", e.CIK),
			Name:   e.Title,
			Ticker: e.Ticker,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *httpClient) documentURL(cik string, f Filing) string {
	if f.AccessionNumber == "" || f.PrimaryDocument == "" {
		return ""
	}
	cikNum := strings.TrimLeft(cik, "0")
	accession := strings.ReplaceAll(f.AccessionNumber, "-", "")
	return c.wwwBaseURL + "/Archives/edgar/data/" + cikNum + "/" + accession + "/" + f.PrimaryDocument
}

func (c *httpClient) inYearWindow(filingDate string) bool {
	if len(filingDate) < 4 {
		return false
	}
	year, err := strconv.Atoi(filingDate[:4])
	if err != nil {
		return false
	}
	for _, y := range c.years {
		if y == year {
			return true
		}
	}
	return false
}

func (c *httpClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
			return c.getOnce(ctx, rawURL)
		})
	})
	if c.record != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.record("edgar", result)
	}
	return body, err
}

func (c *httpClient) getOnce(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "edgar: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "edgar: send request"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "edgar: read response"), 0)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("edgar: unexpected status %d for %s", resp.StatusCode, rawURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}
