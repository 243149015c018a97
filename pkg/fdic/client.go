// Package fdic is a client for the FDIC BankFind Suite API. It covers the
// institutions and financials endpoints used for bank resolution, peer
// queries, and call-report retrieval.
package fdic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/bankiq/bankiq-cli/internal/model"
	"github.com/bankiq/bankiq-cli/internal/resilience"
)

const defaultBaseURL = "https://api.fdic.gov"

// DefaultFinancialFields is the call-report field set fetched for risk
// assessment when the caller does not specify one.
var DefaultFinancialFields = []string{
	"CERT", "REPDTE",
	model.FieldAsset, model.FieldDeposits, model.FieldNetIncome,
	model.FieldROA, model.FieldROE, model.FieldNIM,
	model.FieldEquity, model.FieldNetLoans, model.FieldNoncurrent,
	model.FieldLossAllowance, model.FieldTier1, model.FieldIntExpense,
	model.FieldNonIntExpense, model.FieldCREConcentr,
}

// Client queries the FDIC registry and call-report data.
type Client interface {
	// SearchInstitutions searches institutions by name search term.
	SearchInstitutions(ctx context.Context, term string) ([]model.Institution, error)

	// Financials returns up to limit of the most recent call-report records
	// for a certificate, sorted ascending by report date. An empty fields
	// slice requests DefaultFinancialFields.
	Financials(ctx context.Context, cert string, fields []string, limit int) ([]model.FinancialRecord, error)

	// TopBanks returns the n largest active institutions by total assets.
	TopBanks(ctx context.Context, n int) ([]model.Institution, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
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

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
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
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
	record  func(service, result string)
}

// NewClient creates an FDIC API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			ShouldTrip: resilience.IsTransient,
		}),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("fdic", "request")
	return c
}

// apiResponse is the BankFind envelope: each row wraps its field map in a
// nested "data" object.
type apiResponse struct {
	Data []struct {
		Data map[string]any `json:"data"`
	} `json:"data"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (c *httpClient) SearchInstitutions(ctx context.Context, term string) ([]model.Institution, error) {
	q := url.Values{}
	q.Set("search", "NAME:"+term)
	q.Set("fields", "CERT,NAME,ASSET,ACTIVE")
	q.Set("limit", "50")

	resp, err := c.get(ctx, "/banks/institutions", q)
	if err != nil {
		return nil, eris.Wrapf(err, "fdic: search institutions %q", term)
	}
	return decodeInstitutions(resp), nil
}

func (c *httpClient) TopBanks(ctx context.Context, n int) ([]model.Institution, error) {
	if n <= 0 {
		n = 10
	}
	q := url.Values{}
	q.Set("filters", "ACTIVE:1")
	q.Set("fields", "CERT,NAME,ASSET,ACTIVE")
	q.Set("sort_by", "ASSET")
	q.Set("sort_order", "DESC")
	q.Set("limit", strconv.Itoa(n))

	resp, err := c.get(ctx, "/banks/institutions", q)
	if err != nil {
		return nil, eris.Wrap(err, "fdic: top banks")
	}
	return decodeInstitutions(resp), nil
}

func (c *httpClient) Financials(ctx context.Context, cert string, fields []string, limit int) ([]model.FinancialRecord, error) {
	if limit <= 0 {
		limit = 8
	}
	if len(fields) == 0 {
		fields = DefaultFinancialFields
	}

	base := url.Values{}
	base.Set("filters", "CERT:"+cert)
	base.Set("fields", strings.Join(fields, ","))

	// The endpoint returns oldest records first, so probe the total and
	// offset to the tail to get the most recent periods.
	probe := cloneValues(base)
	probe.Set("limit", "1")
	probeResp, err := c.get(ctx, "/banks/financials", probe)
	if err != nil {
		return nil, eris.Wrapf(err, "fdic: financials probe cert=%s", cert)
	}
	total := probeResp.Meta.Total
	if total == 0 {
		return nil, nil
	}

	q := cloneValues(base)
	q.Set("limit", strconv.Itoa(limit))
	if total > limit {
		q.Set("offset", strconv.Itoa(total-limit))
	}
	resp, err := c.get(ctx, "/banks/financials", q)
	if err != nil {
		return nil, eris.Wrapf(err, "fdic: financials cert=%s", cert)
	}

	records := make([]model.FinancialRecord, 0, len(resp.Data))
	for _, row := range resp.Data {
		records = append(records, decodeFinancialRecord(cert, row.Data))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values) (*apiResponse, error) {
	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*apiResponse, error) {
		return resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*apiResponse, error) {
			return c.getOnce(ctx, path, q)
		})
	})
	if c.record != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.record("fdic", result)
	}
	return resp, err
}

func (c *httpClient) getOnce(ctx context.Context, path string, q url.Values) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fdic: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "fdic: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "fdic: send request"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "fdic: read response"), 0)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fdic: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "fdic: unmarshal response")
	}
	return &parsed, nil
}

func decodeInstitutions(resp *apiResponse) []model.Institution {
	out := make([]model.Institution, 0, len(resp.Data))
	for _, row := range resp.Data {
		inst := model.Institution{
			Cert:   asString(row.Data["CERT"]),
			Name:   asString(row.Data["NAME"]),
			Asset:  asFloat(row.Data["ASSET"]),
			Active: asFloat(row.Data["ACTIVE"]) == 1,
		}
		if inst.Cert == "" {
			continue
		}
		out = append(out, inst)
	}
	return out
}

func decodeFinancialRecord(cert string, data map[string]any) model.FinancialRecord {
	rec := model.FinancialRecord{
		Cert:       cert,
		ID:         asString(data["ID"]),
		ReportDate: asString(data["REPDTE"]),
		Fields:     make(map[string]float64, len(data)),
	}
	for k, v := range data {
		switch k {
		case "ID", "REPDTE":
			continue
		}
		if f, ok := toFloat(v); ok {
			rec.Fields[k] = f
		}
	}
	if rec.ID == "" && rec.ReportDate != "" {
		rec.ID = cert + "_" + rec.ReportDate
	}
	rec.Period = PeriodLabel(rec.ID)
	return rec
}

// PeriodLabel converts a record ID of the form "<cert>_<yyyymmdd>" into a
// quarter label like "2024-Q2". Unparseable IDs are returned unchanged.
func PeriodLabel(id string) string {
	idx := strings.LastIndex(id, "_")
	if idx < 0 || len(id)-idx-1 < 6 {
		return id
	}
	date := id[idx+1:]
	year := date[:4]
	month, err := strconv.Atoi(date[4:6])
	if err != nil || month < 1 || month > 12 {
		return id
	}
	return fmt.Sprintf("%s-Q%d", year, (month+2)/3)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func asFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
