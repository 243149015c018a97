package edgar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankiq/bankiq-cli/internal/resilience"
)

const submissionsFixture = `{
	"cik": "19617",
	"name": "JPMORGAN CHASE & CO",
	"filings": {
		"recent": {
			"accessionNumber": ["0000019617-25-000123", "0000019617-25-000045", "0000019617-24-000200", "0000019617-22-000001"],
			"filingDate": ["2025-04-30", "2025-02-15", "2024-11-01", "2022-05-01"],
			"form": ["10-Q", "10-K", "10-Q", "10-Q"],
			"primaryDocument": ["jpm-q1.htm", "jpm-10k.htm", "jpm-q3.htm", "jpm-old.htm"],
			"primaryDocDescription": ["Quarterly report", "Annual report", "Quarterly report", "Quarterly report"]
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithDataBaseURL(srv.URL),
		WithWWWBaseURL(srv.URL),
		WithRetry(resilience.RetryConfig{MaxAttempts: 1}),
	)
}

func TestFilingsFiltersFormAndYearWindow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submissions/CIK0000019617.json", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "bankiq")
		fmt.Fprint(w, submissionsFixture)
	})

	filings, err := c.Filings(context.Background(), "JPMorgan Chase", "10-Q")
	require.NoError(t, err)

	// the 2022 10-Q falls outside the year window; the 10-K is filtered by form
	require.Len(t, filings, 2)
	assert.Equal(t, "2025-04-30", filings[0].FilingDate)
	assert.Equal(t, "2024-11-01", filings[1].FilingDate)
	assert.Equal(t, "/Archives/edgar/data/19617/000001961725000123/jpm-q1.htm", trimHost(t, filings[0].DocumentURL))
}

func trimHost(t *testing.T, u string) string {
	t.Helper()
	for i := 0; i < len(u); i++ {
		if u[i] == '/' && i > 8 {
			return u[i:]
		}
	}
	return u
}

func TestFilingsCapsAtTen(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cik":"19617","filings":{"recent":{
			"accessionNumber":["a1","a2","a3","a4","a5","a6","a7","a8","a9","a10","a11","a12"],
			"filingDate":["2025-01-01","2025-01-02","2025-01-03","2025-01-04","2025-01-05","2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10","2025-01-11","2025-01-12"],
			"form":["8-K","8-K","8-K","8-K","8-K","8-K","8-K","8-K","8-K","8-K","8-K","8-K"],
			"primaryDocument":["d","d","d","d","d","d","d","d","d","d","d","d"],
			"primaryDocDescription":["","","","","","","","","","","",""]
		}}}`)
	})

	filings, err := c.Filings(context.Background(), "JPMorgan", "8-K")
	require.NoError(t, err)
	assert.Len(t, filings, 10)
	assert.Equal(t, "2025-01-12", filings[0].FilingDate)
}

func TestResolveCIKStaticTable(t *testing.T) {
	c := NewClient() // no server needed, static hit
	tests := []struct {
		bank string
		cik  string
	}{
		{"JPMorgan Chase & Co", "0000019617"},
		{"wells fargo & company", "0000072971"},
		{"GOLDMAN SACHS GROUP", "0000886982"},
		{"Truist Financial Corp", "0001534701"},
		{"19617", "0000019617"}, // explicit CIK passes through zero-padded
		{"0000072971", "0000072971"},
	}
	for _, tt := range tests {
		cik, err := c.ResolveCIK(context.Background(), tt.bank)
		require.NoError(t, err, tt.bank)
		assert.Equal(t, tt.cik, cik, tt.bank)
	}
}

func TestResolveCIKFallsBackToCompanySearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/company_tickers.json", r.URL.Path)
		fmt.Fprint(w, `{
			"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
			"1": {"cik_str": 1841666, "ticker": "ZION", "title": "Zions Bancorporation"}
		}`)
	})

	cik, err := c.ResolveCIK(context.Background(), "Zions Bancorporation")
	require.NoError(t, err)
	assert.Equal(t, "0001841666", cik)
}

func TestResolveCIKUnknownBank(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	_, err := c.ResolveCIK(context.Background(), "Totally Unknown Bank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CIK found")
}

func TestSearchCompaniesMatchesSubstring(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"0": {"cik_str": 36104, "ticker": "USB", "title": "US BANCORP \\DE\\"},
			"1": {"cik_str": 1841666, "ticker": "ZION", "title": "Zions Bancorporation"},
			"2": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}
		}`)
	})

	companies, err := c.SearchCompanies(context.Background(), "bancorp")
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "US BANCORP \\DE\\", companies[0].Name)
	assert.Equal(t, "Zions Bancorporation", companies[1].Name)
}

func TestFilingsUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Filings(context.Background(), "JPMorgan", "10-K")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestWithTimeout(t *testing.T) {
	c := NewClient(WithTimeout(30 * time.Second)).(*httpClient)
	assert.Equal(t, 30*time.Second, c.http.Timeout)

	// Zero keeps the default.
	c = NewClient(WithTimeout(0)).(*httpClient)
	assert.Equal(t, 10*time.Second, c.http.Timeout)
}
