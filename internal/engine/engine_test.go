package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankiq/bankiq-cli/internal/alerts"
	"github.com/bankiq/bankiq-cli/internal/cache"
	"github.com/bankiq/bankiq-cli/internal/model"
	"github.com/bankiq/bankiq-cli/internal/peer"
	"github.com/bankiq/bankiq-cli/internal/resilience"
	"github.com/bankiq/bankiq-cli/internal/resolve"
	"github.com/bankiq/bankiq-cli/internal/scorer"
	"github.com/bankiq/bankiq-cli/internal/store"
	"github.com/bankiq/bankiq-cli/pkg/edgar"
)

type fakeFDIC struct {
	financials map[string][]model.FinancialRecord
	errs       map[string]error
	top        []model.Institution
	fetchCalls int
}

func (f *fakeFDIC) SearchInstitutions(ctx context.Context, term string) ([]model.Institution, error) {
	return nil, nil
}

func (f *fakeFDIC) Financials(ctx context.Context, cert string, fields []string, limit int) ([]model.FinancialRecord, error) {
	f.fetchCalls++
	if err := f.errs[cert]; err != nil {
		return nil, err
	}
	return f.financials[cert], nil
}

func (f *fakeFDIC) TopBanks(ctx context.Context, n int) ([]model.Institution, error) {
	return f.top, nil
}

type fakeEDGAR struct {
	filings   []edgar.Filing
	companies []edgar.Company
	err       error
}

func (f *fakeEDGAR) Filings(ctx context.Context, bank, formType string) ([]edgar.Filing, error) {
	return f.filings, f.err
}

func (f *fakeEDGAR) SearchCompanies(ctx context.Context, term string) ([]edgar.Company, error) {
	return f.companies, f.err
}

func (f *fakeEDGAR) ResolveCIK(ctx context.Context, bank string) (string, error) {
	return "0000019617", f.err
}

func strongBankRecord() model.FinancialRecord {
	return model.FinancialRecord{
		Cert:       "628",
		ID:         "628_20250331",
		Period:     "2025-Q1",
		ReportDate: "20250331",
		Fields: map[string]float64{
			model.FieldAsset:         1000,
			model.FieldDeposits:      800,
			model.FieldNetLoans:      600,
			model.FieldNoncurrent:    3,
			model.FieldLossAllowance: 4.5,
			model.FieldEquity:        90,
			model.FieldTier1:         12,
			model.FieldROA:           1.0,
			model.FieldROE:           12,
			model.FieldNIM:           3.0,
			model.FieldNonIntExpense: 18,
		},
	}
}

func weakBankRecord() model.FinancialRecord {
	return model.FinancialRecord{
		Cert:       "3510",
		ID:         "3510_20250331",
		Period:     "2025-Q1",
		ReportDate: "20250331",
		Fields: map[string]float64{
			model.FieldAsset:         1000,
			model.FieldDeposits:      500,
			model.FieldNetLoans:      550,
			model.FieldNoncurrent:    22,
			model.FieldLossAllowance: 11,
			model.FieldEquity:        35,
			model.FieldTier1:         5,
			model.FieldROA:           0.2,
			model.FieldNIM:           1.0,
		},
	}
}

func newTestEngine(t *testing.T, fd *fakeFDIC, ed *fakeEDGAR) *Engine {
	t.Helper()
	resolver := resolve.New(fd)

	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	return New(Params{
		Resolver: resolver,
		FDIC:     fd,
		EDGAR:    ed,
		Scorer:   scorer.New(scorer.DefaultConfig()),
		Alerts:   alerts.NewGenerator(alerts.DefaultThresholds()),
		Peers:    peer.NewAggregator(resolver, fd, []int{2023, 2024, 2025}),
		Cache:    cache.New(cache.DefaultConfig()),
		Store:    s,
	})
}

func TestAssessRiskStrongBank(t *testing.T) {
	fd := &fakeFDIC{financials: map[string][]model.FinancialRecord{
		"628": {strongBankRecord()},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	res := e.AssessRisk(context.Background(), "JPMorgan Chase")
	require.True(t, res.Success, res.Error)

	assert.Equal(t, "JPMorgan Chase Bank", res.Bank)
	assert.Equal(t, "628", res.Cert)
	assert.Equal(t, 89, res.OverallScore)
	assert.Equal(t, 96, res.Scores["capital_adequacy"])
	assert.Equal(t, 95, res.Scores["asset_quality"])
	assert.Equal(t, 73, res.Scores["earnings"])
	assert.Equal(t, 100, res.Scores["liquidity"])
	assert.Equal(t, 80, res.Scores["sensitivity"])

	assert.Equal(t, 4, res.RiskGauges["capital_risk"])
	assert.Equal(t, 0, res.RiskGauges["liquidity_risk"])
	assert.Equal(t, 5, res.RiskGauges["credit_risk"])

	require.NotNil(t, res.Metrics.Tier1Ratio)
	assert.Equal(t, 12.0, *res.Metrics.Tier1Ratio)
	assert.Equal(t, 9.0, res.Metrics.LeverageRatio)
	assert.Equal(t, 75.0, res.Metrics.LTDRatio)
	assert.Equal(t, 150.0, res.Metrics.CoverageRatio)
	assert.Equal(t, 0.5, res.Metrics.NPLRatio)

	assert.Contains(t, res.Methodology, "CAMELS-inspired")
	assert.Equal(t, "FDIC Call Reports", res.DataSource)
	assert.Contains(t, res.Disclaimer, "Not an official regulatory rating")
	assert.Equal(t, "20250331", res.LastUpdated)

	require.Len(t, res.Alerts, 1)
	assert.Equal(t, model.SeverityInfo, res.Alerts[0].Severity)
}

func TestAssessRiskCachedWithinTTL(t *testing.T) {
	fd := &fakeFDIC{financials: map[string][]model.FinancialRecord{
		"628": {strongBankRecord()},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	first := e.AssessRisk(context.Background(), "JPMorgan Chase")
	second := e.AssessRisk(context.Background(), "JPMorgan Chase")

	assert.Same(t, first, second)
	assert.Equal(t, 1, fd.fetchCalls)
}

func TestAssessRiskUnknownBank(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})

	res := e.AssessRisk(context.Background(), "Nonexistent Savings")
	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
	assert.NotEmpty(t, res.Error)
}

func TestAssessRiskNoCallReports(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})

	res := e.AssessRisk(context.Background(), "JPMorgan Chase")
	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Contains(t, res.Error, "no call-report data")
}

func TestAssessRiskUpstreamUnavailable(t *testing.T) {
	fd := &fakeFDIC{errs: map[string]error{
		"628": resilience.NewTransientError(eris.New("503"), 503),
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	res := e.AssessRisk(context.Background(), "JPMorgan Chase")
	assert.False(t, res.Success)
	assert.Equal(t, CodeUpstream, res.Code)
}

func TestAssessRiskEmptyName(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})
	res := e.AssessRisk(context.Background(), "")
	assert.False(t, res.Success)
	assert.Equal(t, CodeInvalid, res.Code)
}

func TestMonitorAlertsWeakBank(t *testing.T) {
	fd := &fakeFDIC{financials: map[string][]model.FinancialRecord{
		"3510": {weakBankRecord()},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	res := e.MonitorAlerts(context.Background(), "Bank of America")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "2025-Q1", res.Period)
	require.NotEmpty(t, res.Alerts)

	// errors sort before warnings
	assert.Equal(t, model.SeverityError, res.Alerts[0].Severity)
	var messages []string
	for _, a := range res.Alerts {
		messages = append(messages, a.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "Tier 1 capital ratio 5.00%")
	assert.Contains(t, joined, "NPL ratio 4.00%")
	assert.Contains(t, joined, "Loan-to-Deposit ratio 110.00%")
	assert.Contains(t, joined, "Loan loss coverage 50.0%")
}

func TestMonitorAlertsCachedSeparatelyFromScores(t *testing.T) {
	fd := &fakeFDIC{financials: map[string][]model.FinancialRecord{
		"628": {strongBankRecord()},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	e.AssessRisk(context.Background(), "JPMorgan Chase")
	e.MonitorAlerts(context.Background(), "JPMorgan Chase")
	// both populate independent cache entries, so two fetches
	assert.Equal(t, 2, fd.fetchCalls)

	e.MonitorAlerts(context.Background(), "JPMorgan Chase")
	assert.Equal(t, 2, fd.fetchCalls)
}

func TestCompareBanksLive(t *testing.T) {
	jpm := strongBankRecord()
	bofa := weakBankRecord()
	fd := &fakeFDIC{financials: map[string][]model.FinancialRecord{
		"628":  {jpm},
		"3510": {bofa},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	res := e.CompareBanks(context.Background(), "JPMorgan Chase", []string{"Bank of America"}, "ROA")
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Series)
	assert.Equal(t, "JPMorgan Chase", res.Series.Leader)
	assert.Equal(t, "Bank of America", res.Series.Laggard)
	assert.Contains(t, res.Series.Analysis, "at the top")
}

func TestCompareBanksUnsupportedMetric(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})
	res := e.CompareBanks(context.Background(), "JPMorgan Chase", nil, "Sharpe")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unsupported metric")
}

func TestDatasetRoundTrip(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})
	ctx := context.Background()

	csv := "Bank,Metric,2024-Q1,2024-Q2\n" +
		"Alpha Bank,ROA,1.8,1.8\n" +
		"Beta Bank,ROA,2.0,2.5\n" +
		"Gamma Bank,ROA,1.5,1.2\n"
	imp := e.ImportDataset(ctx, strings.NewReader(csv), "regional-peers")
	require.True(t, imp.Success, imp.Error)
	assert.Equal(t, 6, imp.Rows)

	list := e.ListDatasets(ctx)
	require.True(t, list.Success)
	require.Len(t, list.Datasets, 1)

	res := e.CompareBanksDataset(ctx, "Alpha Bank", []string{"Beta Bank", "Gamma Bank"}, "ROA", "regional-peers")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Beta Bank", res.Series.Leader)
	assert.Equal(t, "Gamma Bank", res.Series.Laggard)
	assert.InDelta(t, 1.3, res.Series.Spread, 1e-9)
	assert.Contains(t, res.Series.Analysis, "competitively")
	assert.Contains(t, res.Series.Source, "regional-peers")
}

func TestCompareBanksDatasetNotFound(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})
	res := e.CompareBanksDataset(context.Background(), "Alpha Bank", nil, "ROA", "missing")
	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
}

func TestCompareBanksDatasetNoMetricRows(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})
	ctx := context.Background()

	csv := "Bank,Metric,2024-Q1\nAlpha Bank,ROA,1.0\n"
	imp := e.ImportDataset(ctx, strings.NewReader(csv), "tiny")
	require.True(t, imp.Success)

	res := e.CompareBanksDataset(ctx, "Alpha Bank", nil, "NIM", "tiny")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no rows for metric NIM")
}

func TestResolveBank(t *testing.T) {
	e := newTestEngine(t, &fakeFDIC{}, &fakeEDGAR{})

	res := e.ResolveBank(context.Background(), "Truist Financial")
	require.True(t, res.Success)
	assert.Equal(t, "11069", res.Institution.Cert)

	res = e.ResolveBank(context.Background(), "")
	assert.False(t, res.Success)
	assert.Equal(t, CodeInvalid, res.Code)
}

func TestTopBanks(t *testing.T) {
	fd := &fakeFDIC{top: []model.Institution{
		{Cert: "628", Name: "JPMorgan Chase Bank", Asset: 3.4e9, Active: true},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	res := e.TopBanks(context.Background(), 1)
	require.True(t, res.Success)
	require.Len(t, res.Banks, 1)
	assert.Equal(t, "JPMorgan Chase Bank", res.Banks[0].Name)
}

func TestBankFinancials(t *testing.T) {
	fd := &fakeFDIC{financials: map[string][]model.FinancialRecord{
		"628": {strongBankRecord()},
	}}
	e := newTestEngine(t, fd, &fakeEDGAR{})

	res := e.BankFinancials(context.Background(), "JPMorgan Chase", 8)
	require.True(t, res.Success)
	assert.Equal(t, "628", res.Cert)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "2025-Q1", res.Records[0].Period)
}

func TestSearchFilings(t *testing.T) {
	ed := &fakeEDGAR{filings: []edgar.Filing{
		{Form: "10-K", FilingDate: "2025-02-15"},
	}}
	e := newTestEngine(t, &fakeFDIC{}, ed)

	res := e.SearchFilings(context.Background(), "JPMorgan Chase", "10-K")
	require.True(t, res.Success)
	require.Len(t, res.Filings, 1)
	assert.Equal(t, "10-K", res.Filings[0].Form)

	ed.err = eris.New("edgar down")
	res = e.SearchFilings(context.Background(), "JPMorgan Chase", "10-K")
	assert.False(t, res.Success)
}

func TestSearchBanks(t *testing.T) {
	ed := &fakeEDGAR{companies: []edgar.Company{
		{CIK: "0000019617", Name: "JPMORGAN CHASE & CO", Ticker: "JPM"},
	}}
	e := newTestEngine(t, &fakeFDIC{}, ed)

	res := e.SearchBanks(context.Background(), "jpmorgan")
	require.True(t, res.Success)
	require.Len(t, res.Companies, 1)

	res = e.SearchBanks(context.Background(), "")
	assert.False(t, res.Success)
	assert.Equal(t, CodeInvalid, res.Code)
}
