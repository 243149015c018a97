// Package engine exposes the assessment operations as pure
// request→response functions. Every operation returns a result with an
// explicit success flag; internal error chains are classified and logged
// here and never cross the boundary.
package engine

import (
	"context"
	"io"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bankiq/bankiq-cli/internal/alerts"
	"github.com/bankiq/bankiq-cli/internal/cache"
	"github.com/bankiq/bankiq-cli/internal/dataset"
	"github.com/bankiq/bankiq-cli/internal/model"
	"github.com/bankiq/bankiq-cli/internal/monitoring"
	"github.com/bankiq/bankiq-cli/internal/peer"
	"github.com/bankiq/bankiq-cli/internal/ratios"
	"github.com/bankiq/bankiq-cli/internal/resolve"
	"github.com/bankiq/bankiq-cli/internal/scorer"
	"github.com/bankiq/bankiq-cli/internal/store"
	"github.com/bankiq/bankiq-cli/pkg/edgar"
	"github.com/bankiq/bankiq-cli/pkg/fdic"
)

const (
	methodology = "CAMELS-inspired (Capital 25%, Asset Quality 25%, Earnings 20%, Liquidity 15%, Sensitivity 15%)"
	dataSource  = "FDIC Call Reports"
	disclaimer  = "Simplified risk score based on public FDIC data. Not an official regulatory rating."
)

// Engine wires the resolver, clients, scorer, and cache into the operation
// surface.
type Engine struct {
	resolver *resolve.Resolver
	fdic     fdic.Client
	edgar    edgar.Client
	scorer   *scorer.Scorer
	alerts   *alerts.Generator
	peers    *peer.Aggregator
	cache    *cache.Cache
	store    store.Store
	metrics  *monitoring.Metrics
}

// Params collects the engine's collaborators. Store and Metrics are
// optional; the dataset operations fail cleanly without a store.
type Params struct {
	Resolver *resolve.Resolver
	FDIC     fdic.Client
	EDGAR    edgar.Client
	Scorer   *scorer.Scorer
	Alerts   *alerts.Generator
	Peers    *peer.Aggregator
	Cache    *cache.Cache
	Store    store.Store
	Metrics  *monitoring.Metrics
}

// New creates an Engine.
func New(p Params) *Engine {
	if p.Cache == nil {
		p.Cache = cache.New(cache.DefaultConfig())
	}
	return &Engine{
		resolver: p.Resolver,
		fdic:     p.FDIC,
		edgar:    p.EDGAR,
		scorer:   p.Scorer,
		alerts:   p.Alerts,
		peers:    p.Peers,
		cache:    p.Cache,
		store:    p.Store,
		metrics:  p.Metrics,
	}
}

// ResolveBank maps a bank name to its FDIC institution record.
func (e *Engine) ResolveBank(ctx context.Context, name string) *ResolveBankResult {
	defer e.observe("resolve_bank", time.Now())
	if name == "" {
		return &ResolveBankResult{Response: e.invalid("resolve_bank", "bank name is required")}
	}

	inst, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return &ResolveBankResult{Response: e.fail("resolve_bank", err)}
	}
	return &ResolveBankResult{Response: ok(), Institution: inst}
}

// TopBanks lists the largest active institutions by total assets.
func (e *Engine) TopBanks(ctx context.Context, limit int) *TopBanksResult {
	defer e.observe("top_banks", time.Now())

	banks, err := e.fdic.TopBanks(ctx, limit)
	if err != nil {
		return &TopBanksResult{Response: e.fail("top_banks", err)}
	}
	return &TopBanksResult{Response: ok(), Banks: banks}
}

// BankFinancials returns the last n quarterly call-report records for a
// bank, oldest first.
func (e *Engine) BankFinancials(ctx context.Context, name string, n int) *BankFinancialsResult {
	defer e.observe("bank_financials", time.Now())
	if name == "" {
		return &BankFinancialsResult{Response: e.invalid("bank_financials", "bank name is required")}
	}

	inst, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return &BankFinancialsResult{Response: e.fail("bank_financials", err)}
	}

	records, err := e.fdic.Financials(ctx, inst.Cert, nil, n)
	if err != nil {
		return &BankFinancialsResult{Response: e.fail("bank_financials", err)}
	}
	return &BankFinancialsResult{
		Response: ok(),
		Bank:     inst.Name,
		Cert:     inst.Cert,
		Records:  records,
	}
}

// AssessRisk computes the composite risk assessment for a bank from its
// most recent call report. Results are cached for the score TTL.
func (e *Engine) AssessRisk(ctx context.Context, name string) *RiskAssessment {
	defer e.observe("assess_risk", time.Now())
	if name == "" {
		return &RiskAssessment{Response: e.invalid("assess_risk", "bank name is required")}
	}

	if hit, found := e.cache.Get(name, cache.KindRiskScore); found {
		e.recordCache(cache.KindRiskScore, true)
		if cached, okType := hit.(*RiskAssessment); okType {
			return cached
		}
	}
	e.recordCache(cache.KindRiskScore, false)

	inst, rec, resp := e.latestRecord(ctx, "assess_risk", name)
	if rec == nil {
		return &RiskAssessment{Response: resp}
	}

	m := ratios.Derive(rec)
	score := e.scorer.Score(m)
	alertList := e.alerts.Generate(m)

	result := &RiskAssessment{
		Response:     ok(),
		Bank:         inst.Name,
		Cert:         inst.Cert,
		OverallScore: scorer.Round(score.Composite),
		Scores: map[string]int{
			string(model.ComponentCapital):     scorer.Round(score.Component(model.ComponentCapital).SubScore),
			string(model.ComponentAssetQual):   scorer.Round(score.Component(model.ComponentAssetQual).SubScore),
			string(model.ComponentEarnings):    scorer.Round(score.Component(model.ComponentEarnings).SubScore),
			string(model.ComponentLiquidity):   scorer.Round(score.Component(model.ComponentLiquidity).SubScore),
			string(model.ComponentSensitivity): scorer.Round(score.Component(model.ComponentSensitivity).SubScore),
		},
		RiskGauges: map[string]int{
			"capital_risk":   scorer.Round(100 - score.Component(model.ComponentCapital).SubScore),
			"liquidity_risk": scorer.Round(100 - score.Component(model.ComponentLiquidity).SubScore),
			"credit_risk":    scorer.Round(100 - score.Component(model.ComponentAssetQual).SubScore),
		},
		Metrics:     assessmentMetrics(m),
		Methodology: methodology,
		DataSource:  dataSource,
		Alerts:      alertList,
		LastUpdated: rec.ReportDate,
		Disclaimer:  disclaimer,
	}

	e.cache.Set(name, cache.KindRiskScore, result)
	return result
}

// MonitorAlerts evaluates the regulatory threshold rules for a bank.
// Results are cached for the alert TTL.
func (e *Engine) MonitorAlerts(ctx context.Context, name string) *AlertsResult {
	defer e.observe("monitor_alerts", time.Now())
	if name == "" {
		return &AlertsResult{Response: e.invalid("monitor_alerts", "bank name is required")}
	}

	if hit, found := e.cache.Get(name, cache.KindAlerts); found {
		e.recordCache(cache.KindAlerts, true)
		if cached, okType := hit.(*AlertsResult); okType {
			return cached
		}
	}
	e.recordCache(cache.KindAlerts, false)

	inst, rec, resp := e.latestRecord(ctx, "monitor_alerts", name)
	if rec == nil {
		return &AlertsResult{Response: resp}
	}

	result := &AlertsResult{
		Response: ok(),
		Bank:     inst.Name,
		Cert:     inst.Cert,
		Period:   rec.Period,
		Alerts:   e.alerts.Generate(ratios.Derive(rec)),
	}
	e.cache.Set(name, cache.KindAlerts, result)
	return result
}

// CompareBanks builds a live peer-comparison series from FDIC data.
func (e *Engine) CompareBanks(ctx context.Context, base string, peerNames []string, metric string) *ComparisonResult {
	defer e.observe("compare_banks", time.Now())
	if base == "" {
		return &ComparisonResult{Response: e.invalid("compare_banks", "base bank is required")}
	}

	series, err := e.peers.Compare(ctx, base, peerNames, metric)
	if err != nil {
		return &ComparisonResult{Response: e.fail("compare_banks", err)}
	}
	return &ComparisonResult{Response: ok(), Series: series}
}

// CompareBanksDataset builds a comparison series from an uploaded dataset
// identified by ID or name.
func (e *Engine) CompareBanksDataset(ctx context.Context, base string, peerNames []string, metric, datasetKey string) *ComparisonResult {
	defer e.observe("compare_banks_dataset", time.Now())
	if e.store == nil {
		return &ComparisonResult{Response: e.invalid("compare_banks_dataset", "no dataset store configured")}
	}
	if base == "" || datasetKey == "" {
		return &ComparisonResult{Response: e.invalid("compare_banks_dataset", "base bank and dataset are required")}
	}

	ds, err := e.store.GetDataset(ctx, datasetKey)
	if err != nil {
		ds, err = e.store.FindDatasetByName(ctx, datasetKey)
	}
	if err != nil {
		return &ComparisonResult{Response: e.fail("compare_banks_dataset", err)}
	}

	banks := append([]string{base}, peerNames...)
	points, err := e.store.Points(ctx, ds.ID, metric, banks)
	if err != nil {
		return &ComparisonResult{Response: e.fail("compare_banks_dataset", err)}
	}
	if len(points) == 0 {
		return &ComparisonResult{Response: e.invalid("compare_banks_dataset",
			"dataset "+ds.Name+" has no rows for metric "+metric)}
	}

	series := peer.BuildSeries(base, peerNames, metric, points, "uploaded dataset: "+ds.Name)
	return &ComparisonResult{Response: ok(), Series: series}
}

// ImportDataset parses and stores an uploaded CSV dataset.
func (e *Engine) ImportDataset(ctx context.Context, r io.Reader, name string) *DatasetImportResult {
	defer e.observe("import_dataset", time.Now())
	if e.store == nil {
		return &DatasetImportResult{Response: e.invalid("import_dataset", "no dataset store configured")}
	}

	ds, err := dataset.ParseCSV(r, name)
	if err != nil {
		return &DatasetImportResult{Response: e.invalid("import_dataset", errMessage(err))}
	}
	if err := e.store.SaveDataset(ctx, ds); err != nil {
		return &DatasetImportResult{Response: e.fail("import_dataset", err)}
	}
	return &DatasetImportResult{Response: ok(), Dataset: ds, Rows: len(ds.Rows)}
}

// ListDatasets lists stored datasets, newest first.
func (e *Engine) ListDatasets(ctx context.Context) *DatasetListResult {
	defer e.observe("list_datasets", time.Now())
	if e.store == nil {
		return &DatasetListResult{Response: e.invalid("list_datasets", "no dataset store configured")}
	}

	list, err := e.store.ListDatasets(ctx)
	if err != nil {
		return &DatasetListResult{Response: e.fail("list_datasets", err)}
	}
	return &DatasetListResult{Response: ok(), Datasets: list}
}

// SearchFilings lists recent EDGAR filings of one form type for a bank.
func (e *Engine) SearchFilings(ctx context.Context, name, formType string) *FilingsResult {
	defer e.observe("search_filings", time.Now())
	if name == "" {
		return &FilingsResult{Response: e.invalid("search_filings", "bank name is required")}
	}

	filings, err := e.edgar.Filings(ctx, name, formType)
	if err != nil {
		return &FilingsResult{Response: e.fail("search_filings", err)}
	}
	return &FilingsResult{Response: ok(), Bank: name, Filings: filings}
}

// SearchBanks finds EDGAR registrants matching a name query.
func (e *Engine) SearchBanks(ctx context.Context, query string) *BankSearchResult {
	defer e.observe("search_banks", time.Now())
	if query == "" {
		return &BankSearchResult{Response: e.invalid("search_banks", "query is required")}
	}

	companies, err := e.edgar.SearchCompanies(ctx, query)
	if err != nil {
		return &BankSearchResult{Response: e.fail("search_banks", err)}
	}
	return &BankSearchResult{Response: ok(), Companies: companies}
}

// latestRecord resolves a bank and fetches its most recent call report.
// On failure the returned record is nil and the Response explains why.
func (e *Engine) latestRecord(ctx context.Context, op, name string) (model.Institution, *model.FinancialRecord, Response) {
	inst, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return inst, nil, e.fail(op, err)
	}

	records, err := e.fdic.Financials(ctx, inst.Cert, nil, 1)
	if err != nil {
		return inst, nil, e.fail(op, err)
	}
	if len(records) == 0 {
		return inst, nil, Response{
			Success: false,
			Error:   "no call-report data available for " + inst.Name,
			Code:    CodeNotFound,
		}
	}
	return inst, &records[len(records)-1], Response{}
}

func assessmentMetrics(m model.DerivedMetrics) AssessmentMetrics {
	out := AssessmentMetrics{
		ROA:           round2(m.Value(model.MetricROA)),
		ROE:           round2(m.Value(model.MetricROE)),
		LeverageRatio: round2(m.Value(model.MetricLeverageRatio)),
		NPLRatio:      round2(m.Value(model.MetricNPLRatio)),
		CoverageRatio: round1(m.Value(model.MetricCoverageRatio)),
		LTDRatio:      round2(m.Value(model.MetricLTDRatio)),
		NIM:           round2(m.Value(model.MetricNIM)),
		Assets:        round2(m.Value(model.MetricAssets)),
	}
	if t1 := m.Value(model.MetricTier1Ratio); t1 > 0 {
		v := round2(t1)
		out.Tier1Ratio = &v
	}
	return out
}

func (e *Engine) fail(op string, err error) Response {
	code := classify(err)
	zap.L().Warn("operation failed",
		zap.String("operation", op),
		zap.String("code", code),
		zap.Error(err),
	)
	return Response{Success: false, Error: errMessage(err), Code: code}
}

func (e *Engine) invalid(op, msg string) Response {
	zap.L().Debug("invalid request", zap.String("operation", op), zap.String("reason", msg))
	return Response{Success: false, Error: msg, Code: CodeInvalid}
}

func (e *Engine) observe(op string, start time.Time) {
	if e.metrics != nil {
		e.metrics.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (e *Engine) recordCache(kind cache.Kind, hit bool) {
	if e.metrics != nil {
		e.metrics.RecordCacheLookup(string(kind), hit)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
