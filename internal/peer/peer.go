// Package peer builds side-by-side metric series for a base institution and
// its peers from FDIC call-report data, ranks them by the latest reported
// value, and writes a short narrative summary.
package peer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bankiq/bankiq-cli/internal/model"
	"github.com/bankiq/bankiq-cli/internal/ratios"
	"github.com/bankiq/bankiq-cli/internal/resolve"
)

// SourceCallReports labels series built from live FDIC data.
const SourceCallReports = "FDIC Call Reports"

const (
	calcEfficiency = "CALC_EFFICIENCY"
	calcLTD        = "CALC_LTD"
	calcEquity     = "CALC_EQUITY"
)

// metricMap maps display metric names to FDIC field codes or derived-ratio
// markers.
var metricMap = map[string]string{
	"ROA":               model.FieldROA,
	"ROE":               model.FieldROE,
	"NIM":               model.FieldNIM,
	"Efficiency Ratio":  calcEfficiency,
	"Loan-to-Deposit":   calcLTD,
	"Equity Ratio":      calcEquity,
	"CRE Concentration": model.FieldCREConcentr,
}

// Metrics returns the supported comparison metric names, sorted.
func Metrics() []string {
	out := make([]string, 0, len(metricMap))
	for k := range metricMap {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ResolveMetric canonicalizes a metric name, case-insensitively. The second
// return is false for unsupported metrics.
func ResolveMetric(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for k := range metricMap {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

// FinancialsSource fetches recent call-report records for a certificate.
type FinancialsSource interface {
	Financials(ctx context.Context, cert string, fields []string, limit int) ([]model.FinancialRecord, error)
}

// Aggregator resolves each institution and assembles the merged comparison
// series.
type Aggregator struct {
	resolver *resolve.Resolver
	source   FinancialsSource
	years    map[int]bool
	perBank  int
	fetchPar int
}

// Option adjusts an Aggregator.
type Option func(*Aggregator)

// WithMaxPeriods sets how many recent periods are fetched per institution.
func WithMaxPeriods(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.perBank = n
		}
	}
}

// NewAggregator creates an Aggregator over the given resolver and data
// source. years is the reporting-year window; records outside it are
// dropped.
func NewAggregator(resolver *resolve.Resolver, source FinancialsSource, years []int, opts ...Option) *Aggregator {
	yearSet := make(map[int]bool, len(years))
	for _, y := range years {
		yearSet[y] = true
	}
	a := &Aggregator{
		resolver: resolver,
		source:   source,
		years:    yearSet,
		perBank:  8,
		fetchPar: 4,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Compare builds the comparison series for base against peers on the named
// metric. Institutions that fail to resolve or fetch are skipped with a
// warning; the comparison proceeds with whoever is left.
func (a *Aggregator) Compare(ctx context.Context, base string, peers []string, metric string) (*model.ComparisonSeries, error) {
	canonical, ok := ResolveMetric(metric)
	if !ok {
		return nil, eris.Errorf("peer: unsupported metric %q (supported: %s)", metric, strings.Join(Metrics(), ", "))
	}

	banks := append([]string{base}, peers...)

	var mu sync.Mutex
	var points []model.SeriesPoint

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fetchPar)
	for _, bank := range banks {
		g.Go(func() error {
			pts, err := a.bankSeries(gctx, bank, canonical)
			if err != nil {
				zap.L().Warn("skipping institution in comparison",
					zap.String("bank", bank),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			points = append(points, pts...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, eris.Errorf("peer: no call-report data found for any of %s", strings.Join(banks, ", "))
	}

	return BuildSeries(base, peers, canonical, points, SourceCallReports), nil
}

func (a *Aggregator) bankSeries(ctx context.Context, bank, metric string) ([]model.SeriesPoint, error) {
	inst, err := a.resolver.Resolve(ctx, bank)
	if err != nil {
		return nil, err
	}

	records, err := a.source.Financials(ctx, inst.Cert, nil, a.perBank)
	if err != nil {
		return nil, err
	}

	var out []model.SeriesPoint
	for i := range records {
		rec := &records[i]
		if !a.inWindow(rec.Period) {
			continue
		}
		value, ok := metricValue(rec, metric)
		if !ok {
			continue
		}
		out = append(out, model.SeriesPoint{
			Bank:    bank,
			Quarter: rec.Period,
			Metric:  metric,
			Value:   value,
		})
	}
	return out, nil
}

func (a *Aggregator) inWindow(period string) bool {
	if len(a.years) == 0 {
		return true
	}
	if len(period) < 4 {
		return false
	}
	year, err := strconv.Atoi(period[:4])
	if err != nil {
		return false
	}
	return a.years[year]
}

func metricValue(rec *model.FinancialRecord, metric string) (float64, bool) {
	code := metricMap[metric]
	switch code {
	case calcEfficiency, calcLTD, calcEquity:
		// A derived ratio is only meaningful when its input fields were
		// reported; a genuine zero value still produces a point.
		inputs := map[string][]string{
			calcEfficiency: {model.FieldNonIntExpense, model.FieldNIM, model.FieldAsset},
			calcLTD:        {model.FieldNetLoans, model.FieldDeposits},
			calcEquity:     {model.FieldEquity, model.FieldAsset},
		}[code]
		for _, field := range inputs {
			if _, ok := rec.Fields[field]; !ok {
				return 0, false
			}
		}
		name := map[string]model.MetricName{
			calcEfficiency: model.MetricEfficiencyRatio,
			calcLTD:        model.MetricLTDRatio,
			calcEquity:     model.MetricEquityRatio,
		}[code]
		return ratios.Derive(rec).Value(name), true
	default:
		if _, ok := rec.Fields[code]; !ok {
			return 0, false
		}
		return rec.Field(code), true
	}
}

// BuildSeries merges points, ranks institutions by their latest value, and
// writes the analysis line. It is shared by the live and uploaded-dataset
// comparison paths.
func BuildSeries(base string, peers []string, metric string, points []model.SeriesPoint, source string) *model.ComparisonSeries {
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Quarter != points[j].Quarter {
			return points[i].Quarter < points[j].Quarter
		}
		return points[i].Bank < points[j].Bank
	})

	// Latest value per bank: the point with the maximum quarter label.
	latest := make(map[string]float64)
	latestQuarter := make(map[string]string)
	for _, p := range points {
		if q, ok := latestQuarter[p.Bank]; !ok || p.Quarter >= q {
			latestQuarter[p.Bank] = p.Quarter
			latest[p.Bank] = p.Value
		}
	}

	series := &model.ComparisonSeries{
		BaseBank:  base,
		PeerBanks: peers,
		Metric:    metric,
		Points:    points,
		Source:    source,
	}

	for bank, v := range latest {
		if series.Leader == "" || v > latest[series.Leader] {
			series.Leader = bank
		}
		if series.Laggard == "" || v < latest[series.Laggard] {
			series.Laggard = bank
		}
	}
	// Deterministic tie-breaks: alphabetical among equals.
	for bank, v := range latest {
		if v == latest[series.Leader] && bank < series.Leader {
			series.Leader = bank
		}
		if v == latest[series.Laggard] && bank < series.Laggard {
			series.Laggard = bank
		}
	}

	series.Spread = latest[series.Leader] - latest[series.Laggard]
	series.Analysis = analysis(series, latest)
	return series
}

func analysis(s *model.ComparisonSeries, latest map[string]float64) string {
	position := "competitively"
	if s.BaseBank == s.Leader {
		position = "at the top"
	}
	return fmt.Sprintf(
		"%s leads with %s of %.2f%%, showing superior performance. "+
			"The %.2fpp spread to %s (%.2f%%) indicates meaningful differentiation. "+
			"%s is positioned %s within this peer group.",
		s.Leader, s.Metric, latest[s.Leader],
		s.Spread, s.Laggard, latest[s.Laggard],
		s.BaseBank, position,
	)
}
