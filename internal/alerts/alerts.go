// Package alerts evaluates derived ratios against fixed regulatory
// thresholds. Generation is a pure function of the metric set: no network
// access, identical inputs always yield an identical, order-stable list.
package alerts

import (
	"fmt"
	"sort"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// Thresholds holds the regulatory trigger levels.
type Thresholds struct {
	Tier1Min    float64 // Basel III tier-1 minimum
	LeverageMin float64 // leverage ratio minimum
	ROAMin      float64 // adequate-earnings floor
	NPLError    float64 // noncurrent ratio hard limit
	NPLWarning  float64 // noncurrent ratio guidance level
	LTDMax      float64 // loan-to-deposit ceiling
	CoverageMin float64 // loss-allowance coverage floor
}

// DefaultThresholds returns the Basel III / FDIC trigger levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Tier1Min:    6.0,
		LeverageMin: 4.0,
		ROAMin:      0.4,
		NPLError:    3.0,
		NPLWarning:  2.0,
		LTDMax:      100,
		CoverageMin: 70,
	}
}

// Generator produces regulatory alerts from derived metrics.
type Generator struct {
	t Thresholds
}

// NewGenerator creates a Generator with the given thresholds.
func NewGenerator(t Thresholds) *Generator {
	return &Generator{t: t}
}

// Generate evaluates every rule independently and returns the alert list
// sorted by severity (errors first). When no rule fires a single info alert
// is emitted, so callers never receive an empty list.
func (g *Generator) Generate(m model.DerivedMetrics) []model.Alert {
	var out []model.Alert

	tier1 := m.Value(model.MetricTier1Ratio)
	leverage := m.Value(model.MetricLeverageRatio)
	if tier1 > 0 && tier1 < g.t.Tier1Min {
		out = append(out, model.Alert{
			Severity:   model.SeverityError,
			Category:   "Capital",
			Message:    fmt.Sprintf("Tier 1 capital ratio %.2f%% below Basel III minimum %.1f%%", tier1, g.t.Tier1Min),
			Regulation: "Basel III",
		})
	} else if leverage < g.t.LeverageMin {
		out = append(out, model.Alert{
			Severity:   model.SeverityError,
			Category:   "Capital",
			Message:    fmt.Sprintf("Leverage ratio %.2f%% below regulatory minimum %.1f%%", leverage, g.t.LeverageMin),
			Regulation: "FDIC Guidelines",
		})
	}

	if roa := m.Value(model.MetricROA); roa < g.t.ROAMin {
		out = append(out, model.Alert{
			Severity:   model.SeverityWarning,
			Category:   "Profitability",
			Message:    fmt.Sprintf("ROA of %.2f%% below adequate threshold of %.1f%%", roa, g.t.ROAMin),
			Regulation: "FDIC Guidelines",
		})
	}

	if npl := m.Value(model.MetricNPLRatio); npl > g.t.NPLError {
		out = append(out, model.Alert{
			Severity:   model.SeverityError,
			Category:   "Asset Quality",
			Message:    fmt.Sprintf("NPL ratio %.2f%% exceeds %.1f%% threshold", npl, g.t.NPLError),
			Regulation: "FDIC Guidelines",
		})
	} else if npl > g.t.NPLWarning {
		out = append(out, model.Alert{
			Severity:   model.SeverityWarning,
			Category:   "Asset Quality",
			Message:    fmt.Sprintf("NPL ratio %.2f%% above %.1f%% guidance", npl, g.t.NPLWarning),
			Regulation: "FDIC Guidelines",
		})
	}

	if ltd := m.Value(model.MetricLTDRatio); ltd > g.t.LTDMax {
		out = append(out, model.Alert{
			Severity:   model.SeverityWarning,
			Category:   "Liquidity",
			Message:    fmt.Sprintf("Loan-to-Deposit ratio %.2f%% exceeds %.0f%%", ltd, g.t.LTDMax),
			Regulation: "FDIC Guidelines",
		})
	}

	if cov := m.Value(model.MetricCoverageRatio); cov < g.t.CoverageMin {
		out = append(out, model.Alert{
			Severity:   model.SeverityWarning,
			Category:   "Asset Quality",
			Message:    fmt.Sprintf("Loan loss coverage %.1f%% below %.0f%% threshold", cov, g.t.CoverageMin),
			Regulation: "OCC Guidelines",
		})
	}

	if len(out) == 0 {
		out = append(out, model.Alert{
			Severity:   model.SeverityInfo,
			Category:   "Compliance",
			Message:    "All regulatory thresholds met - Strong compliance posture",
			Regulation: "FDIC Guidelines",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})

	return out
}
