// Package ratios derives canonical financial ratios from raw FDIC call-report
// records. Every ratio carries an explicit zero-guard so that missing or
// zero-valued denominators degrade to a safe default instead of failing the
// whole assessment.
package ratios

import (
	"math"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// Derive computes the canonical metric set for one financial record.
func Derive(rec *model.FinancialRecord) model.DerivedMetrics {
	assets := rec.Field(model.FieldAsset)
	equity := rec.Field(model.FieldEquity)
	loans := rec.Field(model.FieldNetLoans)
	deposits := rec.Field(model.FieldDeposits)
	npl := rec.Field(model.FieldNoncurrent)
	allowance := rec.Field(model.FieldLossAllowance)
	nim := rec.Field(model.FieldNIM)
	nonIntExp := rec.Field(model.FieldNonIntExpense)

	m := model.DerivedMetrics{}
	put := func(name model.MetricName, v float64) {
		m[name] = model.DerivedMetric{Name: name, Value: v, Period: rec.Period}
	}

	put(model.MetricROA, rec.Field(model.FieldROA))
	put(model.MetricROE, rec.Field(model.FieldROE))
	put(model.MetricNIM, nim)
	put(model.MetricAssets, assets)

	put(model.MetricLeverageRatio, guardedRatio(equity, assets))
	put(model.MetricEquityRatio, guardedRatio(equity, assets))
	put(model.MetricLTDRatio, guardedRatio(loans, deposits))
	put(model.MetricNPLRatio, guardedRatio(npl, loans))
	put(model.MetricCoverageRatio, coverageRatio(allowance, npl))
	put(model.MetricTier1Ratio, Tier1Ratio(rec.Field(model.FieldTier1), assets))
	put(model.MetricEfficiencyRatio, efficiencyRatio(nonIntExp, nim, assets))

	return m
}

// guardedRatio returns num/den as a percentage, or 0 when den is not
// positive.
func guardedRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}

// coverageRatio returns allowance/noncurrent as a percentage. When there are
// no noncurrent loans the institution has no coverage gap, so the ratio
// defaults to exactly 100 regardless of the allowance.
func coverageRatio(allowance, noncurrent float64) float64 {
	if noncurrent <= 0 {
		return 100
	}
	return allowance / noncurrent * 100
}

// Tier1Ratio normalizes the RBCT1J field, which providers report in two
// units. A value above 100 cannot be a percentage and is treated as a raw
// currency amount to be divided by total assets; otherwise the value is
// already a ratio. This heuristic is load-bearing and must not change.
func Tier1Ratio(raw, assets float64) float64 {
	if raw > 100 {
		if assets <= 0 {
			return 0
		}
		return raw / assets * 100
	}
	return raw
}

// efficiencyRatio approximates non-interest expense over implied revenue
// (NIM applied to assets). Returns 0 when the implied revenue is not
// positive.
func efficiencyRatio(nonIntExp, nim, assets float64) float64 {
	revenue := 0.0
	if assets > 0 {
		revenue = nim * assets / 100
	}
	if revenue <= 0 {
		return 0
	}
	return math.Abs(nonIntExp) / revenue * 100
}
