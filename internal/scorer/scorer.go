// Package scorer converts canonical derived ratios into bounded component
// scores and a weighted composite, following the five-category supervisory
// model (capital, asset quality, earnings, liquidity, sensitivity).
package scorer

import (
	"math"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// Scorer applies the segmented scoring model with a fixed weight set.
type Scorer struct {
	cfg Config
}

// New creates a Scorer. The config must have been validated.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score maps each derived ratio to its sub-score and combines them into the
// weighted composite. Component order is fixed and does not affect the
// composite.
func (s *Scorer) Score(m model.DerivedMetrics) model.RiskScore {
	capital := clamp(s.capitalScore(m))
	assetQuality := clamp(s.assetQualityScore(m))
	earnings := clamp(earningsScore(m.Value(model.MetricROA)))
	liquidity := clamp(liquidityScore(m.Value(model.MetricLTDRatio)))
	sensitivity := clamp(sensitivityScore(m.Value(model.MetricNIM)))

	components := []model.ScoreComponent{
		{Name: model.ComponentCapital, SubScore: capital, Weight: s.cfg.Weights[model.ComponentCapital]},
		{Name: model.ComponentAssetQual, SubScore: assetQuality, Weight: s.cfg.Weights[model.ComponentAssetQual]},
		{Name: model.ComponentEarnings, SubScore: earnings, Weight: s.cfg.Weights[model.ComponentEarnings]},
		{Name: model.ComponentLiquidity, SubScore: liquidity, Weight: s.cfg.Weights[model.ComponentLiquidity]},
		{Name: model.ComponentSensitivity, SubScore: sensitivity, Weight: s.cfg.Weights[model.ComponentSensitivity]},
	}

	var composite float64
	for _, c := range components {
		composite += c.SubScore * c.Weight
	}

	return model.RiskScore{
		Composite:  clamp(composite),
		Components: components,
	}
}

// capitalScore prefers the tier-1 curve when a tier-1 figure is reported,
// falling back to the leverage-ratio curve otherwise.
func (s *Scorer) capitalScore(m model.DerivedMetrics) float64 {
	if tier1 := m.Value(model.MetricTier1Ratio); tier1 > 0 {
		return capitalScoreTier1(tier1)
	}
	return capitalScoreLeverage(m.Value(model.MetricLeverageRatio))
}

// assetQualityScore blends the NPL curve with the coverage curve at a fixed
// 70/30 split.
func (s *Scorer) assetQualityScore(m model.DerivedMetrics) float64 {
	npl := nplScore(m.Value(model.MetricNPLRatio))
	cov := coverageScore(m.Value(model.MetricCoverageRatio))
	return npl*0.7 + cov*0.3
}

// Round converts an internal float score to its presentation value.
func Round(v float64) int {
	return int(math.Round(v))
}
