package model

// ComponentName identifies one of the five scoring categories.
type ComponentName string

const (
	ComponentCapital     ComponentName = "capital_adequacy"
	ComponentAssetQual   ComponentName = "asset_quality"
	ComponentEarnings    ComponentName = "earnings"
	ComponentLiquidity   ComponentName = "liquidity"
	ComponentSensitivity ComponentName = "sensitivity"
)

// ScoreComponent is one category sub-score with its fixed weight.
// Sub-scores are always within [0,100].
type ScoreComponent struct {
	Name     ComponentName `json:"name"`
	SubScore float64       `json:"sub_score"`
	Weight   float64       `json:"weight"`
}

// RiskScore is the weighted composite assessment for one institution.
// Composite and all sub-scores are clamped to [0,100]; floats are retained
// here and rounded only for presentation.
type RiskScore struct {
	Composite  float64          `json:"composite"`
	Components []ScoreComponent `json:"components"`
}

// Component returns the named component, or a zero value when absent.
func (s *RiskScore) Component(name ComponentName) ScoreComponent {
	for _, c := range s.Components {
		if c.Name == name {
			return c
		}
	}
	return ScoreComponent{Name: name}
}
