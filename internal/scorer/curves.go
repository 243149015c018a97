package scorer

import "math"

// The scoring curves below are a rules-based expert model, not a statistical
// fit. Each maps one canonical ratio to a [0,100] sub-score through
// hand-tuned piecewise-linear segments; breakpoints are aligned with Basel
// III / FDIC supervisory guidance. Segment boundaries must land exactly
// (tier-1 of 10.0 scores 95, 8.0 scores 80, and so on).

// capitalScoreTier1 scores the tier-1 capital ratio.
// Basel III: 6% minimum, 8% well-capitalized, 10%+ strong.
func capitalScoreTier1(ratio float64) float64 {
	switch {
	case ratio >= 10:
		return 95 + math.Min(5, (ratio-10)*0.5)
	case ratio >= 8:
		return 80 + (ratio-8)*7.5
	case ratio >= 6:
		return 60 + (ratio-6)*10
	case ratio >= 4.5:
		return 40 + (ratio-4.5)*13.3
	default:
		return math.Max(10, ratio*8.9)
	}
}

// capitalScoreLeverage scores the leverage (equity/assets) ratio, used when
// no tier-1 figure is reported. 4% minimum, 5% well-capitalized.
func capitalScoreLeverage(ratio float64) float64 {
	switch {
	case ratio >= 8:
		return 90 + math.Min(10, (ratio-8)*1.25)
	case ratio >= 5:
		return 70 + (ratio-5)*6.7
	case ratio >= 4:
		return 50 + (ratio-4)*20
	default:
		return math.Max(10, ratio*12.5)
	}
}

// nplScore scores the noncurrent-loan ratio; lower is better.
// <1% excellent, 1-2% good, 2-3% adequate, >3% poor.
func nplScore(ratio float64) float64 {
	switch {
	case ratio < 0.5:
		return 95 + math.Min(5, (0.5-ratio)*10)
	case ratio < 1.0:
		return 85 + (1.0-ratio)*20
	case ratio < 2.0:
		return 65 + (2.0-ratio)*20
	case ratio < 3.0:
		return 45 + (3.0-ratio)*20
	default:
		return math.Max(10, 45-(ratio-3.0)*10)
	}
}

// coverageScore scores the loss-allowance coverage of noncurrent loans.
// >100% good, 70-100% adequate, <70% weak.
func coverageScore(ratio float64) float64 {
	switch {
	case ratio >= 100:
		return 90 + math.Min(10, (ratio-100)*0.1)
	case ratio >= 70:
		return 60 + (ratio-70)*1.0
	default:
		return math.Max(20, ratio*0.86)
	}
}

// earningsScore scores return on assets.
// >1.2% strong, 0.8-1.2% good, 0.4-0.8% adequate, <0.4% weak.
func earningsScore(roa float64) float64 {
	switch {
	case roa >= 1.5:
		return 90 + math.Min(10, (roa-1.5)*6.7)
	case roa >= 1.2:
		return 80 + (roa-1.2)*33.3
	case roa >= 0.8:
		return 65 + (roa-0.8)*37.5
	case roa >= 0.4:
		return 45 + (roa-0.4)*50
	case roa >= 0:
		return math.Max(20, roa*112.5)
	default:
		return 10
	}
}

// liquidityScore scores the loan-to-deposit ratio. The curve has an interior
// optimum: 70-85% is the sweet spot, decaying on both sides. Below 70%
// deposits are under-utilized; above 85% liquidity tightens, with a floor of
// 20 beyond 100%.
func liquidityScore(ltd float64) float64 {
	switch {
	case ltd >= 70 && ltd <= 85:
		return 95 + math.Min(5, (80-math.Abs(ltd-77.5))*0.4)
	case ltd >= 60 && ltd < 70:
		return 75 + (ltd-60)*2
	case ltd > 85 && ltd <= 95:
		return 75 - (ltd-85)*2
	case ltd > 95 && ltd <= 100:
		return 55 - (ltd-95)*4
	case ltd > 100:
		return math.Max(20, 35-(ltd-100)*1.5)
	default:
		return math.Max(40, 55+(ltd-50)*2)
	}
}

// sensitivityScore scores the net interest margin as a market-risk proxy.
// >3.5% strong, 2.5-3.5% good, 1.5-2.5% adequate, <1.5% weak.
func sensitivityScore(nim float64) float64 {
	switch {
	case nim >= 3.5:
		return 90 + math.Min(10, (nim-3.5)*10)
	case nim >= 2.5:
		return 70 + (nim-2.5)*20
	case nim >= 1.5:
		return 50 + (nim-1.5)*20
	default:
		return math.Max(20, nim*33.3)
	}
}

// clamp bounds a score to [0,100].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
