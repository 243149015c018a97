package model

// SeriesPoint is one observation in a peer comparison: an institution's
// metric value for one reporting quarter.
type SeriesPoint struct {
	Bank    string  `json:"bank"`
	Quarter string  `json:"quarter"` // "YYYY-Qn"
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
}

// ComparisonSeries is the merged, period-ascending series for a base
// institution and its peers, with the leader/laggard ranking derived from
// each institution's most recent value.
type ComparisonSeries struct {
	BaseBank  string        `json:"base_bank"`
	PeerBanks []string      `json:"peer_banks"`
	Metric    string        `json:"metric"`
	Points    []SeriesPoint `json:"data"`
	Leader    string        `json:"leader,omitempty"`
	Laggard   string        `json:"laggard,omitempty"`
	Spread    float64       `json:"spread,omitempty"`
	Analysis  string        `json:"analysis"`
	Source    string        `json:"source"`
}
