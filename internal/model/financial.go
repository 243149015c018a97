package model

// FDIC call-report field codes used by the engine.
const (
	FieldAsset          = "ASSET"   // total assets
	FieldDeposits       = "DEP"     // total deposits
	FieldNetIncome      = "NETINC"  // net income
	FieldROA            = "ROA"     // return on assets
	FieldROE            = "ROE"     // return on equity
	FieldNIM            = "NIMY"    // net interest margin
	FieldEquity         = "EQTOT"   // total equity capital
	FieldNetLoans       = "LNLSNET" // net loans and leases
	FieldNoncurrent     = "NCLNLS"  // noncurrent loans and leases
	FieldLossAllowance  = "LNATRES" // loan loss allowance
	FieldTier1          = "RBCT1J"  // tier-1 capital (ratio or raw amount)
	FieldIntExpense     = "EINTEXP" // interest expense
	FieldNonIntExpense  = "NONII"   // non-interest expense
	FieldCREConcentr    = "NCRER"   // CRE concentration
	FieldReportDate     = "REPYMD"  // report date
)

// FinancialRecord is one regulator-reported record for an institution and
// reporting period. Records are immutable once fetched; all derived ratios
// are computed from the Fields map.
type FinancialRecord struct {
	Cert       string             `json:"cert"`
	ID         string             `json:"id"`     // composite key, e.g. "628_20240630"
	Period     string             `json:"period"` // normalized label, e.g. "2024-Q2"
	ReportDate string             `json:"report_date,omitempty"`
	Fields     map[string]float64 `json:"fields"`
}

// Field returns the named raw field, or 0 when absent.
func (r *FinancialRecord) Field(name string) float64 {
	return r.Fields[name]
}

// MetricName identifies a canonical derived metric.
type MetricName string

const (
	MetricROA             MetricName = "roa"
	MetricROE             MetricName = "roe"
	MetricNIM             MetricName = "nim"
	MetricTier1Ratio      MetricName = "tier1_ratio"
	MetricLeverageRatio   MetricName = "leverage_ratio"
	MetricNPLRatio        MetricName = "npl_ratio"
	MetricCoverageRatio   MetricName = "coverage_ratio"
	MetricLTDRatio        MetricName = "ltd_ratio"
	MetricEquityRatio     MetricName = "equity_ratio"
	MetricEfficiencyRatio MetricName = "efficiency_ratio"
	MetricAssets          MetricName = "assets"
)

// DerivedMetric is a single canonical ratio computed from one FinancialRecord.
type DerivedMetric struct {
	Name   MetricName `json:"name"`
	Value  float64    `json:"value"`
	Period string     `json:"period,omitempty"`
}

// DerivedMetrics maps metric names to their derived values for one record.
type DerivedMetrics map[MetricName]DerivedMetric

// Value returns the named metric value, or 0 when absent.
func (m DerivedMetrics) Value(name MetricName) float64 {
	return m[name].Value
}

// Has reports whether the named metric was derived.
func (m DerivedMetrics) Has(name MetricName) bool {
	_, ok := m[name]
	return ok
}
