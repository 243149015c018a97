package engine

import (
	"github.com/bankiq/bankiq-cli/internal/model"
	"github.com/bankiq/bankiq-cli/pkg/edgar"
)

// Response is the envelope every operation result embeds. Success is false
// exactly when Error is set; Code buckets the failure for callers that map
// it to exit codes or HTTP statuses.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func ok() Response {
	return Response{Success: true}
}

// ResolveBankResult is the outcome of ResolveBank.
type ResolveBankResult struct {
	Response
	Institution model.Institution `json:"institution"`
}

// TopBanksResult is the outcome of TopBanks.
type TopBanksResult struct {
	Response
	Banks []model.Institution `json:"banks"`
}

// BankFinancialsResult is the outcome of BankFinancials.
type BankFinancialsResult struct {
	Response
	Bank    string                  `json:"bank"`
	Cert    string                  `json:"cert"`
	Records []model.FinancialRecord `json:"records"`
}

// AssessmentMetrics echoes the derived ratios behind an assessment, rounded
// for presentation. Tier1Ratio is nil when the field was unavailable.
type AssessmentMetrics struct {
	ROA           float64  `json:"roa"`
	ROE           float64  `json:"roe"`
	Tier1Ratio    *float64 `json:"tier1_ratio"`
	LeverageRatio float64  `json:"leverage_ratio"`
	NPLRatio      float64  `json:"npl_ratio"`
	CoverageRatio float64  `json:"coverage_ratio"`
	LTDRatio      float64  `json:"ltd_ratio"`
	NIM           float64  `json:"nim"`
	Assets        float64  `json:"assets"`
}

// RiskAssessment is the outcome of AssessRisk.
type RiskAssessment struct {
	Response
	Bank         string            `json:"bank"`
	Cert         string            `json:"cert"`
	OverallScore int               `json:"overall_score"`
	Scores       map[string]int    `json:"scores"`
	RiskGauges   map[string]int    `json:"risk_gauges"`
	Metrics      AssessmentMetrics `json:"metrics"`
	Methodology  string            `json:"methodology"`
	DataSource   string            `json:"data_source"`
	Alerts       []model.Alert     `json:"alerts"`
	LastUpdated  string            `json:"last_updated,omitempty"`
	Disclaimer   string            `json:"disclaimer"`
}

// AlertsResult is the outcome of MonitorAlerts.
type AlertsResult struct {
	Response
	Bank   string        `json:"bank"`
	Cert   string        `json:"cert"`
	Period string        `json:"period,omitempty"`
	Alerts []model.Alert `json:"alerts"`
}

// ComparisonResult is the outcome of CompareBanks and CompareBanksDataset.
type ComparisonResult struct {
	Response
	Series *model.ComparisonSeries `json:"series,omitempty"`
}

// FilingsResult is the outcome of SearchFilings.
type FilingsResult struct {
	Response
	Bank    string         `json:"bank"`
	Filings []edgar.Filing `json:"filings"`
}

// BankSearchResult is the outcome of SearchBanks.
type BankSearchResult struct {
	Response
	Companies []edgar.Company `json:"companies"`
}

// DatasetListResult is the outcome of ListDatasets.
type DatasetListResult struct {
	Response
	Datasets []model.Dataset `json:"datasets"`
}

// DatasetImportResult is the outcome of ImportDataset.
type DatasetImportResult struct {
	Response
	Dataset *model.Dataset `json:"dataset,omitempty"`
	Rows    int            `json:"rows"`
}
