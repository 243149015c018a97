package model

// Severity ranks a regulatory alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rank orders severities for sorting (error first).
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Alert is a single threshold finding against an institution's derived
// metrics. Alerts are generated per assessment and not persisted.
type Alert struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Regulation string   `json:"regulation"`
}
