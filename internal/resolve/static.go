package resolve

import (
	"strings"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// staticEntry is one row of the built-in CERT lookup table.
type staticEntry struct {
	key  string // matched as a substring of the upper-cased input
	cert string
	name string
}

// staticTable covers the major institutions that account for nearly all
// lookups. A hit here is the zero-latency path and must short-circuit the
// registry search entirely.
var staticTable = []staticEntry{
	{"JPMORGAN", "628", "JPMorgan Chase Bank"},
	{"BANK OF AMERICA", "3510", "Bank of America"},
	{"WELLS FARGO", "3511", "Wells Fargo Bank"},
	{"CITIGROUP", "7213", "Citibank"},
	{"CITIBANK", "7213", "Citibank"},
	{"GOLDMAN SACHS", "33124", "Goldman Sachs Bank USA"},
	{"MORGAN STANLEY", "32992", "Morgan Stanley Bank"},
	{"U.S. BANCORP", "6548", "U.S. Bank"},
	{"PNC", "6384", "PNC Bank"},
	{"CAPITAL ONE", "33954", "Capital One"},
	{"TRUIST", "11069", "Truist Bank"},
	{"REGIONS FINANCIAL", "12368", "Regions Bank"},
	{"FIFTH THIRD", "6672", "Fifth Third Bank"},
}

// lookupStatic returns the static-table institution for name, if any.
func lookupStatic(name string) (model.Institution, bool) {
	upper := strings.ToUpper(name)
	for _, e := range staticTable {
		if strings.Contains(upper, e.key) {
			return model.Institution{Cert: e.cert, Name: e.name, Active: true}, true
		}
	}
	return model.Institution{}, false
}
