package model

// Institution is a depository institution as resolved against the FDIC
// registry. Cert is the regulator-assigned identifier used as the key for
// all downstream financial-data queries.
type Institution struct {
	Cert   string  `json:"cert"`
	Name   string  `json:"name"`
	Asset  float64 `json:"asset"`
	Active bool    `json:"active"`
}
