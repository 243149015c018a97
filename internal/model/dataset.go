package model

import "time"

// DatasetRow is one bank/metric/quarter observation from an uploaded
// dataset.
type DatasetRow struct {
	Bank    string  `json:"bank"`
	Metric  string  `json:"metric"`
	Quarter string  `json:"quarter"`
	Value   float64 `json:"value"`
}

// Dataset is an uploaded peer-comparison dataset. Rows are the flattened
// observations parsed from the source file.
type Dataset struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	UploadedAt time.Time    `json:"uploaded_at"`
	Rows       []DatasetRow `json:"rows,omitempty"`
}

// Banks returns the distinct bank names in row order of first appearance.
func (d *Dataset) Banks() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Rows {
		if _, ok := seen[r.Bank]; ok {
			continue
		}
		seen[r.Bank] = struct{}{}
		out = append(out, r.Bank)
	}
	return out
}

// Metrics returns the distinct metric names in row order of first
// appearance.
func (d *Dataset) Metrics() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Rows {
		if _, ok := seen[r.Metric]; ok {
			continue
		}
		seen[r.Metric] = struct{}{}
		out = append(out, r.Metric)
	}
	return out
}
