// Package dataset parses uploaded peer-comparison files. The expected
// layout is one row per bank/metric pair with quarter columns:
//
//	Bank,Metric,2024-Q1,2024-Q2,...
//	JPMorgan Chase,ROA,1.32,1.41,...
package dataset

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bankiq/bankiq-cli/internal/model"
)

var quarterAlt = regexp.MustCompile(`^Q([1-4])[\s-]*(\d{4})$`)

// ParseCSV reads a dataset in the bank/metric/quarter-columns layout.
// Blank cells are skipped; numeric cells may carry %, $, or thousands
// separators.
func ParseCSV(r io.Reader, name string) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.New("dataset: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read header")
	}
	if len(header) < 3 {
		return nil, eris.New("dataset: header needs Bank, Metric, and at least one quarter column")
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "Bank") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "Metric") {
		return nil, eris.Errorf("dataset: expected header to start with Bank,Metric, got %q,%q", header[0], header[1])
	}

	quarters := make([]string, len(header)-2)
	for i, h := range header[2:] {
		quarters[i] = NormalizeQuarter(h)
	}

	ds := &model.Dataset{Name: name}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: read line %d", line)
		}

		bank := strings.TrimSpace(row[0])
		metric := strings.TrimSpace(row[1])
		if bank == "" || metric == "" {
			continue
		}

		for i, cell := range row[2:] {
			if i >= len(quarters) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := parseNumber(cell)
			if err != nil {
				return nil, eris.Wrapf(err, "dataset: line %d, column %q", line, quarters[i])
			}
			ds.Rows = append(ds.Rows, model.DatasetRow{
				Bank:    bank,
				Metric:  metric,
				Quarter: quarters[i],
				Value:   v,
			})
		}
	}

	if len(ds.Rows) == 0 {
		return nil, eris.New("dataset: no data rows")
	}
	return ds, nil
}

// NormalizeQuarter maps quarter labels like "Q1 2024" or "Q1-2024" to the
// canonical "2024-Q1" form. Already-canonical labels pass through.
func NormalizeQuarter(label string) string {
	label = strings.TrimSpace(label)
	if m := quarterAlt.FindStringSubmatch(strings.ToUpper(label)); m != nil {
		return m[2] + "-Q" + m[1]
	}
	return label
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("dataset: not a number: %q", s)
	}
	return v, nil
}
