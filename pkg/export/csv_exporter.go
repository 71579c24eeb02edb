package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table defines tabular report content: ordered headers and row cells keyed
// by header name.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// records flattens the keyed rows into ordered cells, header row first.
func (t Table) records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Headers)
	for _, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			cells[i] = row[h]
		}
		out = append(out, cells)
	}
	return out
}

// CSVExporter renders a Table into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the table.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(table.records()); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
