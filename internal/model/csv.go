package model

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// EncodeCSV serializes a table in canonical column order. Dates render as
// ISO strings or empty cells; everything else is free text escaped per
// standard CSV quoting.
func EncodeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Rows {
		row := []string{r.DateString(), r.Weekday, r.Name, r.Activity, r.Time}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses CSV bytes and normalizes the result into a canonical
// table. An empty payload yields an empty table. Structural CSV errors
// (unbalanced quotes and the like) are returned to the caller; cell-level
// garbage is absorbed by Normalize.
func DecodeCSV(data []byte) (Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	// Hand-edited files sometimes have ragged rows; let Normalize deal
	// with short rows instead of failing the whole load.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	return Normalize(records[0], records[1:]), nil
}
