package model

import (
	"fmt"
	"strings"
	"time"
)

// Columns is the canonical column order of the schedule CSV. Every table
// produced by this package has exactly these columns in this order.
var Columns = []string{"Date", "Weekday", "Name", "Activity", "Time"}

// DateLayout is the on-disk date format (ISO-8601 calendar date).
const DateLayout = "2006-01-02"

// Record is a single schedule entry.
//
// Date may be nil when the stored cell was empty or unparsable; Weekday is
// always derived from Date and never trusted from storage. Time is a
// free-text label ("7pm", "morning"), not a parsed time of day.
type Record struct {
	// ID is a stable synthetic identifier assigned at normalization time
	// (the row's position in storage order). Labels rendered from fields
	// are not unique; ID is.
	ID int `json:"id"`

	Date     *time.Time `json:"date"`
	Weekday  string     `json:"weekday"`
	Name     string     `json:"name"`
	Activity string     `json:"activity"`
	Time     string     `json:"time"`
}

// Table is an ordered sequence of records. Storage order is append order;
// display code re-sorts a copy and leaves the table itself alone.
type Table struct {
	Rows []Record
}

// DateString renders the record date as an ISO date, or "" when unknown.
func (r Record) DateString() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format(DateLayout)
}

// Label renders the display string used to pick a row for deletion:
//
//	2025-01-02 | Thursday | Vinoth - gym @ 7pm
//
// Two rows with identical fields render identical labels; deleting by label
// therefore removes all of them. Use ID for precise deletion.
func (r Record) Label() string {
	return fmt.Sprintf("%s | %s | %s - %s @ %s", r.DateString(), r.Weekday, r.Name, r.Activity, r.Time)
}

// NewRecord builds a record from its fields, deriving Weekday from date.
// A nil date yields an empty weekday.
func NewRecord(date *time.Time, name, activity, timeLabel string) Record {
	return Record{
		Date:     date,
		Weekday:  WeekdayName(date),
		Name:     name,
		Activity: activity,
		Time:     timeLabel,
	}
}

// WeekdayName returns the English weekday name for a date, or "" for nil.
func WeekdayName(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Weekday().String()
}

// ParseDate parses a date cell. It accepts the canonical ISO layout plus a
// few common variants seen in hand-edited CSVs. Unparsable input returns
// nil rather than an error; a malformed cell must never poison a load.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{
		DateLayout,
		"2006/01/02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// Normalize converts a raw parsed CSV (arbitrary header + string cells)
// into a canonical table:
//
//   - columns whose name starts with "unnamed" (any case) are dropped;
//     these are index artifacts left behind by dataframe-style writers
//   - absent canonical columns are treated as all-empty
//   - columns are matched by name case-insensitively and reordered
//   - Date cells are parsed (unparsable -> nil)
//   - Weekday is recomputed from Date, never read from storage
//   - IDs are assigned from row position
//
// Normalize never fails: malformed cells become empty values.
func Normalize(header []string, rows [][]string) Table {
	// Map canonical column -> source index, skipping index artifacts.
	idx := make(map[string]int, len(Columns))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if strings.HasPrefix(strings.ToLower(name), "unnamed") {
			continue
		}
		for _, col := range Columns {
			if strings.EqualFold(name, col) {
				if _, dup := idx[col]; !dup {
					idx[col] = i
				}
			}
		}
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t := Table{Rows: make([]Record, 0, len(rows))}
	for n, row := range rows {
		date := ParseDate(cell(row, "Date"))
		t.Rows = append(t.Rows, Record{
			ID:       n,
			Date:     date,
			Weekday:  WeekdayName(date),
			Name:     cell(row, "Name"),
			Activity: cell(row, "Activity"),
			Time:     cell(row, "Time"),
		})
	}
	return t
}

// Renumber reassigns IDs from row positions. Call after any structural
// edit (append, delete) so IDs stay consistent with storage order.
func (t *Table) Renumber() {
	for i := range t.Rows {
		t.Rows[i].ID = i
	}
}

// Append adds records to the end of the table and renumbers.
func (t *Table) Append(recs ...Record) {
	t.Rows = append(t.Rows, recs...)
	t.Renumber()
}

// DeleteByID removes the row with the given ID. Returns the number of rows
// removed (0 or 1).
func (t *Table) DeleteByID(id int) int {
	return t.deleteWhere(func(r Record) bool { return r.ID == id })
}

// DeleteByLabel removes every row whose rendered label equals label.
// Duplicate rows render identical labels and are all removed; this mirrors
// the label-selection UI, where duplicates are indistinguishable anyway.
func (t *Table) DeleteByLabel(label string) int {
	return t.deleteWhere(func(r Record) bool { return r.Label() == label })
}

func (t *Table) deleteWhere(match func(Record) bool) int {
	kept := t.Rows[:0]
	removed := 0
	for _, r := range t.Rows {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.Rows = kept
	if removed > 0 {
		t.Renumber()
	}
	return removed
}

// Labels returns the rendered label of every row in storage order.
func (t Table) Labels() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Label()
	}
	return out
}
