// Package view turns a schedule table into display shapes: a weekday
// filter, the weekday-then-time sort order, and the pivoted weekly
// calendar grid.
package view

import (
	"sort"
	"strings"

	"schedcal/internal/model"
)

// WeekdayOrder is the display order of weekday columns. Rows without a
// weekday sort last.
var WeekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func weekdayRank(name string) int {
	for i, w := range WeekdayOrder {
		if w == name {
			return i
		}
	}
	return len(WeekdayOrder)
}

// FilterWeekday returns the rows whose weekday equals name. An empty name
// (or "All") returns every row.
func FilterWeekday(t model.Table, name string) model.Table {
	if name == "" || strings.EqualFold(name, "All") {
		return t
	}
	out := model.Table{}
	for _, r := range t.Rows {
		if strings.EqualFold(r.Weekday, name) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// SortForDisplay returns a copy sorted by weekday order then time label.
// Storage order is untouched; IDs are preserved so a sorted row can still
// be deleted precisely.
func SortForDisplay(t model.Table) model.Table {
	rows := make([]model.Record, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := weekdayRank(rows[i].Weekday), weekdayRank(rows[j].Weekday)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Time < rows[j].Time
	})
	return model.Table{Rows: rows}
}

// Calendar is the pivoted weekday-by-time view. Cells aggregate every
// activity in the same slot, joined with ", ".
type Calendar struct {
	Times    []string                     `json:"times"`
	Weekdays []string                     `json:"weekdays"`
	Cells    map[string]map[string]string `json:"cells"` // time -> weekday -> activities
}

// Pivot builds the weekly calendar grid from a table. Rows without a
// weekday are skipped; an empty time label becomes its own row.
func Pivot(t model.Table) Calendar {
	cells := make(map[string]map[string]string)
	timeSet := make(map[string]struct{})

	for _, r := range t.Rows {
		if r.Weekday == "" {
			continue
		}
		timeSet[r.Time] = struct{}{}
		row, ok := cells[r.Time]
		if !ok {
			row = make(map[string]string)
			cells[r.Time] = row
		}
		if prev := row[r.Weekday]; prev != "" {
			row[r.Weekday] = prev + ", " + r.Activity
		} else {
			row[r.Weekday] = r.Activity
		}
	}

	times := make([]string, 0, len(timeSet))
	for ts := range timeSet {
		times = append(times, ts)
	}
	sort.Strings(times)

	return Calendar{
		Times:    times,
		Weekdays: WeekdayOrder,
		Cells:    cells,
	}
}
