package ics

import (
	"strings"
	"testing"
	"time"

	"schedcal/internal/model"
)

func TestExport(t *testing.T) {
	d := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	var tbl model.Table
	tbl.Append(
		model.NewRecord(&d, "Vinoth", "gym", "7pm"),
		model.NewRecord(nil, "Anu", "undated", ""), // skipped
	)

	out := Export(tbl)

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 1 {
		t.Fatalf("VEVENT count = %d, want 1 (undated rows are skipped)", got)
	}
	if !strings.Contains(out, "SUMMARY:gym @ 7pm") {
		t.Errorf("summary missing time label:\n%s", out)
	}
	if !strings.Contains(out, "DESCRIPTION:For Vinoth") {
		t.Errorf("description missing:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20250305") {
		t.Errorf("all-day start missing:\n%s", out)
	}
}

func TestExport_EmptyTable(t *testing.T) {
	out := Export(model.Table{})
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
