package recur

import (
	"testing"
	"time"
)

var start = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // a Monday

func TestExpand_Daily(t *testing.T) {
	recs, err := Expand(start, "Vinoth", "gym", "7pm", ModeDaily, 5)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("got %d rows, want 5", len(recs))
	}
	for i, r := range recs {
		want := start.AddDate(0, 0, i)
		if r.Date == nil || !r.Date.Equal(want) {
			t.Errorf("row %d date = %v, want %v", i, r.Date, want)
		}
		if r.Weekday != want.Weekday().String() {
			t.Errorf("row %d weekday = %q, want %q", i, r.Weekday, want.Weekday().String())
		}
		if r.Name != "Vinoth" || r.Activity != "gym" || r.Time != "7pm" {
			t.Errorf("row %d fields not carried: %+v", i, r)
		}
	}
}

func TestExpand_Weekly(t *testing.T) {
	recs, err := Expand(start, "Anu", "yoga", "", ModeWeekly, 3)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d rows, want 3", len(recs))
	}
	for i, r := range recs {
		want := start.AddDate(0, 0, 7*i)
		if r.Date == nil || !r.Date.Equal(want) {
			t.Errorf("row %d date = %v, want %v", i, r.Date, want)
		}
		if r.Weekday != "Monday" {
			t.Errorf("row %d weekday = %q, want Monday", i, r.Weekday)
		}
	}
}

func TestExpand_None(t *testing.T) {
	recs, err := Expand(start, "Sam", "swim", "6am", ModeNone, 4)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d rows, want 4", len(recs))
	}
	for i, r := range recs {
		if r.Date == nil || !r.Date.Equal(start) {
			t.Errorf("row %d date = %v, want %v", i, r.Date, start)
		}
	}
}

func TestExpand_TruncatesTimeOfDay(t *testing.T) {
	noon := time.Date(2025, 3, 3, 12, 34, 56, 0, time.UTC)
	recs, err := Expand(noon, "A", "x", "", ModeNone, 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !recs[0].Date.Equal(start) {
		t.Errorf("date = %v, want midnight %v", recs[0].Date, start)
	}
}

func TestExpand_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := Expand(start, "A", "x", "", ModeDaily, n); err == nil {
			t.Errorf("count %d: expected error", n)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeNone, false},
		{"None", ModeNone, false},
		{"daily", ModeDaily, false},
		{"WEEKLY", ModeWeekly, false},
		{"monthly", "", true},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error", c.in)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
}
