// Package recur materializes a repeating schedule entry into concrete
// dated rows.
package recur

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"schedcal/internal/model"
)

// Mode selects how one input event expands into rows.
type Mode string

const (
	ModeNone   Mode = "None"
	ModeDaily  Mode = "Daily"
	ModeWeekly Mode = "Weekly"
)

// ParseMode maps a case-insensitive mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch {
	case s == "" || strings.EqualFold(s, string(ModeNone)):
		return ModeNone, nil
	case strings.EqualFold(s, string(ModeDaily)):
		return ModeDaily, nil
	case strings.EqualFold(s, string(ModeWeekly)):
		return ModeWeekly, nil
	}
	return "", fmt.Errorf("recur: unknown mode %q (want None, Daily or Weekly)", s)
}

// Expand produces exactly count records starting at start.
//
//	None:   every row carries start
//	Daily:  row i is start + i days
//	Weekly: row i is start + i weeks
//
// Each row's weekday is derived from its own date. count must be positive.
func Expand(start time.Time, name, activity, timeLabel string, mode Mode, count int) ([]model.Record, error) {
	if count <= 0 {
		return nil, fmt.Errorf("recur: count must be positive, got %d", count)
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, 0, count)
	switch mode {
	case ModeNone:
		for i := 0; i < count; i++ {
			dates = append(dates, day)
		}
	case ModeDaily, ModeWeekly:
		freq := rrule.DAILY
		if mode == ModeWeekly {
			freq = rrule.WEEKLY
		}
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:    freq,
			Count:   count,
			Dtstart: day,
		})
		if err != nil {
			return nil, fmt.Errorf("recur: build rule: %w", err)
		}
		dates = r.All()
	default:
		return nil, fmt.Errorf("recur: unknown mode %q", mode)
	}

	out := make([]model.Record, 0, count)
	for _, d := range dates {
		d := d
		out = append(out, model.NewRecord(&d, name, activity, timeLabel))
	}
	return out, nil
}
