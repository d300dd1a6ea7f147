// Package ics exports the schedule as an iCalendar feed so external
// calendar apps can subscribe to it.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"schedcal/internal/model"
)

const prodID = "-//schedcal//schedule export//EN"

// Export serializes every dated row as an all-day VEVENT. Rows without a
// date have no place on a calendar and are skipped. The free-text time
// label is folded into the summary since it is not a parsed time of day.
func Export(t model.Table) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	now := time.Now().UTC()

	for _, r := range t.Rows {
		if r.Date == nil {
			continue
		}

		ev := cal.AddEvent(eventUID(r))
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(*r.Date)
		ev.SetAllDayEndAt(r.Date.AddDate(0, 0, 1))
		ev.SetSummary(summary(r))
		if r.Name != "" {
			ev.SetDescription("For " + r.Name)
		}
	}

	return cal.Serialize()
}

func summary(r model.Record) string {
	if r.Time == "" {
		return r.Activity
	}
	return r.Activity + " @ " + r.Time
}

// eventUID derives a per-row UID from the row's position and date. IDs are
// positions in storage order, so a re-ordered file changes UIDs; consumers
// treat the feed as read-only so this is acceptable.
func eventUID(r model.Record) string {
	return fmt.Sprintf("row-%d-%s@schedcal", r.ID, r.DateString())
}
