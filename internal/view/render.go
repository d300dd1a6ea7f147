package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"schedcal/internal/model"
)

var headerColor = color.New(color.FgCyan, color.Bold)

// RenderTable writes the schedule as an aligned terminal table.
func RenderTable(w io.Writer, t model.Table) {
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "(no events)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerColor.Sprint("ID"),
		headerColor.Sprint("Date"),
		headerColor.Sprint("Weekday"),
		headerColor.Sprint("Name"),
		headerColor.Sprint("Activity"),
		headerColor.Sprint("Time"),
	)
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.DateString(), r.Weekday, r.Name, r.Activity, r.Time)
	}
	tw.Flush()
}

// RenderCalendar writes the pivoted weekday-by-time grid.
func RenderCalendar(w io.Writer, c Calendar) {
	if len(c.Times) == 0 {
		fmt.Fprintln(w, "(no events to show in calendar)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprint(tw, headerColor.Sprint("Time"))
	for _, wd := range c.Weekdays {
		fmt.Fprint(tw, "\t", headerColor.Sprint(wd))
	}
	fmt.Fprintln(tw)

	for _, ts := range c.Times {
		label := ts
		if label == "" {
			label = "-"
		}
		fmt.Fprint(tw, label)
		for _, wd := range c.Weekdays {
			fmt.Fprint(tw, "\t", c.Cells[ts][wd])
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
