// Package nlp extracts a structured schedule entry from free text.
//
// Grammar (case-insensitive):
//
//	add <activity> [on <date-phrase>] for <name> [at <time-phrase>]
//
// The "on" clause defaults to today; the "at" clause defaults to an empty
// time label. Date phrases are resolved with the olebedev/when natural
// date parser, so "today", "tomorrow" and weekday names all work.
package nlp

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"schedcal/internal/model"
)

// ErrNoMatch: the input does not fit the grammar at all.
var ErrNoMatch = errors.New("nlp: input does not match \"add <activity> [on <date>] for <name> [at <time>]\"")

// ErrUnresolvedDate: the grammar matched but the date phrase did not
// resolve to a calendar date.
var ErrUnresolvedDate = errors.New("nlp: could not resolve date phrase")

// activity is non-greedy, the date phrase is non-greedy, and name absorbs
// everything up to an optional trailing "at" clause.
var grammar = regexp.MustCompile(`(?i)^\s*add\s+(.+?)\s+(?:on\s+(.+?)\s+)?for\s+(.+?)(?:\s+at\s+(.+?))?\s*$`)

// Parser resolves date phrases relative to a clock and timezone.
type Parser struct {
	w   *when.Parser
	loc *time.Location

	// now is swappable for tests.
	now func() time.Time
}

// NewParser builds a Parser resolving relative dates in loc. A nil loc
// means time.Local.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{
		w:   w,
		loc: loc,
		now: time.Now,
	}
}

// Parse extracts a schedule record from text. Grammar mismatch returns
// ErrNoMatch; an unresolvable date phrase returns ErrUnresolvedDate. The
// caller owns user-facing messaging.
func (p *Parser) Parse(text string) (model.Record, error) {
	m := grammar.FindStringSubmatch(text)
	if m == nil {
		return model.Record{}, ErrNoMatch
	}

	activity := strings.TrimSpace(m[1])
	datePhrase := strings.TrimSpace(m[2])
	name := strings.TrimSpace(m[3])
	timeLabel := strings.TrimSpace(m[4])

	if datePhrase == "" {
		datePhrase = "today"
	}

	date, err := p.resolveDate(datePhrase)
	if err != nil {
		return model.Record{}, err
	}

	return model.NewRecord(date, name, activity, timeLabel), nil
}

// resolveDate turns a date phrase into a concrete calendar date.
func (p *Parser) resolveDate(phrase string) (*time.Time, error) {
	// Absolute dates first; "when" is for the relative ones.
	if d := model.ParseDate(phrase); d != nil {
		return d, nil
	}

	base := p.now().In(p.loc)
	res, err := p.w.Parse(phrase, base)
	if err != nil || res == nil {
		return nil, ErrUnresolvedDate
	}

	t := res.Time
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}
