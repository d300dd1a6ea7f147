// Package sched orchestrates every mutation of the remote schedule.
//
// Each operation runs the same workflow:
//
//	stage    compute candidate rows from user input only
//	refetch  fetch the latest remote table, discarding anything held earlier
//	merge    apply the staged change to the freshly fetched table
//	commit   write back (refused up front when no credential is configured)
//	report   return the merged table and the raw write outcome
//
// The refetch step is the concurrency control: merging only ever happens
// against the newest observable remote state. Two operators can still race
// between refetch and commit; the loser's write is either rejected by the
// store (surfaced raw, not retried) or silently overwritten. That window
// is accepted and documented, not hidden.
package sched

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/nlp"
	"schedcal/internal/store"
)

// ErrReadOnly is returned when a mutation is attempted without a write
// credential. The workflow aborts before any write is issued.
var ErrReadOnly = errors.New("sched: no credential configured, schedule is read-only")

// ErrNoSuchEvent is returned when a delete selector matches nothing in the
// freshly fetched table.
var ErrNoSuchEvent = errors.New("sched: no matching event")

// Store is the remote blob client the workflow drives. *store.Client
// satisfies it; tests substitute a fake that records calls.
type Store interface {
	Fetch(ctx context.Context) (model.Table, string, error)
	Write(ctx context.Context, table model.Table, message string) (store.WriteResult, error)
	CanWrite() bool
}

// Result reports a completed mutation.
type Result struct {
	// OpID correlates log lines for one operation.
	OpID string

	// Added / Removed count staged rows actually merged.
	Added   int
	Removed int

	// Table is the merged table that was written, for preview display.
	Table model.Table

	// Write is the raw store outcome.
	Write store.WriteResult
}

// Service runs the synchronization workflow. Operations are synchronous
// and sequential; there is no background work and no retry.
type Service struct {
	store  Store
	parser *nlp.Parser

	// DefaultMessage is the commit message used when an operation does
	// not provide its own.
	DefaultMessage string
}

// New builds a Service. parser may be nil if AddText is never used.
func New(st Store, parser *nlp.Parser) *Service {
	return &Service{store: st, parser: parser}
}

// Load fetches the latest schedule for display. Every read reconstructs
// the table from the remote blob; nothing is cached across operations.
func (s *Service) Load(ctx context.Context) (model.Table, error) {
	table, _, err := s.store.Fetch(ctx)
	if err != nil {
		return model.Table{}, fmt.Errorf("load schedule: %w", err)
	}
	return table, nil
}

// AddRecords appends pre-staged rows (manual form input, possibly
// recurrence-expanded) to the schedule.
func (s *Service) AddRecords(ctx context.Context, recs []model.Record, message string) (Result, error) {
	if len(recs) == 0 {
		return Result{}, errors.New("sched: nothing to add")
	}
	if message == "" {
		message = s.DefaultMessage
	}
	if message == "" {
		message = "Add event(s)"
	}

	op := uuid.NewString()
	appLog.Info("add staged", "op", op, "rows", len(recs))

	return s.commit(ctx, op, message, func(latest *model.Table) (added, removed int, err error) {
		latest.Append(recs...)
		return len(recs), 0, nil
	})
}

// AddText parses a natural-language phrase and appends the resulting row.
func (s *Service) AddText(ctx context.Context, text string) (Result, error) {
	if s.parser == nil {
		return Result{}, errors.New("sched: no parser configured")
	}
	rec, err := s.parser.Parse(text)
	if err != nil {
		return Result{}, err
	}
	return s.AddRecords(ctx, []model.Record{rec}, "Add event via natural language")
}

// DeleteByID removes the row with the given ID from the freshly fetched
// table. IDs are positions in the latest remote table, so callers should
// present labels from a just-loaded table.
func (s *Service) DeleteByID(ctx context.Context, id int) (Result, error) {
	op := uuid.NewString()
	appLog.Info("delete staged", "op", op, "id", id)

	return s.commit(ctx, op, "Delete event", func(latest *model.Table) (int, int, error) {
		removed := latest.DeleteByID(id)
		if removed == 0 {
			return 0, 0, ErrNoSuchEvent
		}
		return 0, removed, nil
	})
}

// DeleteByLabel removes every row whose rendered label matches. Duplicate
// rows share a label and are all removed; this is the label-selection UI
// convenience layered over DeleteByID.
func (s *Service) DeleteByLabel(ctx context.Context, label string) (Result, error) {
	op := uuid.NewString()
	appLog.Info("delete staged", "op", op, "label", label)

	return s.commit(ctx, op, "Delete event", func(latest *model.Table) (int, int, error) {
		removed := latest.DeleteByLabel(label)
		if removed == 0 {
			return 0, 0, ErrNoSuchEvent
		}
		return 0, removed, nil
	})
}

// commit runs refetch -> merge -> write for one staged mutation.
func (s *Service) commit(ctx context.Context, op, message string, merge func(*model.Table) (added, removed int, err error)) (Result, error) {
	// Refetch: merging against anything older than this fetch is the bug
	// this workflow exists to prevent.
	latest, sha, err := s.store.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("refetch latest schedule: %w", err)
	}
	appLog.Debug("refetched", "op", op, "rows", len(latest.Rows), "sha", sha)

	added, removed, err := merge(&latest)
	if err != nil {
		return Result{}, err
	}

	if !s.store.CanWrite() {
		return Result{}, ErrReadOnly
	}

	res, err := s.store.Write(ctx, latest, message)
	result := Result{
		OpID:    op,
		Added:   added,
		Removed: removed,
		Table:   latest,
		Write:   res,
	}
	if err != nil {
		appLog.Error("write failed", err, "op", op, "status", res.StatusCode)
		return result, err
	}

	appLog.Info("write committed", "op", op, "added", added, "removed", removed, "status", res.StatusCode)
	return result, nil
}
