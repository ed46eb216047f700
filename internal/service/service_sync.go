package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cardbox-tools/cardbox/internal/adapter"
	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/store"
	"github.com/cardbox-tools/cardbox/internal/vcard"
	"github.com/cardbox-tools/cardbox/models"
)

// Operation labels recorded in per-record failures.
const (
	opFetchParse = "parse"
	opPut        = "put"
	opDelete     = "delete"
)

// phase names used in structured run logs.
const (
	phaseFetchRemote  = "fetch_remote"
	phaseReadLocal    = "read_local"
	phaseComputeDelta = "compute_delta"
	phaseApplyDelta   = "apply_delta"
)

// SyncCoordinator reconciles the local card store against the remote
// address book.
//
// One coordinator owns one store; concurrent Run calls are serialized by an
// exclusive run-lock so at most one sync mutates the store at a time.
// Queries may keep reading while a run is in progress.
type SyncCoordinator struct {
	repo   store.CardRepository
	remote adapter.RemoteAdapter
	logger *logger.Logger

	// runMu is the store-scoped exclusive run-lock.
	runMu sync.Mutex
}

// NewSyncCoordinator constructs a [SyncCoordinator] over the given
// repository and remote adapter.
func NewSyncCoordinator(repo store.CardRepository, remote adapter.RemoteAdapter, logger *logger.Logger) *SyncCoordinator {
	return &SyncCoordinator{
		repo:   repo,
		remote: remote,
		logger: logger,
	}
}

// Run executes one sync pass: fetch the remote snapshot, compute the delta
// against local state, and apply it.
//
// Failure semantics:
//   - a remote snapshot or payload fetch failure aborts the run before any
//     local mutation;
//   - a store failure on an individual record during apply is recorded in
//     the report and the run continues with the remaining records;
//   - context cancellation or timeout stops the run between records with
//     [ErrSyncAborted]; work already applied stays applied.
//
// Conflicts are reported, never resolved: the coordinator makes no merge
// decision on the caller's behalf.
func (c *SyncCoordinator) Run(ctx context.Context) (models.SyncReport, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	log := logger.FromContext(ctx)
	report := models.SyncReport{RunID: uuid.NewString()}

	log.Info().
		Str("func", "SyncCoordinator.Run").
		Str("run_id", report.RunID).
		Msg("sync run started")

	// Fetch Remote Snapshot: the only remote round-trips of the run happen
	// here and in the payload prefetch below, both before any mutation.
	remoteStates, err := c.remote.Snapshot(ctx)
	if err != nil {
		return c.fail(log, report, phaseFetchRemote, err)
	}

	localStates, err := c.repo.States(ctx)
	if err != nil {
		return c.fail(log, report, phaseReadLocal, err)
	}

	// Compute Delta.
	delta := BuildDelta(localStates, remoteStates)
	report.Conflicts = delta.Conflicts

	log.Debug().
		Str("func", "SyncCoordinator.Run").
		Str("run_id", report.RunID).
		Str("phase", phaseComputeDelta).
		Int("added", len(delta.Added)).
		Int("changed", len(delta.Changed)).
		Int("deleted", len(delta.Deleted)).
		Int("conflicts", len(delta.Conflicts)).
		Msg("delta computed")

	if delta.Empty() {
		log.Info().
			Str("func", "SyncCoordinator.Run").
			Str("run_id", report.RunID).
			Msg("store already in sync")
		return report, nil
	}

	// Prefetch every payload the apply phase needs, so a transport failure
	// still leaves the store untouched.
	fetchIDs := make([]string, 0, len(delta.Added)+len(delta.Changed))
	fetchIDs = append(fetchIDs, delta.Added...)
	fetchIDs = append(fetchIDs, delta.Changed...)

	var fetched []models.RemoteCard
	if len(fetchIDs) > 0 {
		fetched, err = c.remote.Fetch(ctx, fetchIDs)
		if err != nil {
			return c.fail(log, report, phaseFetchRemote, err)
		}
	}

	// Apply Delta: per-record failures bound the blast radius of one bad
	// record; the run continues to completion.
	added := toSet(delta.Added)
	for _, rc := range fetched {
		if err = ctx.Err(); err != nil {
			return report, fmt.Errorf("%w: %w", ErrSyncAborted, err)
		}

		card, parseErr := vcard.Parse(rc.Raw)
		if parseErr != nil {
			report.Failures = append(report.Failures, models.RecordFailure{
				ID: rc.ID, Op: opFetchParse, Err: parseErr.Error(),
			})
			continue
		}

		card.Etag = rc.Etag
		card.SyncedEtag = rc.Etag
		card.LocalModified = false

		if putErr := c.repo.Put(ctx, card); putErr != nil {
			report.Failures = append(report.Failures, models.RecordFailure{
				ID: rc.ID, Op: opPut, Err: putErr.Error(),
			})
			continue
		}

		if added[rc.ID] {
			report.Added++
		} else {
			report.Changed++
		}
	}

	for _, id := range delta.Deleted {
		if err = ctx.Err(); err != nil {
			return report, fmt.Errorf("%w: %w", ErrSyncAborted, err)
		}

		removed, delErr := c.repo.Delete(ctx, id)
		if delErr != nil {
			report.Failures = append(report.Failures, models.RecordFailure{
				ID: id, Op: opDelete, Err: delErr.Error(),
			})
			continue
		}
		if removed {
			report.Deleted++
		}
	}

	log.Info().
		Str("func", "SyncCoordinator.Run").
		Str("run_id", report.RunID).
		Str("phase", phaseApplyDelta).
		Int("added", report.Added).
		Int("changed", report.Changed).
		Int("deleted", report.Deleted).
		Int("failures", len(report.Failures)).
		Int("conflicts", len(report.Conflicts)).
		Msg("sync run finished")

	return report, nil
}

func (c *SyncCoordinator) fail(log *logger.Logger, report models.SyncReport, phase string, err error) (models.SyncReport, error) {
	log.Err(err).
		Str("func", "SyncCoordinator.Run").
		Str("run_id", report.RunID).
		Str("phase", phase).
		Msg("sync run failed")
	return report, fmt.Errorf("%w: %w", ErrSyncAborted, err)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
