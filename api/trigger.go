/*
trigger.go - Recompute-on-change driver

PURPOSE:
  Bridges the pure reminder engine to durable storage. Whenever any engine
  input changes (tenants, ledger, window, templates), the trigger loads a
  fresh snapshot, runs one Recompute pass, and persists exactly the records
  the pass appended. When the pass reports no change, nothing is written.

DESIGN:
  - The engine itself has no ambient triggers; this is the host's
    change-detection layer, invoked explicitly by mutating handlers
  - Serializes passes with a mutex so concurrent mutations don't interleave
    snapshot reads with reminder writes
  - Because the engine is idempotent, a redundant Notify is harmless: the
    next pass sees the already-appended records and does nothing

USAGE:
  trigger := NewTrigger(store, time.Now)
  trigger.Notify(ctx)          // fire-and-forget after a mutation
  result, err := trigger.Run(ctx) // explicit pass, e.g. POST /api/recompute

SEE ALSO:
  - rent/engine.go: The pure Recompute function
  - handlers.go: Calls Notify after every mutation
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hearth/rent-engine/rent"
)

// Trigger drives reminder recomputation against a store.
type Trigger struct {
	store rent.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewTrigger creates a trigger over the given store. now is swappable so
// tests can pin the clock.
func NewTrigger(store rent.Store, now func() time.Time) *Trigger {
	if now == nil {
		now = time.Now
	}
	return &Trigger{store: store, now: now}
}

// Run executes one recompute pass and persists any appended records.
func (t *Trigger) Run(ctx context.Context) (rent.RecomputeResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := rent.LoadSnapshot(ctx, t.store, t.now())
	if err != nil {
		return rent.RecomputeResult{}, err
	}

	result := rent.Recompute(snap)
	if !result.Changed {
		return result, nil
	}

	for _, appended := range result.Appended {
		if err := t.store.AppendReminder(ctx, appended.TenantName, appended.Record); err != nil {
			return rent.RecomputeResult{}, err
		}
	}
	return result, nil
}

// Notify runs a pass and logs failures instead of returning them. Mutating
// handlers call this after persisting; the mutation itself already
// succeeded, so a failed reminder pass must not fail the request.
func (t *Trigger) Notify(ctx context.Context) {
	if _, err := t.Run(ctx); err != nil {
		log.Printf("reminder recompute failed: %v", err)
	}
}
