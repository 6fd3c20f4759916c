/*
engine.go - Idempotent reminder recomputation

PURPOSE:
  Decides, for every tenant, whether an automatic reminder or late notice
  should exist for the current calendar month, compares that against the
  reminder history, and appends at most one new record per tenant per pass.

STATE MACHINE (per tenant, per calendar month):
  None -> ReminderSent -> LateSent

  Manual sends are orthogonal: they can occur in any state and never block
  the automatic transitions.

IDEMPOTENCE INVARIANT:
  Recompute with unchanged inputs (same tenants, ledger, window, templates,
  history, and no calendar-day change) returns output identical to the
  input. No duplicate records are ever created for a state that has already
  been recorded, no matter how many times the host re-triggers the engine.

SNAPSHOT CONTRACT:
  Inputs are never mutated. The returned history shares unchanged slices
  with the input and copies only the slices it appends to. The host owns
  serializing the result back to storage; if two passes race against the
  same prior snapshot, last-writer-wins is the accepted boundary.

SEE ALSO:
  - status.go: Paid tenants are skipped entirely
  - template.go: Message rendering
  - api/trigger.go: The host-side driver that invokes Recompute on change
*/
package rent

// =============================================================================
// RECOMPUTE - One pass over all tenants
// =============================================================================

// AppendedReminder is a record produced by a recompute pass, tagged with
// the owning tenant so the host can persist it append-only.
type AppendedReminder struct {
	TenantName string
	Record     ReminderRecord
}

// RecomputeResult carries the new history plus what changed.
type RecomputeResult struct {
	// History is the updated reminder-history map. When Changed is false it
	// is the input map unchanged.
	History map[string][]ReminderRecord

	// Appended lists exactly the records added by this pass.
	Appended []AppendedReminder

	// Changed tells the host whether a persistence write is needed.
	Changed bool
}

// Recompute runs one reminder pass over the snapshot.
//
// For each tenant with role tenant and a non-empty phone number:
//  1. Skip while Paid for the current month.
//  2. Inside the window with no reminder logged this month: append one.
//  3. Past the window with no late notice logged this month: append one.
//
// The two branches are mutually exclusive (a day cannot be both inside and
// after the window), so at most one record is appended per tenant per pass.
func Recompute(snap Snapshot) RecomputeResult {
	result := RecomputeResult{History: snap.Reminders}
	day := snap.Now.Day()

	for _, tenant := range snap.Tenants {
		if tenant.Role != RoleTenant || tenant.Phone == "" {
			continue
		}
		if Classify(tenant, snap.PaymentsFor(tenant.Name), snap.Window, snap.Now) == StatusPaid {
			continue
		}

		history := result.History[tenant.Name]
		var record ReminderRecord
		switch {
		case snap.Window.Contains(day) && !hasAutomatic(history, ReminderDue, snap):
			record = ReminderRecord{
				Date:    snap.Now,
				Type:    ReminderDue,
				Message: Render(snap.Templates.Reminder, tenant, snap.Window),
			}
		case snap.Window.After(day) && !hasAutomatic(history, ReminderLate, snap):
			record = ReminderRecord{
				Date:    snap.Now,
				Type:    ReminderLate,
				Message: Render(snap.Templates.Late, tenant, snap.Window),
			}
		default:
			continue
		}

		if !result.Changed {
			// First append: stop aliasing the input map.
			result.History = cloneHistory(snap.Reminders)
			result.Changed = true
		}
		result.History[tenant.Name] = appendRecord(result.History[tenant.Name], record)
		result.Appended = append(result.Appended, AppendedReminder{TenantName: tenant.Name, Record: record})
	}

	return result
}

// hasAutomatic reports whether an automatic record of the given type was
// already logged for the snapshot's calendar month.
func hasAutomatic(history []ReminderRecord, kind ReminderType, snap Snapshot) bool {
	for _, r := range history {
		if r.Type == kind && r.SameCycle(snap.Now.Month(), snap.Now.Year()) {
			return true
		}
	}
	return false
}

// cloneHistory shallow-copies the map; record slices stay shared until a
// tenant's slice is appended to via appendRecord.
func cloneHistory(in map[string][]ReminderRecord) map[string][]ReminderRecord {
	out := make(map[string][]ReminderRecord, len(in)+1)
	for name, records := range in {
		out[name] = records
	}
	return out
}

// appendRecord copies the slice before appending so the input snapshot's
// backing array is never written through.
func appendRecord(history []ReminderRecord, record ReminderRecord) []ReminderRecord {
	out := make([]ReminderRecord, len(history), len(history)+1)
	copy(out, history)
	return append(out, record)
}
