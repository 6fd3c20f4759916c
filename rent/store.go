/*
store.go - Persistence interface for tenants, payments, and reminders

PURPOSE:
  Defines the interface between the engine and durable storage. Payments
  and reminders are APPEND-ONLY: the interface exposes no way to update or
  delete individual records. The only destructive operation is deleting a
  tenant, which cascades to that tenant's ledger and reminder history.

RENAME MIGRATION:
  The ledger and reminder history are keyed by tenant name, so renaming a
  tenant must migrate every dependent record to the new key in one atomic
  operation. UpdateTenant owns that contract; implementations must leave
  zero records under the old key and never lose records on failure.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - rent/store:   In-memory for testing/dev

SEE ALSO:
  - directory.go: Validation layer above this interface
  - api/trigger.go: Loads snapshots and persists recompute output
*/
package rent

import (
	"context"
	"time"
)

// Store handles persistence of the full application state.
//
// IMPORTANT: Payments and reminders are append-only. Corrections happen at
// the domain level (e.g. a compensating payment), never by editing records.
type Store interface {
	// ListTenants returns all tenants, ordered by name.
	ListTenants(ctx context.Context) ([]Tenant, error)

	// GetTenant looks a tenant up by name, case-insensitively.
	// Returns nil (not an error) when absent.
	GetTenant(ctx context.Context, name string) (*Tenant, error)

	// SaveTenant inserts a new tenant.
	SaveTenant(ctx context.Context, t Tenant) error

	// UpdateTenant replaces the tenant stored under originalName.
	// When the name changed, all payments and reminders keyed by
	// originalName are migrated to the new key atomically.
	UpdateTenant(ctx context.Context, originalName string, t Tenant) error

	// DeleteTenant removes a tenant and cascades to their payment and
	// reminder history.
	DeleteTenant(ctx context.Context, name string) error

	// AppendPayment adds a payment record for a tenant. Append-only.
	AppendPayment(ctx context.Context, tenantName string, p PaymentRecord) error

	// LoadPayments returns a tenant's payments in insertion order.
	// An unknown name yields an empty list.
	LoadPayments(ctx context.Context, tenantName string) ([]PaymentRecord, error)

	// LoadLedger returns the full tenant-name -> payments map.
	LoadLedger(ctx context.Context) (map[string][]PaymentRecord, error)

	// AppendReminder adds a reminder record for a tenant. Append-only.
	AppendReminder(ctx context.Context, tenantName string, r ReminderRecord) error

	// LoadReminders returns a tenant's reminder history in insertion order.
	LoadReminders(ctx context.Context, tenantName string) ([]ReminderRecord, error)

	// LoadReminderHistory returns the full tenant-name -> reminders map.
	LoadReminderHistory(ctx context.Context) (map[string][]ReminderRecord, error)

	// Window returns the configured billing window.
	Window(ctx context.Context) (BillingWindow, error)

	// SaveWindow replaces the billing window configuration.
	SaveWindow(ctx context.Context, w BillingWindow) error

	// Templates returns the configured SMS template set.
	Templates(ctx context.Context) (SmsTemplateSet, error)

	// SaveTemplates replaces the SMS template set.
	SaveTemplates(ctx context.Context, t SmsTemplateSet) error
}

// LoadSnapshot assembles a point-in-time Snapshot of all engine inputs
// from a store. The caller supplies now so tests can pin the clock.
func LoadSnapshot(ctx context.Context, store Store, now time.Time) (Snapshot, error) {
	tenants, err := store.ListTenants(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	ledger, err := store.LoadLedger(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	reminders, err := store.LoadReminderHistory(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	window, err := store.Window(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	templates, err := store.Templates(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Tenants:   tenants,
		Ledger:    ledger,
		Window:    window,
		Templates: templates,
		Reminders: reminders,
		Now:       now,
	}, nil
}
