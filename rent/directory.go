/*
directory.go - Tenant directory with validation invariants

PURPOSE:
  Wraps a Store with the business rules that protect the tenant collection.
  The critical invariant: tenant names are unique under case-insensitive
  comparison, and renaming a tenant migrates every dependent record (ledger,
  reminder history) to the new key atomically.

WHY A WRAPPER?
  The Store only knows how to persist. It doesn't know that "Jane Doe" and
  "jane doe" are the same tenant, or that a rename must not proceed when the
  target name is taken. This wrapper enforces those constraints before any
  write happens, so a failed validation never leaves partial mutation.

WHAT IT CHECKS:
  1. Create: name non-empty, rent non-negative, name not taken
  2. Update: same as create, allowing the tenant to keep its own name
  3. RecordPayment/SendManual: the tenant must exist

ERROR HANDLING:
  All failures are returned as values (see errors.go), never panics. The
  name-collision error carries the offending name for display.

SEE ALSO:
  - store.go: The persistence interface underneath
  - engine.go: Automatic reminders (manual sends bypass its state machine)
*/
package rent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTORY - Validated mutations over a Store
// =============================================================================

// Directory exposes the tenant mutation, payment event, and manual
// notification interfaces on top of a Store.
type Directory struct {
	store Store
}

// NewDirectory creates a directory over the given store.
func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// TenantInput carries the admin-editable fields of a tenant.
type TenantInput struct {
	Name       string
	Address    string
	Phone      string
	RentAmount decimal.Decimal
	SubTenants []SubTenant
}

// =============================================================================
// TENANT MUTATIONS
// =============================================================================

// CreateTenant registers a new tenant. Fails with ErrDuplicateTenantName
// (wrapped in DuplicateNameError) when the name is already taken,
// case-insensitively. The new tenant always has role tenant; admins are
// provisioned out of band.
func (d *Directory) CreateTenant(ctx context.Context, in TenantInput) (*Tenant, error) {
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := d.store.GetTenant(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateNameError{Name: in.Name}
	}

	tenant := Tenant{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Address:    in.Address,
		Phone:      in.Phone,
		Role:       RoleTenant,
		RentAmount: in.RentAmount,
		SubTenants: withSubTenantIDs(in.SubTenants),
	}
	if err := d.store.SaveTenant(ctx, tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// UpdateTenant applies a patch to the tenant stored under originalName.
// When the patch renames the tenant, the collision check runs first and the
// store migrates the ledger and reminder history in the same operation.
func (d *Directory) UpdateTenant(ctx context.Context, originalName string, in TenantInput) (*Tenant, error) {
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := d.store.GetTenant(ctx, originalName)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTenantNotFound
	}

	if NameKey(in.Name) != NameKey(current.Name) {
		conflict, err := d.store.GetTenant(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, &DuplicateNameError{Name: in.Name}
		}
	}

	updated := Tenant{
		ID:         current.ID,
		Name:       in.Name,
		Address:    in.Address,
		Phone:      in.Phone,
		Role:       current.Role,
		RentAmount: in.RentAmount,
		SubTenants: withSubTenantIDs(in.SubTenants),
	}
	if err := d.store.UpdateTenant(ctx, current.Name, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTenant removes a tenant and all their payment and reminder records.
func (d *Directory) DeleteTenant(ctx context.Context, name string) error {
	current, err := d.store.GetTenant(ctx, name)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrTenantNotFound
	}
	return d.store.DeleteTenant(ctx, current.Name)
}

// =============================================================================
// PAYMENT EVENTS
// =============================================================================

// RecordPayment appends a payment for the named tenant. The payment is
// credited to the calendar month of when.
func (d *Directory) RecordPayment(ctx context.Context, tenantName string, amount decimal.Decimal, when time.Time) (*PaymentRecord, error) {
	if !amount.IsPositive() {
		return nil, ErrNegativePayment
	}

	tenant, err := d.store.GetTenant(ctx, tenantName)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	record := PaymentRecord{
		ID:     uuid.NewString(),
		Date:   when,
		Amount: amount,
		Month:  when.Month(),
		Year:   when.Year(),
	}
	if err := d.store.AppendPayment(ctx, tenant.Name, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// =============================================================================
// MANUAL NOTIFICATIONS
// =============================================================================

// SendManual logs a manual notification immediately. Manual sends bypass
// the reminder engine's dedup entirely: no window check, no per-month cap.
func (d *Directory) SendManual(ctx context.Context, tenantName, message string, when time.Time) (*ReminderRecord, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	tenant, err := d.store.GetTenant(ctx, tenantName)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	record := ReminderRecord{
		Date:    when,
		Type:    ReminderManual,
		Message: message,
	}
	if err := d.store.AppendReminder(ctx, tenant.Name, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (in TenantInput) trimmed() TenantInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func (in TenantInput) validate() error {
	if in.Name == "" {
		return ErrEmptyTenantName
	}
	if in.RentAmount.IsNegative() {
		return ErrNegativeRent
	}
	return nil
}

func withSubTenantIDs(subs []SubTenant) []SubTenant {
	if len(subs) == 0 {
		return nil
	}
	out := make([]SubTenant, len(subs))
	copy(out, subs)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
