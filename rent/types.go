/*
Package rent provides the core billing-cycle status and reminder engine.

PURPOSE:
  This package contains the pure decision logic for recurring monthly rent
  tracking: classifying a tenant's payment state from a payment ledger and a
  configurable payment window, aggregating ledger statistics, and driving
  idempotent reminder generation with message templating.

KEY CONCEPTS IN THIS FILE (types.go):
  - Tenant: A renter (or admin) identified by a case-insensitive unique name
  - BillingWindow: The day-of-month range during which rent is due on time
  - PaymentRecord: An immutable, append-only ledger entry
  - ReminderRecord: An append-only notification log entry
  - Snapshot: An immutable point-in-time view of all engine inputs

DESIGN PRINCIPLES:
  1. Immutability: Payment and reminder records are never modified or deleted
  2. Precision: Uses decimal.Decimal for all currency amounts
  3. Purity: The engine computes new state from a snapshot; it never holds
     mutable shared state and performs no I/O
  4. Idempotence: Re-running the engine on unchanged inputs changes nothing

SEE ALSO:
  - status.go: Payment status classification
  - ledger.go: Read-only ledger aggregation
  - engine.go: Reminder recomputation
  - template.go: Notification message rendering
*/
package rent

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TENANT - A renter identified by a case-insensitive unique name
// =============================================================================

type Role string

const (
	RoleTenant Role = "tenant"
	RoleAdmin  Role = "admin"
)

// Tenant is a renter. Name is the lookup key for the ledger and reminder
// history maps and must be unique under case-insensitive comparison.
// ID is a stable synthetic identifier that survives renames.
type Tenant struct {
	ID         string
	Name       string
	Address    string
	Phone      string
	Role       Role
	RentAmount decimal.Decimal
	SubTenants []SubTenant
}

// SubTenant is a secondary occupant on a tenant's lease.
type SubTenant struct {
	ID           string
	Name         string
	LeaseDetails string
}

// FirstName returns the first whitespace-delimited token of the tenant's
// name. Used by template rendering.
func (t Tenant) FirstName() string {
	fields := strings.Fields(t.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NameKey normalizes a tenant name for case-insensitive comparison.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// BILLING WINDOW - Inclusive day-of-month range for on-time payment
// =============================================================================

// BillingWindow is the inclusive [StartDay, EndDay] day-of-month range
// during which payment is expected on time.
//
// INVARIANT: 1 <= StartDay <= EndDay <= 31. Calendar validity is not
// enforced: months with fewer days simply never enter the window on the
// missing days.
type BillingWindow struct {
	StartDay int
	EndDay   int
}

// Validate checks the window invariant.
func (w BillingWindow) Validate() error {
	if w.StartDay < 1 || w.EndDay > 31 || w.StartDay > w.EndDay {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether a day-of-month falls inside the window.
func (w BillingWindow) Contains(day int) bool {
	return day >= w.StartDay && day <= w.EndDay
}

// After reports whether a day-of-month is past the window.
func (w BillingWindow) After(day int) bool {
	return day > w.EndDay
}

// =============================================================================
// LEDGER RECORDS - Append-only, immutable once created
// =============================================================================

// PaymentRecord is a single rent payment. Owned by the tenant who made it;
// immutable once created, append-only per tenant.
type PaymentRecord struct {
	ID     string
	Date   time.Time
	Amount decimal.Decimal
	Month  time.Month
	Year   int
}

// ReminderType distinguishes automatic reminders from late notices and
// explicit admin sends.
type ReminderType string

const (
	ReminderDue    ReminderType = "reminder"
	ReminderLate   ReminderType = "late"
	ReminderManual ReminderType = "manual"
)

// ReminderRecord is a single logged notification. Append-only.
type ReminderRecord struct {
	Date    time.Time
	Type    ReminderType
	Message string
}

// SameCycle reports whether the record was logged in the given calendar
// month. The reminder dedup rule is scoped per (tenant, calendar month).
func (r ReminderRecord) SameCycle(month time.Month, year int) bool {
	return r.Date.Month() == month && r.Date.Year() == year
}

// =============================================================================
// SMS TEMPLATES - Shared, mutable notification templates
// =============================================================================

// SmsTemplateSet holds the two automatic notification templates.
// See template.go for the recognized placeholders.
type SmsTemplateSet struct {
	Reminder string
	Late     string
}

// DefaultTemplates returns the stock template set.
func DefaultTemplates() SmsTemplateSet {
	return SmsTemplateSet{
		Reminder: "Hi {tenant_name}, just a friendly reminder that your rent of {rent_amount} is due by the {due_date_end}th.",
		Late:     "Hi {tenant_name}, your rent payment of {rent_amount} is now overdue. Please submit payment as soon as possible.",
	}
}

// DefaultWindow returns the stock billing window (1st through the 5th).
func DefaultWindow() BillingWindow {
	return BillingWindow{StartDay: 1, EndDay: 5}
}

// =============================================================================
// SNAPSHOT - Immutable view of all engine inputs
// =============================================================================

// Snapshot is the full input to a single Recompute call. The engine never
// mutates a snapshot; it returns new collections instead.
type Snapshot struct {
	Tenants   []Tenant
	Ledger    map[string][]PaymentRecord
	Window    BillingWindow
	Templates SmsTemplateSet
	Reminders map[string][]ReminderRecord
	Now       time.Time
}

// PaymentsFor returns the payment list for a tenant name. Absence is a
// valid initial state and yields an empty list.
func (s Snapshot) PaymentsFor(name string) []PaymentRecord {
	return s.Ledger[name]
}

// RemindersFor returns the reminder history for a tenant name.
func (s Snapshot) RemindersFor(name string) []ReminderRecord {
	return s.Reminders[name]
}
