/*
status.go - Billing-cycle payment status classification

PURPOSE:
  Classifies a tenant's current payment state from their payment ledger and
  the configured billing window. This is a pure function of
  (tenant, payments, window, now).

THE PRIORITY CHAIN:
  Paid -> Overdue -> Due -> Upcoming

  The chain is strict: the overdue/due/upcoming checks only run when the
  tenant has NOT covered this month's rent. A tenant who paid in full on
  the 20th is Paid, not Overdue, even though the window has long closed.

PAID SEMANTICS:
  Partial payments that sum to >= rent count as fully paid. Over-payment is
  not tracked as credit. A tenant with zero rent is always Paid.

SEE ALSO:
  - engine.go: Uses Classify to decide whether reminder logic runs
  - ledger.go: All-time aggregation (not status)
*/
package rent

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - The four billing-cycle states
// =============================================================================

type Status string

const (
	StatusPaid     Status = "paid"     // Current month's rent fully covered
	StatusOverdue  Status = "overdue"  // Window closed, rent not covered
	StatusDue      Status = "due"      // Inside the window, rent not covered
	StatusUpcoming Status = "upcoming" // Window not yet open this month
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify returns the tenant's payment status at the given instant.
//
// Payments are counted toward the current cycle when their recorded
// month/year match now's calendar month, regardless of their Date field.
func Classify(tenant Tenant, payments []PaymentRecord, window BillingWindow, now time.Time) Status {
	paid := PaidThisCycle(payments, now.Month(), now.Year())

	if paid.GreaterThanOrEqual(tenant.RentAmount) {
		return StatusPaid
	}
	if window.After(now.Day()) {
		return StatusOverdue
	}
	if window.Contains(now.Day()) {
		return StatusDue
	}
	return StatusUpcoming
}

// PaidThisCycle sums payment amounts recorded against the given calendar
// month.
func PaidThisCycle(payments []PaymentRecord, month time.Month, year int) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Month == month && p.Year == year {
			total = total.Add(p.Amount)
		}
	}
	return total
}
