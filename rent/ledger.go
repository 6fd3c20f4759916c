/*
ledger.go - Read-only aggregation over the payment ledger

PURPOSE:
  Produces the figures the admin dashboard displays: global revenue and
  transaction counts, a most-recent-first transaction feed, and per-tenant
  totals with an on-time/late breakdown.

THIS COMPONENT NEVER WRITES:
  All functions take the ledger map as input and return derived values.
  The map is never mutated.

ON-TIME SEMANTICS:
  A payment is on-time when its calendar day-of-month falls inside the
  CURRENT window configuration. The window is evaluated at query time, not
  at payment time, so changing the window retroactively reclassifies
  historical payments. This matches the product's behavior: the window is a
  property of the lease, not of the individual payment.

SEE ALSO:
  - status.go: Current-cycle classification (separate concern)
*/
package rent

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultRecentLimit is how many transactions the dashboard feed shows.
const DefaultRecentLimit = 10

// =============================================================================
// GLOBAL AGGREGATES
// =============================================================================

// LedgerSummary is the global view across all tenants.
type LedgerSummary struct {
	TotalRevenue      decimal.Decimal
	TotalTransactions int
}

// TaggedPayment is a payment annotated with its owning tenant's name,
// for the cross-tenant transaction feed.
type TaggedPayment struct {
	TenantName string
	Payment    PaymentRecord
}

// Summarize computes global revenue and transaction count.
func Summarize(ledger map[string][]PaymentRecord) LedgerSummary {
	summary := LedgerSummary{TotalRevenue: decimal.Zero}
	for _, payments := range ledger {
		for _, p := range payments {
			summary.TotalRevenue = summary.TotalRevenue.Add(p.Amount)
			summary.TotalTransactions++
		}
	}
	return summary
}

// RecentTransactions returns up to limit payments across all tenants,
// most recent date first. Ties keep their original insertion order
// (stable sort). Tenant groups are visited in name order so the result
// is deterministic for equal dates across tenants.
func RecentTransactions(ledger map[string][]PaymentRecord, limit int) []TaggedPayment {
	names := make([]string, 0, len(ledger))
	for name := range ledger {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []TaggedPayment
	for _, name := range names {
		for _, p := range ledger[name] {
			all = append(all, TaggedPayment{TenantName: name, Payment: p})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Payment.Date.After(all[j].Payment.Date)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// =============================================================================
// PER-TENANT AGGREGATES
// =============================================================================

// TenantStats is the all-time breakdown for a single tenant.
type TenantStats struct {
	TotalPaid    decimal.Decimal
	PaymentCount int
	OnTimeCount  int
	LateCount    int
}

// StatsFor computes all-time totals for one tenant against the current
// window. A name absent from the ledger yields zeroed stats.
func StatsFor(ledger map[string][]PaymentRecord, name string, window BillingWindow) TenantStats {
	stats := TenantStats{TotalPaid: decimal.Zero}
	for _, p := range ledger[name] {
		stats.TotalPaid = stats.TotalPaid.Add(p.Amount)
		stats.PaymentCount++
		if window.Contains(p.Date.Day()) {
			stats.OnTimeCount++
		}
	}
	stats.LateCount = stats.PaymentCount - stats.OnTimeCount
	return stats
}
