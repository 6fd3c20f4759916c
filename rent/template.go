/*
template.go - Notification message rendering

PURPOSE:
  Pure string substitution for reminder and late-notice bodies. Templates
  are plain strings with a small fixed set of recognized placeholders;
  anything else (including unrecognized {brace} syntax) is left verbatim.

PLACEHOLDERS:
  {tenant_name}     First whitespace-delimited token of the tenant's name
  {rent_amount}     Rent formatted as currency, e.g. $950.00
  {due_date_start}  Window start day as a decimal integer
  {due_date_end}    Window end day as a decimal integer

Every occurrence of a placeholder is replaced, not just the first.
A zero rent amount renders as $0.00.
*/
package rent

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Render substitutes the recognized placeholders into template.
// Rendering never fails: unknown placeholders pass through untouched.
func Render(template string, tenant Tenant, window BillingWindow) string {
	r := strings.NewReplacer(
		"{tenant_name}", tenant.FirstName(),
		"{rent_amount}", FormatCurrency(tenant.RentAmount),
		"{due_date_start}", strconv.Itoa(window.StartDay),
		"{due_date_end}", strconv.Itoa(window.EndDay),
	)
	return r.Replace(template)
}

// FormatCurrency renders an amount with exactly two decimal places and a
// dollar prefix.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
