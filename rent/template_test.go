package rent_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hearth/rent-engine/rent"
)

func TestRender_AllPlaceholders(t *testing.T) {
	// GIVEN: a template using three placeholders and a $950 tenant
	// WHEN: rendering with window 1-5
	// THEN: first name, two-decimal currency, and the end day are substituted

	got := rent.Render(
		"Hi {tenant_name}, rent is {rent_amount} due by {due_date_end}",
		tenant("Jane Doe", "555-0101", "950"),
		window(1, 5),
	)
	want := "Hi Jane, rent is $950.00 due by 5"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_StartDayPlaceholder(t *testing.T) {
	got := rent.Render("Window opens on the {due_date_start}.", tenant("Jane Doe", "", "950"), window(3, 8))
	if got != "Window opens on the 3." {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestRender_ReplacesEveryOccurrence(t *testing.T) {
	// GIVEN: a template repeating the same placeholder
	// THEN: all occurrences are replaced, not just the first

	got := rent.Render("{tenant_name} {tenant_name} {tenant_name}", tenant("Jane Doe", "", "950"), window(1, 5))
	if got != "Jane Jane Jane" {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestRender_UnrecognizedPlaceholderLeftVerbatim(t *testing.T) {
	got := rent.Render("Hello {unknown_tag}, pay {rent_amount}", tenant("Jane Doe", "", "950"), window(1, 5))
	if got != "Hello {unknown_tag}, pay $950.00" {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestRender_ZeroRentRendersAsZeroDollars(t *testing.T) {
	// A tenant with no rent configured renders $0.00 rather than garbage.
	got := rent.Render("{rent_amount}", rent.Tenant{Name: "Jane Doe", RentAmount: decimal.Zero}, window(1, 5))
	if got != "$0.00" {
		t.Errorf("expected $0.00, got %q", got)
	}
}

func TestRender_FractionalRentKeepsTwoDecimals(t *testing.T) {
	got := rent.Render("{rent_amount}", tenant("Jane Doe", "", "1234.5"), window(1, 5))
	if got != "$1234.50" {
		t.Errorf("expected $1234.50, got %q", got)
	}
}

func TestRender_SingleWordNameUsedWhole(t *testing.T) {
	got := rent.Render("{tenant_name}", tenant("Cher", "", "950"), window(1, 5))
	if got != "Cher" {
		t.Errorf("expected Cher, got %q", got)
	}
}
