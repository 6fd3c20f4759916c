package rent_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearth/rent-engine/rent"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tenant(name, phone string, rentAmount string) rent.Tenant {
	return rent.Tenant{
		ID:         "id-" + name,
		Name:       name,
		Phone:      phone,
		Role:       rent.RoleTenant,
		RentAmount: money(rentAmount),
	}
}

// onDay returns an instant on the given day of June 2026.
func onDay(day int) time.Time {
	return time.Date(2026, time.June, day, 10, 0, 0, 0, time.UTC)
}

// payment credits an amount to the calendar month of when.
func payment(id string, amount string, when time.Time) rent.PaymentRecord {
	return rent.PaymentRecord{
		ID:     id,
		Date:   when,
		Amount: money(amount),
		Month:  when.Month(),
		Year:   when.Year(),
	}
}

func window(start, end int) rent.BillingWindow {
	return rent.BillingWindow{StartDay: start, EndDay: end}
}

// =============================================================================
// PRIORITY CHAIN TESTS
// =============================================================================

func TestClassify_NoPayments_InsideWindow_Due(t *testing.T) {
	// GIVEN: window 1-5, rent $1000, no payments this month
	// WHEN: classifying on day 3
	// THEN: status is Due

	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), nil, window(1, 5), onDay(3))
	if got != rent.StatusDue {
		t.Errorf("expected due, got %s", got)
	}
}

func TestClassify_FullPayment_Paid(t *testing.T) {
	// GIVEN: the same tenant after a $1000 payment recorded this month
	// WHEN: classifying on day 3
	// THEN: status is Paid

	payments := []rent.PaymentRecord{payment("p1", "1000", onDay(2))}
	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), payments, window(1, 5), onDay(3))
	if got != rent.StatusPaid {
		t.Errorf("expected paid, got %s", got)
	}
}

func TestClassify_PastWindow_Overdue(t *testing.T) {
	// GIVEN: window 1-5, no payment
	// WHEN: classifying on day 10
	// THEN: status is Overdue

	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), nil, window(1, 5), onDay(10))
	if got != rent.StatusOverdue {
		t.Errorf("expected overdue, got %s", got)
	}
}

func TestClassify_BeforeWindow_Upcoming(t *testing.T) {
	// GIVEN: window 10-15, no payment
	// WHEN: classifying on day 3
	// THEN: status is Upcoming

	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), nil, window(10, 15), onDay(3))
	if got != rent.StatusUpcoming {
		t.Errorf("expected upcoming, got %s", got)
	}
}

func TestClassify_PaidBeatsOverdue(t *testing.T) {
	// GIVEN: rent covered on the 20th, well past the window
	// WHEN: classifying on day 25
	// THEN: Paid wins over Overdue (strict priority chain)

	payments := []rent.PaymentRecord{payment("p1", "1000", onDay(20))}
	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), payments, window(1, 5), onDay(25))
	if got != rent.StatusPaid {
		t.Errorf("expected paid, got %s", got)
	}
}

// =============================================================================
// PAID SEMANTICS
// =============================================================================

func TestClassify_PartialPaymentsSumToRent_Paid(t *testing.T) {
	// GIVEN: two partial payments this month summing to exactly the rent
	// WHEN: classifying past the window
	// THEN: status is Paid - partials count, over-payment is not credit

	payments := []rent.PaymentRecord{
		payment("p1", "600", onDay(2)),
		payment("p2", "400", onDay(4)),
	}
	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), payments, window(1, 5), onDay(10))
	if got != rent.StatusPaid {
		t.Errorf("expected paid, got %s", got)
	}
}

func TestClassify_PartialPaymentShortOfRent_NotPaid(t *testing.T) {
	// GIVEN: a partial payment below the rent amount
	// WHEN: classifying inside the window
	// THEN: status is Due, not Paid

	payments := []rent.PaymentRecord{payment("p1", "999.99", onDay(2))}
	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), payments, window(1, 5), onDay(3))
	if got != rent.StatusDue {
		t.Errorf("expected due, got %s", got)
	}
}

func TestClassify_ZeroRent_AlwaysPaid(t *testing.T) {
	// GIVEN: a tenant with zero rent and no payments
	// WHEN: classifying on any day
	// THEN: status is Paid

	for _, day := range []int{1, 3, 10, 28} {
		got := rent.Classify(tenant("Jane Doe", "555-0101", "0"), nil, window(1, 5), onDay(day))
		if got != rent.StatusPaid {
			t.Errorf("day %d: expected paid, got %s", day, got)
		}
	}
}

func TestClassify_LastMonthPaymentDoesNotCount(t *testing.T) {
	// GIVEN: a full payment credited to the previous month
	// WHEN: classifying this month past the window
	// THEN: status is Overdue

	lastMonth := time.Date(2026, time.May, 3, 10, 0, 0, 0, time.UTC)
	payments := []rent.PaymentRecord{payment("p1", "1000", lastMonth)}
	got := rent.Classify(tenant("Jane Doe", "555-0101", "1000"), payments, window(1, 5), onDay(10))
	if got != rent.StatusOverdue {
		t.Errorf("expected overdue, got %s", got)
	}
}

// =============================================================================
// EXHAUSTIVENESS
// =============================================================================

func TestClassify_StatesAreExhaustiveAndExclusive(t *testing.T) {
	// GIVEN: an unpaid tenant and window 10-15
	// WHEN: classifying every day of a 31-day month
	// THEN: exactly one of Upcoming/Due/Overdue per day, partitioned by the window

	w := window(10, 15)
	unpaid := tenant("Jane Doe", "555-0101", "1000")

	for day := 1; day <= 31; day++ {
		now := time.Date(2026, time.July, day, 12, 0, 0, 0, time.UTC)
		got := rent.Classify(unpaid, nil, w, now)

		var want rent.Status
		switch {
		case day > 15:
			want = rent.StatusOverdue
		case day >= 10:
			want = rent.StatusDue
		default:
			want = rent.StatusUpcoming
		}
		if got != want {
			t.Errorf("day %d: expected %s, got %s", day, want, got)
		}
	}
}

// =============================================================================
// WINDOW VALIDATION
// =============================================================================

func TestBillingWindow_Validate(t *testing.T) {
	cases := []struct {
		start, end int
		wantErr    bool
	}{
		{1, 5, false},
		{1, 31, false},
		{15, 15, false},
		{0, 5, true},
		{5, 1, true},
		{1, 32, true},
	}
	for _, c := range cases {
		err := window(c.start, c.end).Validate()
		if (err != nil) != c.wantErr {
			t.Errorf("window %d-%d: wantErr=%v, got %v", c.start, c.end, c.wantErr, err)
		}
	}
}
