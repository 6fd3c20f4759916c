package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth/rent-engine/rent/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// testServer wires the full router over the in-memory store with a
// pinned clock, so window math is deterministic.
type testServer struct {
	*httptest.Server
	clock *time.Time
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()

	mem := store.NewMemory()
	clock := now
	h := NewHandler(mem)
	h.now = func() time.Time { return clock }
	h.Trigger = NewTrigger(mem, h.now)

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, clock: &clock}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *testServer) createTenant(t *testing.T, name, phone, rentAmount string) TenantDTO {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/tenants", TenantRequest{
		Name: name, Phone: phone, RentAmount: rentAmount,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[TenantDTO](t, resp)
}

// june returns an instant on the given day of June 2026, inside the
// default 1-5 window for days 1 through 5.
func june(day int) time.Time {
	return time.Date(2026, time.June, day, 10, 0, 0, 0, time.UTC)
}

// =============================================================================
// TENANT LIFECYCLE
// =============================================================================

func TestAPI_CreateAndGetTenant(t *testing.T) {
	// GIVEN: a running server
	// WHEN: creating a tenant and fetching them back by a different case
	// THEN: the round-trip preserves fields and formats money to two decimals

	srv := newTestServer(t, june(2))
	created := srv.createTenant(t, "Jane Doe", "555-0101", "950.5")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "950.50", created.RentAmount)
	assert.Equal(t, "tenant", created.Role)

	resp := srv.do(t, http.MethodGet, "/api/tenants/jane%20doe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[TenantDTO](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.Name)
}

func TestAPI_DuplicateNameIsConflict(t *testing.T) {
	srv := newTestServer(t, june(2))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodPost, "/api/tenants", TenantRequest{Name: "JANE DOE", RentAmount: "950"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_InvalidRentAmountIsBadRequest(t *testing.T) {
	srv := newTestServer(t, june(2))
	resp := srv.do(t, http.MethodPost, "/api/tenants", TenantRequest{Name: "Jane Doe", RentAmount: "lots"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RenameMigratesPayments(t *testing.T) {
	// GIVEN: a tenant with one payment
	// WHEN: renaming via PUT
	// THEN: the payment history answers under the new name

	srv := newTestServer(t, june(2))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodPost, "/api/tenants/Jane%20Doe/payments", RecordPaymentRequest{Amount: "950"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodPut, "/api/tenants/Jane%20Doe", TenantRequest{
		Name: "Jane Smith", Phone: "555-0101", RentAmount: "950",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/tenants/Jane%20Smith/payments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payments := decode[[]PaymentDTO](t, resp)
	require.Len(t, payments, 1)
	assert.Equal(t, "950.00", payments[0].Amount)
}

func TestAPI_DeleteTenant(t *testing.T) {
	srv := newTestServer(t, june(2))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodDelete, "/api/tenants/Jane%20Doe", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// STATUS AND STATS
// =============================================================================

func TestAPI_StatusTransitionsOnPayment(t *testing.T) {
	// GIVEN: an unpaid tenant on day 3 of the default 1-5 window
	// WHEN: recording a covering payment
	// THEN: status flips from due to paid

	srv := newTestServer(t, june(3))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "due", decode[StatusDTO](t, resp).Status)

	resp = srv.do(t, http.MethodPost, "/api/tenants/Jane%20Doe/payments", RecordPaymentRequest{Amount: "950"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", decode[StatusDTO](t, resp).Status)
}

func TestAPI_StatsSplitOnTimeAndLate(t *testing.T) {
	// Two payments, one inside the window, one past it.
	srv := newTestServer(t, june(3))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	for _, date := range []string{june(3).Format(time.RFC3339), june(20).Format(time.RFC3339)} {
		resp := srv.do(t, http.MethodPost, "/api/tenants/Jane%20Doe/payments",
			RecordPaymentRequest{Amount: "475", Date: date})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[TenantStatsDTO](t, resp)
	assert.Equal(t, "950.00", stats.TotalPaid)
	assert.Equal(t, 2, stats.PaymentCount)
	assert.Equal(t, 1, stats.OnTimeCount)
	assert.Equal(t, 1, stats.LateCount)
}

func TestAPI_StatsForUnknownTenantAreZeroed(t *testing.T) {
	srv := newTestServer(t, june(3))
	resp := srv.do(t, http.MethodGet, "/api/tenants/Nobody/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[TenantStatsDTO](t, resp)
	assert.Equal(t, 0, stats.PaymentCount)
	assert.Equal(t, "0.00", stats.TotalPaid)
}

// =============================================================================
// RECOMPUTE AND DEDUP
// =============================================================================

func TestAPI_RecomputeAppendsOnceThenDedups(t *testing.T) {
	// GIVEN: a tenant created before the window opens (no pass fires), then
	// the clock advanced into the window
	// WHEN: recomputing twice
	// THEN: the first pass appends one reminder, the second appends nothing

	srv := newTestServer(t, june(3))
	resp := srv.do(t, http.MethodPut, "/api/settings/window", map[string]int{"start_day": 10, "end_day": 15})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	*srv.clock = june(12)

	resp = srv.do(t, http.MethodPost, "/api/recompute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[RecomputeResponseDTO](t, resp)
	require.True(t, first.Changed)
	require.Len(t, first.Appended, 1)
	assert.Equal(t, "reminder", first.Appended[0].Type)
	assert.Equal(t, "Jane Doe", first.Appended[0].Tenant)

	resp = srv.do(t, http.MethodPost, "/api/recompute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[RecomputeResponseDTO](t, resp)
	assert.False(t, second.Changed)
	assert.Empty(t, second.Appended)
}

func TestAPI_MutationsTriggerReminderPass(t *testing.T) {
	// Creating an unpaid tenant inside the window is itself a change, so
	// the reminder lands without an explicit recompute call.
	srv := newTestServer(t, june(3))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/reminders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reminders := decode[[]ReminderDTO](t, resp)
	require.Len(t, reminders, 1)
	assert.Equal(t, "reminder", reminders[0].Type)
	assert.Equal(t, "Hi Jane, just a friendly reminder that your rent of $950.00 is due by the 5th.", reminders[0].Message)
}

func TestAPI_ManualSendBypassesDedup(t *testing.T) {
	// GIVEN: a paid tenant (no automatic reminder possible)
	// WHEN: posting two manual sends
	// THEN: both are logged

	srv := newTestServer(t, june(3))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")
	resp := srv.do(t, http.MethodPost, "/api/tenants/Jane%20Doe/payments", RecordPaymentRequest{Amount: "950"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp := srv.do(t, http.MethodPost, "/api/tenants/Jane%20Doe/reminders",
			ManualSendRequest{Message: fmt.Sprintf("note %d", i)})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp = srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/reminders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reminders := decode[[]ReminderDTO](t, resp)
	require.Len(t, reminders, 2)
	for _, rec := range reminders {
		assert.Equal(t, "manual", rec.Type)
	}
}

func TestAPI_ManualSendEmptyMessageRejected(t *testing.T) {
	srv := newTestServer(t, june(3))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodPost, "/api/tenants/Jane%20Doe/reminders", ManualSendRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DASHBOARD AND SETTINGS
// =============================================================================

func TestAPI_LedgerSummary(t *testing.T) {
	srv := newTestServer(t, june(3))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")
	srv.createTenant(t, "Marcus Webb", "555-0102", "1200")

	for _, amount := range []string{"950", "1200"} {
		name := "Jane%20Doe"
		if amount == "1200" {
			name = "Marcus%20Webb"
		}
		resp := srv.do(t, http.MethodPost, "/api/tenants/"+name+"/payments", RecordPaymentRequest{Amount: amount})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := srv.do(t, http.MethodGet, "/api/ledger/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[LedgerSummaryDTO](t, resp)
	assert.Equal(t, "2150.00", summary.TotalRevenue)
	assert.Equal(t, 2, summary.TotalTransactions)
	require.Len(t, summary.Recent, 2)
	assert.NotEmpty(t, summary.Recent[0].Tenant)
}

func TestAPI_WindowUpdateChangesStatus(t *testing.T) {
	// GIVEN: day 8, outside the default 1-5 window (overdue)
	// WHEN: widening the window to 1-10
	// THEN: the same tenant reads as due

	srv := newTestServer(t, june(8))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")

	resp := srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "overdue", decode[StatusDTO](t, resp).Status)

	resp = srv.do(t, http.MethodPut, "/api/settings/window", map[string]int{"start_day": 1, "end_day": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/tenants/Jane%20Doe/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "due", decode[StatusDTO](t, resp).Status)
}

func TestAPI_InvalidWindowRejected(t *testing.T) {
	srv := newTestServer(t, june(3))
	resp := srv.do(t, http.MethodPut, "/api/settings/window", map[string]int{"start_day": 9, "end_day": 2})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_TemplatesRoundTrip(t *testing.T) {
	srv := newTestServer(t, june(3))

	resp := srv.do(t, http.MethodPut, "/api/settings/templates", map[string]string{
		"reminder": "Rent due, {tenant_name}!",
		"late":     "Rent overdue, {tenant_name}!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/settings/templates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	templates := decode[map[string]string](t, resp)
	assert.Equal(t, "Rent due, {tenant_name}!", templates["reminder"])
	assert.Equal(t, "Rent overdue, {tenant_name}!", templates["late"])
}

func TestAPI_ReminderLogFlattensAllTenants(t *testing.T) {
	srv := newTestServer(t, june(10))
	srv.createTenant(t, "Jane Doe", "555-0101", "950")
	srv.createTenant(t, "Marcus Webb", "555-0102", "1200")

	resp := srv.do(t, http.MethodPost, "/api/recompute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/reminders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	log := decode[[]ReminderDTO](t, resp)
	require.Len(t, log, 2)
	for _, rec := range log {
		assert.Equal(t, "late", rec.Type)
		assert.NotEmpty(t, rec.Tenant)
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestAPI_ListAndLoadScenario(t *testing.T) {
	srv := newTestServer(t, june(3))

	resp := srv.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scenarios := decode[[]ScenarioDTO](t, resp)
	require.NotEmpty(t, scenarios)

	resp = srv.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ID: scenarios[0].ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.do(t, http.MethodGet, "/api/tenants", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tenants := decode[[]TenantDTO](t, resp)
	assert.NotEmpty(t, tenants)
}

func TestAPI_LoadUnknownScenario(t *testing.T) {
	srv := newTestServer(t, june(3))
	resp := srv.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ID: "no-such-scenario"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
