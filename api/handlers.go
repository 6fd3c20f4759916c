/*
handlers.go - HTTP API handlers for the rent reminder system

PURPOSE:
  Exposes the rent engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Tenants:
    GET    /api/tenants                    List all tenants
    POST   /api/tenants                    Create tenant
    GET    /api/tenants/{name}             Get tenant details
    PUT    /api/tenants/{name}             Update tenant (rename migrates records)
    DELETE /api/tenants/{name}             Delete tenant (cascades)
    GET    /api/tenants/{name}/status      Billing-cycle status
    GET    /api/tenants/{name}/stats       All-time totals and on-time/late split
    GET    /api/tenants/{name}/payments    Payment history
    POST   /api/tenants/{name}/payments    Record a payment
    GET    /api/tenants/{name}/reminders   Reminder history
    POST   /api/tenants/{name}/reminders   Manual send (bypasses dedup)

  Dashboard:
    GET    /api/ledger/summary             Revenue, count, recent feed
    GET    /api/reminders                  Flattened reminder log

  Settings:
    GET/PUT /api/settings/window           Billing window
    GET/PUT /api/settings/templates        SMS templates

  Engine:
    POST   /api/recompute                  Run a reminder pass now

RECOMPUTE ON CHANGE:
  Every mutating handler notifies the trigger after persisting, mirroring
  the product rule that reminder state is re-derived whenever tenants, the
  ledger, the window, or the templates change.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Tenant not found (mutations only; reads return empty collections)
  - 409: Name collision
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - trigger.go: Recompute driver
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hearth/rent-engine/factory"
	"github.com/hearth/rent-engine/rent"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     rent.Store
	Directory *rent.Directory
	Settings  *factory.SettingsFactory
	Trigger   *Trigger

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// NewHandler creates a handler over the given store.
func NewHandler(store rent.Store) *Handler {
	h := &Handler{
		Store:     store,
		Directory: rent.NewDirectory(store),
		Settings:  factory.NewSettingsFactory(),
		now:       time.Now,
	}
	h.Trigger = NewTrigger(store, h.now)
	return h
}

// =============================================================================
// TENANT HANDLERS
// =============================================================================

// ListTenants returns all tenants.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Store.ListTenants(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tenants", err)
		return
	}

	dtos := make([]TenantDTO, len(tenants))
	for i, t := range tenants {
		dtos[i] = tenantDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTenant returns a single tenant by name (case-insensitive).
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	tenant, err := h.Store.GetTenant(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tenant", err)
		return
	}
	if tenant == nil {
		writeError(w, http.StatusNotFound, "Tenant not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, tenantDTO(*tenant))
}

// CreateTenant registers a new tenant.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req TenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := tenantInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rent amount", err)
		return
	}

	tenant, err := h.Directory.CreateTenant(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Trigger.Notify(r.Context())
	writeJSON(w, http.StatusCreated, tenantDTO(*tenant))
}

// UpdateTenant applies a patch; renames migrate all dependent records.
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req TenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := tenantInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rent amount", err)
		return
	}

	tenant, err := h.Directory.UpdateTenant(r.Context(), name, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Trigger.Notify(r.Context())
	writeJSON(w, http.StatusOK, tenantDTO(*tenant))
}

// DeleteTenant removes a tenant and their records.
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Directory.DeleteTenant(r.Context(), name); err != nil {
		writeDomainError(w, err)
		return
	}

	h.Trigger.Notify(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus classifies the tenant's current billing-cycle state.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	tenant, err := h.Store.GetTenant(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tenant", err)
		return
	}
	if tenant == nil {
		writeError(w, http.StatusNotFound, "Tenant not found", nil)
		return
	}

	payments, err := h.Store.LoadPayments(r.Context(), tenant.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}
	window, err := h.Store.Window(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load window", err)
		return
	}

	now := h.now()
	status := rent.Classify(*tenant, payments, window, now)
	writeJSON(w, http.StatusOK, StatusDTO{
		Tenant: tenant.Name,
		Status: string(status),
		AsOf:   now.Format(time.RFC3339),
	})
}

// GetStats returns the tenant's all-time totals against the current window.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Absence is a valid initial state: unknown names yield zeroed stats.
	ledger, err := h.Store.LoadLedger(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}
	window, err := h.Store.Window(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load window", err)
		return
	}

	key := name
	if tenant, err := h.Store.GetTenant(r.Context(), name); err == nil && tenant != nil {
		key = tenant.Name
	}

	stats := rent.StatsFor(ledger, key, window)
	writeJSON(w, http.StatusOK, TenantStatsDTO{
		Tenant:       key,
		TotalPaid:    stats.TotalPaid.StringFixed(2),
		PaymentCount: stats.PaymentCount,
		OnTimeCount:  stats.OnTimeCount,
		LateCount:    stats.LateCount,
	})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns a tenant's payment history.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	payments, err := h.Store.LoadPayments(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = paymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordPayment appends a payment to the ledger.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	when := h.now()
	if req.Date != "" {
		if when, err = time.Parse(time.RFC3339, req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use RFC3339)", err)
			return
		}
	}

	record, err := h.Directory.RecordPayment(r.Context(), name, amount, when)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Trigger.Notify(r.Context())
	writeJSON(w, http.StatusCreated, paymentDTO(*record))
}

// =============================================================================
// REMINDER HANDLERS
// =============================================================================

// ListReminders returns a tenant's reminder history.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reminders, err := h.Store.LoadReminders(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reminders", err)
		return
	}

	dtos := make([]ReminderDTO, len(reminders))
	for i, rec := range reminders {
		dtos[i] = reminderDTO("", rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SendManual logs a manual notification, bypassing the engine's dedup.
func (h *Handler) SendManual(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ManualSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Directory.SendManual(r.Context(), name, req.Message, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reminderDTO(name, *record))
}

// ReminderLog returns the flattened reminder log across all tenants,
// most recent first.
func (h *Handler) ReminderLog(w http.ResponseWriter, r *http.Request) {
	history, err := h.Store.LoadReminderHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reminders", err)
		return
	}

	var dtos []ReminderDTO
	for tenant, records := range history {
		for _, rec := range records {
			dtos = append(dtos, reminderDTO(tenant, rec))
		}
	}
	sort.SliceStable(dtos, func(i, j int) bool { return dtos[i].Date > dtos[j].Date })
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// LedgerSummary returns global revenue, count, and the recent feed.
func (h *Handler) LedgerSummary(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.Store.LoadLedger(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	summary := rent.Summarize(ledger)
	recent := rent.RecentTransactions(ledger, rent.DefaultRecentLimit)

	dto := LedgerSummaryDTO{
		TotalRevenue:      summary.TotalRevenue.StringFixed(2),
		TotalTransactions: summary.TotalTransactions,
		Recent:            make([]PaymentDTO, len(recent)),
	}
	for i, tp := range recent {
		dto.Recent[i] = paymentDTO(tp.Payment)
		dto.Recent[i].Tenant = tp.TenantName
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetWindow returns the billing window.
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	window, err := h.Store.Window(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load window", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"start_day": window.StartDay,
		"end_day":   window.EndDay,
	})
}

// PutWindow replaces the billing window.
func (h *Handler) PutWindow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	window, err := h.Settings.ParseWindow(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid billing window", err)
		return
	}

	if err := h.Store.SaveWindow(r.Context(), window); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save window", err)
		return
	}

	h.Trigger.Notify(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{
		"start_day": window.StartDay,
		"end_day":   window.EndDay,
	})
}

// GetTemplates returns the SMS template set.
func (h *Handler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Store.Templates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load templates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"reminder": templates.Reminder,
		"late":     templates.Late,
	})
}

// PutTemplates replaces the SMS template set.
func (h *Handler) PutTemplates(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	templates, err := h.Settings.ParseTemplates(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid templates", err)
		return
	}

	if err := h.Store.SaveTemplates(r.Context(), templates); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save templates", err)
		return
	}

	h.Trigger.Notify(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"reminder": templates.Reminder,
		"late":     templates.Late,
	})
}

// =============================================================================
// ENGINE HANDLERS
// =============================================================================

// Recompute runs a reminder pass immediately and reports what it appended.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	result, err := h.Trigger.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recompute failed", err)
		return
	}

	dto := RecomputeResponseDTO{Changed: result.Changed, Appended: []ReminderDTO{}}
	for _, a := range result.Appended {
		dto.Appended = append(dto.Appended, reminderDTO(a.TenantName, a.Record))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func tenantInput(req TenantRequest) (rent.TenantInput, error) {
	amount := decimal.Zero
	if req.RentAmount != "" {
		var err error
		if amount, err = decimal.NewFromString(req.RentAmount); err != nil {
			return rent.TenantInput{}, err
		}
	}

	input := rent.TenantInput{
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		RentAmount: amount,
	}
	for _, st := range req.SubTenants {
		input.SubTenants = append(input.SubTenants, rent.SubTenant{
			ID:           st.ID,
			Name:         st.Name,
			LeaseDetails: st.LeaseDetails,
		})
	}
	return input, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rent.ErrDuplicateTenantName):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case rent.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Tenant not found", nil)
	case rent.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
