/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation happens in the domain layer (rent.Directory, factory), not in
  DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/settings.go: Settings payload schema
*/
package api

import (
	"time"

	"github.com/hearth/rent-engine/rent"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TenantDTO represents a tenant in API responses.
type TenantDTO struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	Phone      string         `json:"phone"`
	Role       string         `json:"role"`
	RentAmount string         `json:"rent_amount"`
	SubTenants []SubTenantDTO `json:"sub_tenants,omitempty"`
}

// SubTenantDTO represents a sub-tenant lease entry.
type SubTenantDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LeaseDetails string `json:"lease_details"`
}

// TenantRequest is the create/update payload for a tenant.
type TenantRequest struct {
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	Phone      string         `json:"phone"`
	RentAmount string         `json:"rent_amount"`
	SubTenants []SubTenantDTO `json:"sub_tenants,omitempty"`
}

// PaymentDTO represents a ledger entry in API responses. Tenant is only
// set in cross-tenant views like the recent-transactions feed.
type PaymentDTO struct {
	ID     string `json:"id"`
	Tenant string `json:"tenant,omitempty"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
}

// RecordPaymentRequest is the payment event payload.
type RecordPaymentRequest struct {
	Amount string `json:"amount"`
	// Date is optional RFC3339; empty means now.
	Date string `json:"date,omitempty"`
}

// StatusDTO is the billing-cycle status response.
type StatusDTO struct {
	Tenant string `json:"tenant"`
	Status string `json:"status"`
	AsOf   string `json:"as_of"`
}

// TenantStatsDTO is the per-tenant all-time breakdown.
type TenantStatsDTO struct {
	Tenant       string `json:"tenant"`
	TotalPaid    string `json:"total_paid"`
	PaymentCount int    `json:"payment_count"`
	OnTimeCount  int    `json:"on_time_count"`
	LateCount    int    `json:"late_count"`
}

// LedgerSummaryDTO is the global dashboard view.
type LedgerSummaryDTO struct {
	TotalRevenue      string       `json:"total_revenue"`
	TotalTransactions int          `json:"total_transactions"`
	Recent            []PaymentDTO `json:"recent_transactions"`
}

// ReminderDTO represents a logged notification.
type ReminderDTO struct {
	Tenant  string `json:"tenant,omitempty"`
	Date    string `json:"date"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ManualSendRequest is the manual notification payload.
type ManualSendRequest struct {
	Message string `json:"message"`
}

// RecomputeResponseDTO reports what a reminder pass did.
type RecomputeResponseDTO struct {
	Changed  bool          `json:"changed"`
	Appended []ReminderDTO `json:"appended"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func tenantDTO(t rent.Tenant) TenantDTO {
	dto := TenantDTO{
		ID:         t.ID,
		Name:       t.Name,
		Address:    t.Address,
		Phone:      t.Phone,
		Role:       string(t.Role),
		RentAmount: t.RentAmount.StringFixed(2),
	}
	for _, st := range t.SubTenants {
		dto.SubTenants = append(dto.SubTenants, SubTenantDTO{
			ID:           st.ID,
			Name:         st.Name,
			LeaseDetails: st.LeaseDetails,
		})
	}
	return dto
}

func paymentDTO(p rent.PaymentRecord) PaymentDTO {
	return PaymentDTO{
		ID:     p.ID,
		Date:   p.Date.Format(time.RFC3339),
		Amount: p.Amount.StringFixed(2),
		Month:  int(p.Month),
		Year:   p.Year,
	}
}

func reminderDTO(tenant string, r rent.ReminderRecord) ReminderDTO {
	return ReminderDTO{
		Tenant:  tenant,
		Date:    r.Date.Format(time.RFC3339),
		Type:    string(r.Type),
		Message: r.Message,
	}
}
