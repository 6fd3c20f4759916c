/*
scenarios.go - Demo scenario seeding

PURPOSE:
  Loads pre-built tenant rosters and payment histories so the dashboard has
  something to show without manual data entry. Scenarios go through the
  same Directory operations as the real API, so everything they create is
  validated and triggers the reminder engine the normal way.

SCENARIOS:
  quiet-building:  Three tenants, everyone paid this month
  rent-week:       Mixed states - paid, due, and a partial payment
  overdue-demo:    Unpaid tenants past the window, late notices pending

SEE ALSO:
  - handlers.go: Core handlers
  - rent/directory.go: The operations scenarios drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearth/rent-engine/rent"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenarioTenant struct {
	name    string
	address string
	phone   string
	rent    string
	// payments are amounts credited to the current month, recorded on the
	// window's start day.
	payments []string
}

type scenario struct {
	id          string
	name        string
	description string
	tenants     []scenarioTenant
}

var scenarios = []scenario{
	{
		id:          "quiet-building",
		name:        "Quiet Building",
		description: "Three tenants, everyone paid this month.",
		tenants: []scenarioTenant{
			{"Jane Doe", "12 Elm St, Apt 1", "555-0101", "950.00", []string{"950.00"}},
			{"Marcus Webb", "12 Elm St, Apt 2", "555-0102", "1200.00", []string{"1200.00"}},
			{"Priya Nair", "12 Elm St, Apt 3", "555-0103", "1050.00", []string{"1050.00"}},
		},
	},
	{
		id:          "rent-week",
		name:        "Rent Week",
		description: "Mixed states: one paid, one unpaid, one partial payment.",
		tenants: []scenarioTenant{
			{"Jane Doe", "12 Elm St, Apt 1", "555-0101", "950.00", []string{"950.00"}},
			{"Marcus Webb", "12 Elm St, Apt 2", "555-0102", "1200.00", nil},
			{"Priya Nair", "12 Elm St, Apt 3", "555-0103", "1050.00", []string{"500.00"}},
		},
	},
	{
		id:          "overdue-demo",
		name:        "Overdue Demo",
		description: "Unpaid tenants; past the window they collect late notices.",
		tenants: []scenarioTenant{
			{"Marcus Webb", "12 Elm St, Apt 2", "555-0102", "1200.00", nil},
			{"Priya Nair", "12 Elm St, Apt 3", "555-0103", "1050.00", nil},
		},
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.id, Name: s.name, Description: s.description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario seeds the selected scenario's tenants and payments.
// Existing tenants with the same names are left in place; collisions are
// skipped rather than treated as failures so scenarios are re-loadable.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, s := range scenarios {
		if s.id != req.ID {
			continue
		}
		if err := h.seedScenario(r.Context(), s); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
		h.Trigger.Notify(r.Context())
		writeJSON(w, http.StatusOK, ScenarioDTO{ID: s.id, Name: s.name, Description: s.description})
		return
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario %q", req.ID), nil)
}

func (h *Handler) seedScenario(ctx context.Context, s scenario) error {
	window, err := h.Store.Window(ctx)
	if err != nil {
		return err
	}

	now := h.now()
	// Payments land on the window's start day of the current month so the
	// seeded history reads as on-time.
	paidAt := time.Date(now.Year(), now.Month(), window.StartDay, 9, 0, 0, 0, now.Location())

	for _, st := range s.tenants {
		rentAmount, err := decimal.NewFromString(st.rent)
		if err != nil {
			return err
		}

		_, err = h.Directory.CreateTenant(ctx, rent.TenantInput{
			Name:       st.name,
			Address:    st.address,
			Phone:      st.phone,
			RentAmount: rentAmount,
		})
		if err != nil && !rent.IsClientError(err) {
			return err
		}

		for _, amount := range st.payments {
			paid, err := decimal.NewFromString(amount)
			if err != nil {
				return err
			}
			if _, err := h.Directory.RecordPayment(ctx, st.name, paid, paidAt); err != nil {
				return err
			}
		}
	}
	return nil
}
