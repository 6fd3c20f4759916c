/*
Package factory provides JSON to Go settings conversion.

PURPOSE:
  Converts JSON settings payloads into validated rent.BillingWindow and
  rent.SmsTemplateSet values. This enables configuration without code
  changes - the admin UI submits JSON, and the factory normalizes it,
  applies defaults, and rejects invalid windows before anything persists.

JSON SCHEMA:
  {
    "window": {"start_day": 1, "end_day": 5},
    "templates": {
      "reminder": "Hi {tenant_name}, rent of {rent_amount} is due by the {due_date_end}th.",
      "late": "Hi {tenant_name}, your rent of {rent_amount} is overdue."
    }
  }

KEY FEATURES:
  - Validates the window invariant (1 <= start <= end <= 31)
  - Omitted fields fall back to the stock defaults
  - Blank templates fall back to the stock wording

USAGE:
  f := factory.NewSettingsFactory()
  window, err := f.ParseWindow(body)
  templates, err := f.ParseTemplates(body)

SEE ALSO:
  - rent/types.go: BillingWindow, SmsTemplateSet, defaults
  - api/handlers.go: Settings endpoints
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/hearth/rent-engine/rent"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// WindowJSON is the JSON representation of a billing window.
type WindowJSON struct {
	StartDay *int `json:"start_day"`
	EndDay   *int `json:"end_day"`
}

// TemplatesJSON is the JSON representation of the SMS template set.
type TemplatesJSON struct {
	Reminder string `json:"reminder"`
	Late     string `json:"late"`
}

// SettingsJSON is the combined settings payload.
type SettingsJSON struct {
	Window    *WindowJSON    `json:"window,omitempty"`
	Templates *TemplatesJSON `json:"templates,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

type SettingsFactory struct{}

func NewSettingsFactory() *SettingsFactory {
	return &SettingsFactory{}
}

// ParseWindow decodes and validates a billing window payload. Omitted days
// fall back to the current defaults.
func (f *SettingsFactory) ParseWindow(data []byte) (rent.BillingWindow, error) {
	var raw WindowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return rent.BillingWindow{}, fmt.Errorf("invalid window payload: %w", err)
	}
	return f.BuildWindow(raw)
}

// BuildWindow applies defaults and the window invariant.
func (f *SettingsFactory) BuildWindow(raw WindowJSON) (rent.BillingWindow, error) {
	window := rent.DefaultWindow()
	if raw.StartDay != nil {
		window.StartDay = *raw.StartDay
	}
	if raw.EndDay != nil {
		window.EndDay = *raw.EndDay
	}
	if err := window.Validate(); err != nil {
		return rent.BillingWindow{}, fmt.Errorf("%w: start %d, end %d", err, window.StartDay, window.EndDay)
	}
	return window, nil
}

// ParseTemplates decodes a template-set payload. Blank templates fall back
// to the stock wording so the engine always has something to render.
func (f *SettingsFactory) ParseTemplates(data []byte) (rent.SmsTemplateSet, error) {
	var raw TemplatesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return rent.SmsTemplateSet{}, fmt.Errorf("invalid templates payload: %w", err)
	}
	return f.BuildTemplates(raw), nil
}

// BuildTemplates applies defaults for blank fields.
func (f *SettingsFactory) BuildTemplates(raw TemplatesJSON) rent.SmsTemplateSet {
	templates := rent.DefaultTemplates()
	if raw.Reminder != "" {
		templates.Reminder = raw.Reminder
	}
	if raw.Late != "" {
		templates.Late = raw.Late
	}
	return templates
}
