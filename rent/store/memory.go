// Package store provides rent.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/hearth/rent-engine/rent"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	tenants   []rent.Tenant
	payments  map[string][]rent.PaymentRecord
	reminders map[string][]rent.ReminderRecord
	window    rent.BillingWindow
	templates rent.SmsTemplateSet
}

func NewMemory() *Memory {
	return &Memory{
		payments:  make(map[string][]rent.PaymentRecord),
		reminders: make(map[string][]rent.ReminderRecord),
		window:    rent.DefaultWindow(),
		templates: rent.DefaultTemplates(),
	}
}

// =============================================================================
// TENANTS
// =============================================================================

func (m *Memory) ListTenants(_ context.Context) ([]rent.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rent.Tenant, len(m.tenants))
	copy(result, m.tenants)
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) GetTenant(_ context.Context, name string) (*rent.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(name); i >= 0 {
		t := m.tenants[i]
		return &t, nil
	}
	return nil, nil
}

func (m *Memory) SaveTenant(_ context.Context, t rent.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tenants = append(m.tenants, t)
	// A tenant always has a ledger entry, even before their first payment.
	if _, ok := m.payments[t.Name]; !ok {
		m.payments[t.Name] = []rent.PaymentRecord{}
	}
	return nil
}

func (m *Memory) UpdateTenant(_ context.Context, originalName string, t rent.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(originalName)
	if i < 0 {
		return rent.ErrTenantNotFound
	}
	oldName := m.tenants[i].Name
	m.tenants[i] = t

	// Migrate dependent records when the key changed.
	if oldName != t.Name {
		if records, ok := m.payments[oldName]; ok {
			m.payments[t.Name] = records
			delete(m.payments, oldName)
		}
		if records, ok := m.reminders[oldName]; ok {
			m.reminders[t.Name] = records
			delete(m.reminders, oldName)
		}
	}
	return nil
}

func (m *Memory) DeleteTenant(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(name)
	if i < 0 {
		return rent.ErrTenantNotFound
	}
	key := m.tenants[i].Name
	m.tenants = append(m.tenants[:i], m.tenants[i+1:]...)
	delete(m.payments, key)
	delete(m.reminders, key)
	return nil
}

// indexOf finds a tenant by case-insensitive name. Caller holds the lock.
func (m *Memory) indexOf(name string) int {
	key := rent.NameKey(name)
	for i, t := range m.tenants {
		if rent.NameKey(t.Name) == key {
			return i
		}
	}
	return -1
}

// =============================================================================
// PAYMENTS (append-only)
// =============================================================================

func (m *Memory) AppendPayment(_ context.Context, tenantName string, p rent.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payments[tenantName] = append(m.payments[tenantName], p)
	return nil
}

func (m *Memory) LoadPayments(_ context.Context, tenantName string) ([]rent.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rent.PaymentRecord, len(m.payments[tenantName]))
	copy(result, m.payments[tenantName])
	return result, nil
}

func (m *Memory) LoadLedger(_ context.Context) (map[string][]rent.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]rent.PaymentRecord, len(m.payments))
	for name, records := range m.payments {
		copied := make([]rent.PaymentRecord, len(records))
		copy(copied, records)
		result[name] = copied
	}
	return result, nil
}

// =============================================================================
// REMINDERS (append-only)
// =============================================================================

func (m *Memory) AppendReminder(_ context.Context, tenantName string, r rent.ReminderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reminders[tenantName] = append(m.reminders[tenantName], r)
	return nil
}

func (m *Memory) LoadReminders(_ context.Context, tenantName string) ([]rent.ReminderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rent.ReminderRecord, len(m.reminders[tenantName]))
	copy(result, m.reminders[tenantName])
	return result, nil
}

func (m *Memory) LoadReminderHistory(_ context.Context) (map[string][]rent.ReminderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]rent.ReminderRecord, len(m.reminders))
	for name, records := range m.reminders {
		copied := make([]rent.ReminderRecord, len(records))
		copy(copied, records)
		result[name] = copied
	}
	return result, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) Window(_ context.Context) (rent.BillingWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window, nil
}

func (m *Memory) SaveWindow(_ context.Context, w rent.BillingWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = w
	return nil
}

func (m *Memory) Templates(_ context.Context) (rent.SmsTemplateSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates, nil
}

func (m *Memory) SaveTemplates(_ context.Context, t rent.SmsTemplateSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = t
	return nil
}
