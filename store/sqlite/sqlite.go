/*
Package sqlite provides a SQLite-backed implementation of rent.Store.

PURPOSE:
  Durable storage for tenants, the payment ledger, the reminder history,
  and the shared settings (billing window, SMS templates). In production
  the same patterns apply to PostgreSQL - only minor dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements touch individual payment/reminder rows
  - The only destructive operation is tenant deletion, which cascades
  - Insertion order is preserved via rowid; the recent-transactions view
    depends on it for stable tie-breaking

RENAME MIGRATION:
  Renaming a tenant rewrites the tenants row and re-keys every dependent
  payment and reminder row inside one database transaction. Either every
  collection moves to the new key or none do.

KEY TABLES:
  tenants:     One row per tenant, name unique COLLATE NOCASE
  sub_tenants: Lease occupants, keyed by tenant id (rename-proof)
  payments:    Immutable ledger, keyed by tenant name
  reminders:   Immutable notification log, keyed by tenant name
  settings:    Key/value rows for window days and template bodies

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer, plus foreign keys enabled for the cascade.

USAGE:
  store, err := sqlite.New("./data/rent.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - rent/store.go: Interface definition
  - rent/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/hearth/rent-engine/rent"
)

// Store implements rent.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'tenant',
		rent_amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sub_tenants (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		lease_details TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_sub_tenants_tenant
		ON sub_tenants(tenant_id);

	-- Payments (append-only ledger). rowid preserves insertion order,
	-- which the recent-transactions feed relies on for tie-breaking.
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		tenant_name TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		amount TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_tenant
		ON payments(tenant_name);
	CREATE INDEX IF NOT EXISTS idx_payments_cycle
		ON payments(tenant_name, year, month);

	-- Reminders (append-only notification log)
	CREATE TABLE IF NOT EXISTS reminders (
		tenant_name TEXT NOT NULL,
		sent_at TEXT NOT NULL,
		reminder_type TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_tenant
		ON reminders(tenant_name);

	-- Shared settings (billing window, SMS templates)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TENANTS
// =============================================================================

func (s *Store) ListTenants(ctx context.Context) ([]rent.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, phone, role, rent_amount
		FROM tenants ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []rent.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tenants {
		subs, err := s.loadSubTenants(ctx, tenants[i].ID)
		if err != nil {
			return nil, err
		}
		tenants[i].SubTenants = subs
	}
	return tenants, nil
}

func (s *Store) GetTenant(ctx context.Context, name string) (*rent.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, phone, role, rent_amount
		FROM tenants WHERE name = ? COLLATE NOCASE`, name)

	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	subs, err := s.loadSubTenants(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.SubTenants = subs
	return &t, nil
}

func (s *Store) SaveTenant(ctx context.Context, t rent.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tenants (id, name, address, phone, role, rent_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Address, t.Phone, string(t.Role),
		t.RentAmount.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if err := replaceSubTenants(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTenant rewrites the tenant row and, when the name changed,
// re-keys every payment and reminder row in the same transaction.
func (s *Store) UpdateTenant(ctx context.Context, originalName string, t rent.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE tenants SET name = ?, address = ?, phone = ?, rent_amount = ?
		WHERE name = ? COLLATE NOCASE`,
		t.Name, t.Address, t.Phone, t.RentAmount.String(), originalName)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return rent.ErrTenantNotFound
	}

	if originalName != t.Name {
		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET tenant_name = ? WHERE tenant_name = ? COLLATE NOCASE`,
			t.Name, originalName); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE reminders SET tenant_name = ? WHERE tenant_name = ? COLLATE NOCASE`,
			t.Name, originalName); err != nil {
			return err
		}
	}

	if err := replaceSubTenants(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteTenant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM tenants WHERE name = ? COLLATE NOCASE`, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return rent.ErrTenantNotFound
	}

	// Cascade: ledger and reminder history go with the tenant.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payments WHERE tenant_name = ? COLLATE NOCASE`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reminders WHERE tenant_name = ? COLLATE NOCASE`, name); err != nil {
		return err
	}
	return tx.Commit()
}

func scanTenant(row interface{ Scan(...any) error }) (rent.Tenant, error) {
	var t rent.Tenant
	var role, amount string
	if err := row.Scan(&t.ID, &t.Name, &t.Address, &t.Phone, &role, &amount); err != nil {
		return rent.Tenant{}, err
	}
	t.Role = rent.Role(role)
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return rent.Tenant{}, fmt.Errorf("corrupt rent_amount %q: %w", amount, err)
	}
	t.RentAmount = parsed
	return t, nil
}

func (s *Store) loadSubTenants(ctx context.Context, tenantID string) ([]rent.SubTenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lease_details FROM sub_tenants
		WHERE tenant_id = ? ORDER BY rowid`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []rent.SubTenant
	for rows.Next() {
		var st rent.SubTenant
		if err := rows.Scan(&st.ID, &st.Name, &st.LeaseDetails); err != nil {
			return nil, err
		}
		subs = append(subs, st)
	}
	return subs, rows.Err()
}

// replaceSubTenants rewrites the sub-tenant list for a tenant. Sub-tenants
// are admin-edited lease metadata, not ledger records, so replacement is fine.
func replaceSubTenants(ctx context.Context, tx *sql.Tx, t rent.Tenant) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sub_tenants WHERE tenant_id = ?`, t.ID); err != nil {
		return err
	}
	for _, st := range t.SubTenants {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sub_tenants (id, tenant_id, name, lease_details)
			VALUES (?, ?, ?, ?)`,
			st.ID, t.ID, st.Name, st.LeaseDetails); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// PAYMENTS (append-only)
// =============================================================================

func (s *Store) AppendPayment(ctx context.Context, tenantName string, p rent.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, tenant_name, paid_at, amount, month, year)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, tenantName, p.Date.UTC().Format(time.RFC3339Nano),
		p.Amount.String(), int(p.Month), p.Year)
	return err
}

func (s *Store) LoadPayments(ctx context.Context, tenantName string) ([]rent.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, paid_at, amount, month, year FROM payments
		WHERE tenant_name = ? COLLATE NOCASE ORDER BY rowid`, tenantName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (s *Store) LoadLedger(ctx context.Context) (map[string][]rent.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := make(map[string][]rent.PaymentRecord)

	// Every tenant appears in the ledger, even with zero payments.
	names, err := s.db.QueryContext(ctx, `SELECT name FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer names.Close()
	for names.Next() {
		var name string
		if err := names.Scan(&name); err != nil {
			return nil, err
		}
		ledger[name] = []rent.PaymentRecord{}
	}
	if err := names.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_name, id, paid_at, amount, month, year
		FROM payments ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var p rent.PaymentRecord
		var paidAt, amount string
		var month int
		if err := rows.Scan(&name, &p.ID, &paidAt, &amount, &month, &p.Year); err != nil {
			return nil, err
		}
		if p.Date, err = time.Parse(time.RFC3339Nano, paidAt); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		p.Month = time.Month(month)
		ledger[name] = append(ledger[name], p)
	}
	return ledger, rows.Err()
}

func scanPayments(rows *sql.Rows) ([]rent.PaymentRecord, error) {
	var payments []rent.PaymentRecord
	for rows.Next() {
		var p rent.PaymentRecord
		var paidAt, amount string
		var month int
		if err := rows.Scan(&p.ID, &paidAt, &amount, &month, &p.Year); err != nil {
			return nil, err
		}
		var err error
		if p.Date, err = time.Parse(time.RFC3339Nano, paidAt); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		p.Month = time.Month(month)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// REMINDERS (append-only)
// =============================================================================

func (s *Store) AppendReminder(ctx context.Context, tenantName string, r rent.ReminderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (tenant_name, sent_at, reminder_type, message)
		VALUES (?, ?, ?, ?)`,
		tenantName, r.Date.UTC().Format(time.RFC3339Nano), string(r.Type), r.Message)
	return err
}

func (s *Store) LoadReminders(ctx context.Context, tenantName string) ([]rent.ReminderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT sent_at, reminder_type, message FROM reminders
		WHERE tenant_name = ? COLLATE NOCASE ORDER BY rowid`, tenantName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []rent.ReminderRecord
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Store) LoadReminderHistory(ctx context.Context) (map[string][]rent.ReminderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_name, sent_at, reminder_type, message
		FROM reminders ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make(map[string][]rent.ReminderRecord)
	for rows.Next() {
		var name, sentAt, kind, message string
		if err := rows.Scan(&name, &sentAt, &kind, &message); err != nil {
			return nil, err
		}
		date, err := time.Parse(time.RFC3339Nano, sentAt)
		if err != nil {
			return nil, err
		}
		history[name] = append(history[name], rent.ReminderRecord{
			Date:    date,
			Type:    rent.ReminderType(kind),
			Message: message,
		})
	}
	return history, rows.Err()
}

func scanReminder(rows *sql.Rows) (rent.ReminderRecord, error) {
	var sentAt, kind, message string
	if err := rows.Scan(&sentAt, &kind, &message); err != nil {
		return rent.ReminderRecord{}, err
	}
	date, err := time.Parse(time.RFC3339Nano, sentAt)
	if err != nil {
		return rent.ReminderRecord{}, err
	}
	return rent.ReminderRecord{Date: date, Type: rent.ReminderType(kind), Message: message}, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

const (
	keyWindowStart      = "window_start_day"
	keyWindowEnd        = "window_end_day"
	keyTemplateReminder = "template_reminder"
	keyTemplateLate     = "template_late"
)

func (s *Store) Window(ctx context.Context) (rent.BillingWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := rent.DefaultWindow()
	if v, ok, err := s.setting(ctx, keyWindowStart); err != nil {
		return rent.BillingWindow{}, err
	} else if ok {
		if window.StartDay, err = strconv.Atoi(v); err != nil {
			return rent.BillingWindow{}, err
		}
	}
	if v, ok, err := s.setting(ctx, keyWindowEnd); err != nil {
		return rent.BillingWindow{}, err
	} else if ok {
		if window.EndDay, err = strconv.Atoi(v); err != nil {
			return rent.BillingWindow{}, err
		}
	}
	return window, nil
}

func (s *Store) SaveWindow(ctx context.Context, w rent.BillingWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveSetting(ctx, keyWindowStart, strconv.Itoa(w.StartDay)); err != nil {
		return err
	}
	return s.saveSetting(ctx, keyWindowEnd, strconv.Itoa(w.EndDay))
}

func (s *Store) Templates(ctx context.Context) (rent.SmsTemplateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	templates := rent.DefaultTemplates()
	if v, ok, err := s.setting(ctx, keyTemplateReminder); err != nil {
		return rent.SmsTemplateSet{}, err
	} else if ok {
		templates.Reminder = v
	}
	if v, ok, err := s.setting(ctx, keyTemplateLate); err != nil {
		return rent.SmsTemplateSet{}, err
	} else if ok {
		templates.Late = v
	}
	return templates, nil
}

func (s *Store) SaveTemplates(ctx context.Context, t rent.SmsTemplateSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveSetting(ctx, keyTemplateReminder, t.Reminder); err != nil {
		return err
	}
	return s.saveSetting(ctx, keyTemplateLate, t.Late)
}

func (s *Store) setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) saveSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
