/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements attendance.Store and factory.ConfigRecordStore using SQLite.
  The same schema works on PostgreSQL with minor dialect changes.

INTERFACES IMPLEMENTED:
  attendance.EmployeeStore:    Employee workload data
  attendance.PunchStore:       Punch records
  attendance.PeriodStore:      Closing periods with versioned totals
  factory.ConfigRecordStore:   Versioned labor config documents

KEY TABLES:
  employees:        Workload and salary per employee
  punches:          Clock events; seq is the creation order
  closing_periods:  One row per employee and month, totals + version
  labor_configs:    Append-only config history, newest version wins

INDEXES:
  - idx_punches_employee_date: period loads and the daily punch limit (hot path)
  - idx_periods_employee_bounds: one period per employee and bounds

COMPARE-AND-SWAP:
  UpdatePeriodTotals runs
    UPDATE closing_periods SET ..., version = version + 1
    WHERE id = ? AND version = ?
  and reports generic.ErrConcurrentModification when no row matched an
  existing period. This holds across processes sharing the database file,
  not just within this Store.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety inside one process.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/punchclock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - attendance/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
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

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		daily_hours TEXT NOT NULL,
		monthly_salary TEXT NOT NULL,
		expected_entry TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS closing_periods (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_worked_hours TEXT NOT NULL DEFAULT '0',
		total_overtime_hours TEXT NOT NULL DEFAULT '0',
		total_owed_hours TEXT NOT NULL DEFAULT '0',
		total_night_hours TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		notes TEXT,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_periods_employee_bounds
		ON closing_periods(employee_id, start_date, end_date);

	-- Punches: seq is the creation order used to break clock-time ties
	CREATE TABLE IF NOT EXISTS punches (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		period_id TEXT REFERENCES closing_periods(id) ON DELETE SET NULL,
		date TEXT NOT NULL,
		time TEXT,
		time_kind TEXT,
		day_kind TEXT NOT NULL,
		status TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_punches_employee_date
		ON punches(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_punches_period
		ON punches(period_id) WHERE period_id IS NOT NULL;

	-- Labor config history (append-only)
	CREATE TABLE IF NOT EXISTS labor_configs (
		version INTEGER PRIMARY KEY AUTOINCREMENT,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES (attendance.EmployeeStore)
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, e attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO employees (id, name, email, daily_hours, monthly_salary, expected_entry, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			daily_hours = excluded.daily_hours,
			monthly_salary = excluded.monthly_salary,
			expected_entry = excluded.expected_entry,
			is_admin = excluded.is_admin
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, nullString(e.Email),
		e.DailyHours.String(),
		e.MonthlySalary.String(),
		e.ExpectedEntry.String(),
		e.IsAdmin,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

const employeeColumns = `id, name, email, daily_hours, monthly_salary, expected_entry, is_admin, created_at`

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.Employee{}, fmt.Errorf("%w: %s", attendance.ErrEmployeeNotFound, id)
	}
	return e, err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(row scanner) (attendance.Employee, error) {
	var (
		e                                    attendance.Employee
		email                                sql.NullString
		dailyHours, salary, entry, createdAt string
	)
	if err := row.Scan(&e.ID, &e.Name, &email, &dailyHours, &salary, &entry, &e.IsAdmin, &createdAt); err != nil {
		return attendance.Employee{}, err
	}
	e.Email = email.String
	e.DailyHours = generic.MustParseDecimal(dailyHours)
	e.MonthlySalary = generic.MustParseDecimal(salary)
	e.ExpectedEntry = parseTimeOr(entry, attendance.DefaultExpectedEntry)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return e, nil
}

// =============================================================================
// PUNCHES (attendance.PunchStore)
// =============================================================================

// AddPunch inserts a punch and returns it with the assigned Seq.
func (s *Store) AddPunch(ctx context.Context, p attendance.PunchRecord) (attendance.PunchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO punches (id, employee_id, period_id, date, time, time_kind, day_kind, status, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, nullString(string(p.PeriodID)),
		p.Date.Key(), nullTime(p.Time),
		nullString(string(p.TimeKind)), p.DayKind, p.Status,
		nullString(p.Note),
		p.CreatedAt.Format(time.RFC3339Nano),
	)
	if isUniqueConstraintError(err) {
		return attendance.PunchRecord{}, fmt.Errorf("%w: duplicate id %s", attendance.ErrInvalidPunch, p.ID)
	}
	if err != nil {
		return attendance.PunchRecord{}, fmt.Errorf("failed to add punch: %w", err)
	}
	p.Seq, err = res.LastInsertId()
	if err != nil {
		return attendance.PunchRecord{}, fmt.Errorf("failed to read punch seq: %w", err)
	}
	return p, nil
}

// UpdatePunch replaces the mutable fields of a punch. Seq and CreatedAt are
// kept.
func (s *Store) UpdatePunch(ctx context.Context, p attendance.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE punches SET
			period_id = ?, date = ?, time = ?, time_kind = ?, day_kind = ?, status = ?, note = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		nullString(string(p.PeriodID)), p.Date.Key(), nullTime(p.Time),
		nullString(string(p.TimeKind)), p.DayKind, p.Status, nullString(p.Note),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update punch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", attendance.ErrPunchNotFound, p.ID)
	}
	return nil
}

const punchColumns = `seq, id, employee_id, period_id, date, time, time_kind, day_kind, status, note, created_at`

// GetPunch retrieves a punch by ID.
func (s *Store) GetPunch(ctx context.Context, id generic.PunchID) (attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+punchColumns+" FROM punches WHERE id = ?", id)
	p, err := scanPunch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.PunchRecord{}, fmt.Errorf("%w: %s", attendance.ErrPunchNotFound, id)
	}
	return p, err
}

// ListPunches returns the employee's punches dated within period, ordered
// by date then creation order.
func (s *Store) ListPunches(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+punchColumns+` FROM punches
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date, seq
	`, employeeID, period.Start.Key(), period.End.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []attendance.PunchRecord
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// CountTimedPunches counts punches with a clock time on one day.
func (s *Store) CountTimedPunches(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM punches WHERE employee_id = ? AND date = ? AND time IS NOT NULL",
		employeeID, day.Key(),
	).Scan(&n)
	return n, err
}

func scanPunch(row scanner) (attendance.PunchRecord, error) {
	var (
		p                            attendance.PunchRecord
		periodID, clock, kind, note  sql.NullString
		date, dayKind, status, stamp string
	)
	err := row.Scan(&p.Seq, &p.ID, &p.EmployeeID, &periodID, &date, &clock, &kind, &dayKind, &status, &note, &stamp)
	if err != nil {
		return attendance.PunchRecord{}, err
	}
	p.PeriodID = generic.PeriodID(periodID.String)
	p.Date, err = generic.ParseDate(date)
	if err != nil {
		return attendance.PunchRecord{}, fmt.Errorf("punch %s: %w", p.ID, err)
	}
	if clock.Valid {
		t, err := generic.ParseTimeOfDay(clock.String)
		if err != nil {
			return attendance.PunchRecord{}, fmt.Errorf("punch %s: %w", p.ID, err)
		}
		p.Time = &t
	}
	p.TimeKind = attendance.TimeKind(kind.String)
	p.DayKind = attendance.DayKind(dayKind)
	p.Status = attendance.RecordStatus(status)
	p.Note = note.String
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, stamp)
	return p, nil
}

// =============================================================================
// CLOSING PERIODS (attendance.PeriodStore)
// =============================================================================

// CreatePeriod inserts a period. If the employee already has a period with
// the same bounds, that period is returned unchanged.
func (s *Store) CreatePeriod(ctx context.Context, p attendance.ClosingPeriod) (attendance.ClosingPeriod, error) {
	if err := p.Period.Validate(); err != nil {
		return attendance.ClosingPeriod{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = attendance.PeriodOpen
	}
	now := p.CreatedAt.Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO closing_periods (id, employee_id, start_date, end_date, status, notes, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(employee_id, start_date, end_date) DO NOTHING
	`, p.ID, p.EmployeeID, p.Period.Start.Key(), p.Period.End.Key(), p.Status, nullString(p.Notes), now, now)
	if err != nil {
		return attendance.ClosingPeriod{}, fmt.Errorf("failed to create period: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+periodColumns+` FROM closing_periods
		WHERE employee_id = ? AND start_date = ? AND end_date = ?
	`, p.EmployeeID, p.Period.Start.Key(), p.Period.End.Key())
	return scanPeriod(row)
}

const periodColumns = `id, employee_id, start_date, end_date,
	total_worked_hours, total_overtime_hours, total_owed_hours, total_night_hours,
	status, notes, version, created_at`

// GetPeriod retrieves a period by ID.
func (s *Store) GetPeriod(ctx context.Context, id generic.PeriodID) (attendance.ClosingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+periodColumns+" FROM closing_periods WHERE id = ?", id)
	p, err := scanPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.ClosingPeriod{}, fmt.Errorf("%w: %s", attendance.ErrPeriodNotFound, id)
	}
	return p, err
}

// FindPeriod returns the employee's period containing day. When periods
// overlap, the one starting latest wins.
func (s *Store) FindPeriod(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (attendance.ClosingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+periodColumns+` FROM closing_periods
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date DESC
		LIMIT 1
	`, employeeID, day.Key(), day.Key())
	p, err := scanPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.ClosingPeriod{}, fmt.Errorf("%w: %s on %s", attendance.ErrPeriodNotFound, employeeID, day)
	}
	return p, err
}

// ListPeriods returns periods newest first. An empty employeeID lists all.
func (s *Store) ListPeriods(ctx context.Context, employeeID generic.EmployeeID) ([]attendance.ClosingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + periodColumns + " FROM closing_periods"
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY start_date DESC, employee_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []attendance.ClosingPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// UpdatePeriodTotals writes totals only if the stored version still equals
// expectedVersion.
func (s *Store) UpdatePeriodTotals(ctx context.Context, id generic.PeriodID, expectedVersion int64, totals attendance.PeriodTotals) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE closing_periods SET
			total_worked_hours = ?,
			total_overtime_hours = ?,
			total_owed_hours = ?,
			total_night_hours = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`,
		totals.WorkedHours.String(),
		totals.OvertimeHours.String(),
		totals.OwedHours.String(),
		totals.NightHours.String(),
		time.Now().UTC().Format(time.RFC3339Nano),
		id, expectedVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update period totals: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return expectedVersion + 1, nil
	}

	var current int64
	err = s.db.QueryRowContext(ctx, "SELECT version FROM closing_periods WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", attendance.ErrPeriodNotFound, id)
	}
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("period %s at version %d, expected %d: %w",
		id, current, expectedVersion, generic.ErrConcurrentModification)
}

// UpdatePeriodStatus sets the status. Empty notes keep the stored notes.
func (s *Store) UpdatePeriodStatus(ctx context.Context, id generic.PeriodID, status attendance.PeriodStatus, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE closing_periods SET
			status = ?,
			notes = COALESCE(?, notes),
			updated_at = ?
		WHERE id = ?
	`, status, nullString(notes), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to update period status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", attendance.ErrPeriodNotFound, id)
	}
	return nil
}

func scanPeriod(row scanner) (attendance.ClosingPeriod, error) {
	var (
		p                             attendance.ClosingPeriod
		start, end, status, createdAt string
		worked, overtime, owed, night string
		notes                         sql.NullString
	)
	err := row.Scan(&p.ID, &p.EmployeeID, &start, &end,
		&worked, &overtime, &owed, &night,
		&status, &notes, &p.Version, &createdAt)
	if err != nil {
		return attendance.ClosingPeriod{}, err
	}
	if p.Period.Start, err = generic.ParseDate(start); err != nil {
		return attendance.ClosingPeriod{}, fmt.Errorf("period %s: %w", p.ID, err)
	}
	if p.Period.End, err = generic.ParseDate(end); err != nil {
		return attendance.ClosingPeriod{}, fmt.Errorf("period %s: %w", p.ID, err)
	}
	p.Totals = attendance.PeriodTotals{
		WorkedHours:   generic.MustParseDecimal(worked),
		OvertimeHours: generic.MustParseDecimal(overtime),
		OwedHours:     generic.MustParseDecimal(owed),
		NightHours:    generic.MustParseDecimal(night),
	}
	p.Status = attendance.PeriodStatus(status)
	p.Notes = notes.String
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return p, nil
}

// =============================================================================
// LABOR CONFIG (factory.ConfigRecordStore)
// =============================================================================

// LatestLaborConfig returns the newest config document and its version.
// Version 0 means none was stored.
func (s *Store) LatestLaborConfig(ctx context.Context) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		doc     string
		version int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT version, config_json FROM labor_configs ORDER BY version DESC LIMIT 1",
	).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to load labor config: %w", err)
	}
	return doc, version, nil
}

// SaveLaborConfig appends a new config version.
func (s *Store) SaveLaborConfig(ctx context.Context, configJSON string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO labor_configs (config_json, created_at) VALUES (?, ?)",
		configJSON, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save labor config: %w", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}

// LaborConfigVersion is one stored config document.
type LaborConfigVersion struct {
	Version    int
	ConfigJSON string
	CreatedAt  time.Time
}

// LaborConfigHistory returns stored config versions, newest first.
func (s *Store) LaborConfigHistory(ctx context.Context, limit int) ([]LaborConfigVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT version, config_json, created_at FROM labor_configs ORDER BY version DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LaborConfigVersion
	for rows.Next() {
		var v LaborConfigVersion
		var createdAt string
		if err := rows.Scan(&v.Version, &v.ConfigJSON, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, v)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"punches", "closing_periods", "employees", "labor_configs"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sqlite_sequence WHERE name IN ('punches', 'labor_configs')")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *generic.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func parseTimeOr(s string, fallback generic.TimeOfDay) generic.TimeOfDay {
	t, err := generic.ParseTimeOfDay(s)
	if err != nil {
		return fallback
	}
	return t
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
