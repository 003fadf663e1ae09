// Package memory provides an in-memory attendance store for tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	employees map[generic.EmployeeID]attendance.Employee
	punches   map[generic.PunchID]attendance.PunchRecord
	periods   map[generic.PeriodID]attendance.ClosingPeriod
	configs   []string
	seq       int64
}

func New() *Store {
	return &Store{
		employees: make(map[generic.EmployeeID]attendance.Employee),
		punches:   make(map[generic.PunchID]attendance.PunchRecord),
		periods:   make(map[generic.PeriodID]attendance.ClosingPeriod),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, e attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id generic.EmployeeID) (attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return attendance.Employee{}, fmt.Errorf("%w: %s", attendance.ErrEmployeeNotFound, id)
	}
	return e, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]attendance.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// =============================================================================
// PUNCHES
// =============================================================================

func (s *Store) AddPunch(_ context.Context, p attendance.PunchRecord) (attendance.PunchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.punches[p.ID]; exists {
		return attendance.PunchRecord{}, fmt.Errorf("punch %s already exists", p.ID)
	}
	s.seq++
	p.Seq = s.seq
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.punches[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePunch(_ context.Context, p attendance.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.punches[p.ID]
	if !ok {
		return fmt.Errorf("%w: %s", attendance.ErrPunchNotFound, p.ID)
	}
	p.Seq = old.Seq
	p.CreatedAt = old.CreatedAt
	s.punches[p.ID] = p
	return nil
}

func (s *Store) GetPunch(_ context.Context, id generic.PunchID) (attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.punches[id]
	if !ok {
		return attendance.PunchRecord{}, fmt.Errorf("%w: %s", attendance.ErrPunchNotFound, id)
	}
	return p, nil
}

func (s *Store) ListPunches(_ context.Context, employeeID generic.EmployeeID, period generic.Period) ([]attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.PunchRecord
	for _, p := range s.punches {
		if p.EmployeeID == employeeID && period.Contains(p.Date) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (s *Store) CountTimedPunches(_ context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.punches {
		if p.EmployeeID == employeeID && p.Date.Equal(day) && p.HasTime() {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// PERIODS
// =============================================================================

func (s *Store) CreatePeriod(_ context.Context, p attendance.ClosingPeriod) (attendance.ClosingPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.periods {
		if existing.EmployeeID == p.EmployeeID &&
			existing.Period.Start.Equal(p.Period.Start) &&
			existing.Period.End.Equal(p.Period.End) {
			return existing, nil
		}
	}
	if err := p.Period.Validate(); err != nil {
		return attendance.ClosingPeriod{}, err
	}
	if p.Status == "" {
		p.Status = attendance.PeriodOpen
	}
	s.periods[p.ID] = p
	return p, nil
}

func (s *Store) GetPeriod(_ context.Context, id generic.PeriodID) (attendance.ClosingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[id]
	if !ok {
		return attendance.ClosingPeriod{}, fmt.Errorf("%w: %s", attendance.ErrPeriodNotFound, id)
	}
	return p, nil
}

func (s *Store) FindPeriod(_ context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (attendance.ClosingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.periods {
		if p.EmployeeID == employeeID && p.Period.Contains(day) {
			return p, nil
		}
	}
	return attendance.ClosingPeriod{}, fmt.Errorf("%w: %s on %s", attendance.ErrPeriodNotFound, employeeID, day)
}

func (s *Store) ListPeriods(_ context.Context, employeeID generic.EmployeeID) ([]attendance.ClosingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.ClosingPeriod
	for _, p := range s.periods {
		if employeeID == "" || p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Period.Start.Equal(out[j].Period.Start) {
			return out[i].Period.Start.After(out[j].Period.Start)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

func (s *Store) UpdatePeriodTotals(_ context.Context, id generic.PeriodID, expectedVersion int64, totals attendance.PeriodTotals) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.periods[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", attendance.ErrPeriodNotFound, id)
	}
	if p.Version != expectedVersion {
		return 0, fmt.Errorf("period %s at version %d, expected %d: %w",
			id, p.Version, expectedVersion, generic.ErrConcurrentModification)
	}
	p.Totals = totals
	p.Version++
	s.periods[id] = p
	return p.Version, nil
}

func (s *Store) UpdatePeriodStatus(_ context.Context, id generic.PeriodID, status attendance.PeriodStatus, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.periods[id]
	if !ok {
		return fmt.Errorf("%w: %s", attendance.ErrPeriodNotFound, id)
	}
	p.Status = status
	if notes != "" {
		p.Notes = notes
	}
	s.periods[id] = p
	return nil
}

// =============================================================================
// LABOR CONFIG VERSIONS
// =============================================================================

// LatestLaborConfig returns the newest stored config JSON and its version.
// Version 0 means nothing was stored yet.
func (s *Store) LatestLaborConfig(_ context.Context) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.configs) == 0 {
		return "", 0, nil
	}
	return s.configs[len(s.configs)-1], len(s.configs), nil
}

func (s *Store) SaveLaborConfig(_ context.Context, configJSON string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = append(s.configs, configJSON)
	return len(s.configs), nil
}

// Reset drops every record.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = make(map[generic.EmployeeID]attendance.Employee)
	s.punches = make(map[generic.PunchID]attendance.PunchRecord)
	s.periods = make(map[generic.PeriodID]attendance.ClosingPeriod)
	s.configs = nil
	s.seq = 0
	return nil
}
