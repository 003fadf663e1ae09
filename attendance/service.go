/*
service.go - Boundary between the engine and its collaborators

PURPOSE:
  The engine (Summarize) is pure. The Service does the two effectful steps
  around it: loading inputs (period, employee, punches, one config snapshot)
  and writing the period totals back.

CONCURRENCY:
  - Concurrent PeriodSummary calls for the same period share one computation
    (singleflight keyed by period ID).
  - Totals are written with compare-and-swap on the period Version. When
    another writer got there first the whole computation is redone from a
    fresh read, up to maxTotalsAttempts times.
  - The config is read once per attempt; the engine never sees a half
    updated configuration.

SEE ALSO:
  - summary.go: the pipeline
  - store.go: storage contracts
*/
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/generic"
	"golang.org/x/sync/singleflight"
)

const maxTotalsAttempts = 3

// Service runs summaries and punch registration against a Store.
type Service struct {
	store  Store
	config ConfigSource
	logger *slog.Logger
	sf     singleflight.Group

	// Now is the clock used for CreatedAt stamps. Tests override it.
	Now func() time.Time
}

// NewService creates a service. A nil logger discards output.
func NewService(store Store, config ConfigSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:  store,
		config: config,
		logger: logger.With(slog.String("component", "attendance.service")),
		Now:    time.Now,
	}
}

// =============================================================================
// PERIOD SUMMARY
// =============================================================================

// PeriodSummary computes the summary of a closing period and persists its
// totals. A missing period returns ErrPeriodNotFound.
func (s *Service) PeriodSummary(ctx context.Context, id generic.PeriodID) (PeriodSummary, error) {
	ch := s.sf.DoChan(string(id), func() (interface{}, error) {
		// Shared by every waiter: one caller's cancellation must not fail
		// the others.
		return s.summarizeAndPersist(context.WithoutCancel(ctx), id)
	})
	select {
	case <-ctx.Done():
		return PeriodSummary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return PeriodSummary{}, res.Err
		}
		return res.Val.(PeriodSummary), nil
	}
}

func (s *Service) summarizeAndPersist(ctx context.Context, id generic.PeriodID) (PeriodSummary, error) {
	for attempt := 1; attempt <= maxTotalsAttempts; attempt++ {
		period, summary, err := s.compute(ctx, id)
		if err != nil {
			return PeriodSummary{}, err
		}

		_, err = s.store.UpdatePeriodTotals(ctx, id, period.Version, summary.Totals)
		if err == nil {
			s.logger.Debug("period totals updated",
				slog.String("period_id", string(id)),
				slog.String("worked_hours", summary.WorkedHours.StringFixed(2)),
				slog.Int("attempt", attempt),
			)
			return summary, nil
		}
		if !generic.IsRetryable(err) {
			return PeriodSummary{}, fmt.Errorf("persist totals for %s: %w", id, err)
		}
		s.logger.Info("period totals changed concurrently, recomputing",
			slog.String("period_id", string(id)),
			slog.Int("attempt", attempt),
		)
	}
	return PeriodSummary{}, fmt.Errorf("persist totals for %s after %d attempts: %w",
		id, maxTotalsAttempts, generic.ErrConcurrentModification)
}

// Preview computes the summary without persisting anything.
func (s *Service) Preview(ctx context.Context, id generic.PeriodID) (PeriodSummary, error) {
	_, summary, err := s.compute(ctx, id)
	return summary, err
}

func (s *Service) compute(ctx context.Context, id generic.PeriodID) (ClosingPeriod, PeriodSummary, error) {
	period, err := s.store.GetPeriod(ctx, id)
	if err != nil {
		return ClosingPeriod{}, PeriodSummary{}, err
	}
	emp, err := s.store.GetEmployee(ctx, period.EmployeeID)
	if err != nil {
		return ClosingPeriod{}, PeriodSummary{}, err
	}
	records, err := s.store.ListPunches(ctx, period.EmployeeID, period.Period)
	if err != nil {
		return ClosingPeriod{}, PeriodSummary{}, fmt.Errorf("load punches: %w", err)
	}
	cfg, err := s.config.LaborConfig(ctx)
	if err != nil {
		return ClosingPeriod{}, PeriodSummary{}, fmt.Errorf("load labor config: %w", err)
	}

	summary := Aggregator{Logger: s.logger}.Summarize(SummaryInput{
		PeriodID:      period.ID,
		Period:        period.Period,
		DailyHours:    emp.DailyHours,
		MonthlySalary: emp.MonthlySalary,
		ExpectedEntry: emp.ExpectedEntry,
		Records:       records,
		Config:        cfg,
	})
	return period, summary, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee stores a new employee, assigning an ID when empty and the
// default daily workload when none is given.
func (s *Service) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	if e.ID == "" {
		e.ID = generic.EmployeeID(uuid.NewString())
	}
	if !e.DailyHours.IsPositive() {
		e.DailyHours = DefaultDailyHours
	}
	if e.MonthlySalary.IsNegative() {
		e.MonthlySalary = decimal.Zero
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.Now().UTC()
	}
	if err := s.store.SaveEmployee(ctx, e); err != nil {
		return Employee{}, fmt.Errorf("save employee: %w", err)
	}
	return e, nil
}

// =============================================================================
// PUNCHES
// =============================================================================

// RegisterPunch validates and stores a new punch, opening the month's
// closing period when the employee has none covering the date.
func (s *Service) RegisterPunch(ctx context.Context, p PunchRecord) (PunchRecord, error) {
	if p.Date.IsZero() {
		return PunchRecord{}, fmt.Errorf("%w: date is required", ErrInvalidPunch)
	}
	if p.DayKind == "" {
		p.DayKind = DayNormal
	}
	if p.Status == "" {
		p.Status = RecordComplete
	}
	if err := validatePunch(p); err != nil {
		return PunchRecord{}, err
	}
	if _, err := s.store.GetEmployee(ctx, p.EmployeeID); err != nil {
		return PunchRecord{}, err
	}

	cfg, err := s.config.LaborConfig(ctx)
	if err != nil {
		return PunchRecord{}, fmt.Errorf("load labor config: %w", err)
	}
	if cfg.LimitPunchesPerDay && p.HasTime() {
		n, err := s.store.CountTimedPunches(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return PunchRecord{}, fmt.Errorf("count punches: %w", err)
		}
		if n >= cfg.MaxPunchesPerDay {
			return PunchRecord{}, &PunchLimitError{EmployeeID: p.EmployeeID, Date: p.Date, Limit: cfg.MaxPunchesPerDay}
		}
	}

	period, err := s.periodFor(ctx, p.EmployeeID, p.Date)
	if err != nil {
		return PunchRecord{}, err
	}
	p.PeriodID = period.ID
	if p.ID == "" {
		p.ID = generic.PunchID(uuid.NewString())
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.Now().UTC()
	}

	saved, err := s.store.AddPunch(ctx, p)
	if err != nil {
		return PunchRecord{}, fmt.Errorf("add punch: %w", err)
	}
	s.logger.Debug("punch registered",
		slog.String("employee_id", string(p.EmployeeID)),
		slog.String("date", p.Date.Key()),
		slog.String("time_kind", string(p.TimeKind)),
	)
	return saved, nil
}

// PunchPatch lists the fields an administrative correction may change.
// Nil fields are left untouched.
type PunchPatch struct {
	Date      *generic.TimePoint
	Time      *generic.TimeOfDay
	ClearTime bool
	TimeKind  *TimeKind
	DayKind   *DayKind
	Status    *RecordStatus
	Note      *string
}

// CorrectPunch applies an administrative correction. Moving a punch to
// another month relinks it to that month's period.
func (s *Service) CorrectPunch(ctx context.Context, id generic.PunchID, patch PunchPatch) (PunchRecord, error) {
	p, err := s.store.GetPunch(ctx, id)
	if err != nil {
		return PunchRecord{}, err
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.ClearTime {
		p.Time = nil
	} else if patch.Time != nil {
		t := *patch.Time
		p.Time = &t
	}
	if patch.TimeKind != nil {
		p.TimeKind = *patch.TimeKind
	}
	if patch.DayKind != nil {
		p.DayKind = *patch.DayKind
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Note != nil {
		p.Note = *patch.Note
	}
	if err := validatePunch(p); err != nil {
		return PunchRecord{}, err
	}

	if patch.Date != nil {
		period, err := s.periodFor(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return PunchRecord{}, err
		}
		p.PeriodID = period.ID
	}
	if err := s.store.UpdatePunch(ctx, p); err != nil {
		return PunchRecord{}, fmt.Errorf("update punch: %w", err)
	}
	s.logger.Info("punch corrected", slog.String("punch_id", string(id)))
	return p, nil
}

func validatePunch(p PunchRecord) error {
	if p.EmployeeID == "" {
		return fmt.Errorf("%w: employee is required", ErrInvalidPunch)
	}
	if !p.DayKind.Valid() {
		return fmt.Errorf("%w: day kind %q", ErrInvalidKind, p.DayKind)
	}
	if p.TimeKind != "" && !p.TimeKind.Valid() {
		return fmt.Errorf("%w: time kind %q", ErrInvalidKind, p.TimeKind)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: record status %q", ErrInvalidKind, p.Status)
	}
	if p.TimeKind != "" && !p.HasTime() {
		return fmt.Errorf("%w: %s punch needs a clock time", ErrInvalidPunch, p.TimeKind)
	}
	return nil
}

// =============================================================================
// PERIODS
// =============================================================================

// OpenPeriod creates the employee's closing period for a month. If it
// already exists the existing period is returned.
func (s *Service) OpenPeriod(ctx context.Context, employeeID generic.EmployeeID, year int, month time.Month) (ClosingPeriod, error) {
	if month < time.January || month > time.December {
		return ClosingPeriod{}, fmt.Errorf("%w: month %d", generic.ErrInvalidPeriod, month)
	}
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return ClosingPeriod{}, err
	}
	return s.createPeriod(ctx, employeeID, generic.MonthPeriod(year, month))
}

// SetPeriodStatus moves a period to any valid status. The order of the
// closing workflow is the caller's concern.
func (s *Service) SetPeriodStatus(ctx context.Context, id generic.PeriodID, status PeriodStatus, notes string) (ClosingPeriod, error) {
	if !status.Valid() {
		return ClosingPeriod{}, fmt.Errorf("%w: period status %q", ErrInvalidKind, status)
	}
	if err := s.store.UpdatePeriodStatus(ctx, id, status, notes); err != nil {
		return ClosingPeriod{}, err
	}
	s.logger.Info("period status changed",
		slog.String("period_id", string(id)),
		slog.String("status", string(status)),
	)
	return s.store.GetPeriod(ctx, id)
}

// EnsureCurrentPeriods opens the current month's period for every employee
// that lacks one and returns how many were created. "Current" is evaluated
// in the configured time zone.
func (s *Service) EnsureCurrentPeriods(ctx context.Context, now time.Time) (int, error) {
	cfg, err := s.config.LaborConfig(ctx)
	if err != nil {
		return 0, fmt.Errorf("load labor config: %w", err)
	}
	if loc, err := time.LoadLocation(cfg.TimeZone); err == nil {
		now = now.In(loc)
	}
	today := generic.NewTimePoint(now.Year(), now.Month(), now.Day())

	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	created := 0
	for _, e := range employees {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		_, err := s.store.FindPeriod(ctx, e.ID, today)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrPeriodNotFound) {
			return created, err
		}
		if _, err := s.createPeriod(ctx, e.ID, generic.MonthOf(today)); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// periodFor returns the employee's period containing day, creating the
// month period when none exists.
func (s *Service) periodFor(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (ClosingPeriod, error) {
	p, err := s.store.FindPeriod(ctx, employeeID, day)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPeriodNotFound) {
		return ClosingPeriod{}, err
	}
	return s.createPeriod(ctx, employeeID, generic.MonthOf(day))
}

func (s *Service) createPeriod(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) (ClosingPeriod, error) {
	p, err := s.store.CreatePeriod(ctx, ClosingPeriod{
		ID:         generic.PeriodID(uuid.NewString()),
		EmployeeID: employeeID,
		Period:     period,
		Status:     PeriodOpen,
		CreatedAt:  s.Now().UTC(),
	})
	if err != nil {
		return ClosingPeriod{}, fmt.Errorf("create period: %w", err)
	}
	s.logger.Debug("closing period ready",
		slog.String("employee_id", string(employeeID)),
		slog.String("period", period.String()),
	)
	return p, nil
}
