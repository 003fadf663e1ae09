/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	attendance data. Each scenario creates employees and a month of punches
	for the previous calendar month, so summaries can be requested right
	away.

AVAILABLE SCENARIOS:

	standard-month:     Three employees, regular 08-12/13-17 style days
	night-shift:        22:00-07:00 worker, includes Sunday shifts
	irregular-punches:  Inverted lunch, single punch, holiday, vacation,
	                    excused and unexcused absences

HOW SCENARIOS WORK:
 1. Reset database (clear all data, config back to defaults)
 2. Create employees through the service
 3. Register punches through the service (periods open automatically)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-shift"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - attendance/service.go: RegisterPunch
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-month",
		Name:        "Standard Month",
		Description: "Three employees with regular days, some overtime and lateness",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "22:00-07:00 shifts crossing midnight, with Sunday work",
	},
	{
		ID:          "irregular-punches",
		Name:        "Irregular Punches",
		Description: "Inverted lunch, missing exit, holiday, vacation and absences",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Load(r.Context(), req.ScenarioID); err != nil {
		h.fail(w, r, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ErrUnknownScenario is returned by Load for an unlisted scenario ID.
var ErrUnknownScenario = fmt.Errorf("%w: unknown scenario", attendance.ErrInvalidKind)

// Load resets the database and loads the scenario with the given ID. The
// data covers the month before the service clock's current month.
func (h *Handler) Load(ctx context.Context, id string) error {
	var loader func(context.Context, generic.Period) error
	switch id {
	case "standard-month":
		loader = h.loadStandardMonthScenario
	case "night-shift":
		loader = h.loadNightShiftScenario
	case "irregular-punches":
		loader = h.loadIrregularPunchesScenario
	default:
		return fmt.Errorf("%w %q", ErrUnknownScenario, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}
	h.currentScenario = ""

	now := h.Service.Now()
	lastMonth := generic.NewTimePoint(now.Year(), now.Month(), 1).AddMonths(-1)
	if err := loader(ctx, generic.MonthOf(lastMonth)); err != nil {
		return err
	}

	h.currentScenario = id
	h.logger.Info("scenario loaded", "scenario", id, "month", lastMonth.Key())
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// shift is one day's punches in ENTRY, LUNCH_OUT, LUNCH_IN, EXIT order.
// Two times means ENTRY and EXIT only.
type shift []string

var (
	regularShift = shift{"08:00", "12:00", "13:00", "17:00"}
	lateShift    = shift{"08:20", "12:00", "13:00", "17:00"}
	longShift    = shift{"08:00", "12:00", "13:00", "19:00"}
)

func (h *Handler) loadStandardMonthScenario(ctx context.Context, month generic.Period) error {
	ana, err := h.createEmployee(ctx, "emp-ana", "Ana Ribeiro", "5000", "8", "08:00")
	if err != nil {
		return err
	}
	bruno, err := h.createEmployee(ctx, "emp-bruno", "Bruno Costa", "3500", "6", "09:00")
	if err != nil {
		return err
	}
	carla, err := h.createEmployee(ctx, "emp-carla", "Carla Mendes", "8000", "8", "08:00")
	if err != nil {
		return err
	}

	for i, day := range businessDays(month) {
		if err := h.registerShift(ctx, ana.ID, day, regularShift); err != nil {
			return err
		}

		// Part-time, late every fifth day
		partTime := shift{"09:00", "12:00", "12:30", "15:30"}
		if i%5 == 0 {
			partTime[0] = "09:10"
		}
		if err := h.registerShift(ctx, bruno.ID, day, partTime); err != nil {
			return err
		}

		carlaShift := regularShift
		switch {
		case day.Weekday() == time.Monday:
			carlaShift = longShift
		case i%7 == 3:
			carlaShift = lateShift
		}
		if err := h.registerShift(ctx, carla.ID, day, carlaShift); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadNightShiftScenario(ctx context.Context, month generic.Period) error {
	emp, err := h.createEmployee(ctx, "emp-diego", "Diego Alves", "4200", "8", "22:00")
	if err != nil {
		return err
	}

	// Sunday to Thursday nights, 22:00 to 07:00 with a 02:00-03:00 break
	for _, day := range month.Days() {
		switch day.Weekday() {
		case time.Friday, time.Saturday:
			continue
		}
		if err := h.registerShift(ctx, emp.ID, day, shift{"22:00", "02:00", "03:00", "07:00"}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadIrregularPunchesScenario(ctx context.Context, month generic.Period) error {
	emp, err := h.createEmployee(ctx, "emp-elisa", "Elisa Prado", "5000", "8", "08:00")
	if err != nil {
		return err
	}

	for i, day := range businessDays(month) {
		var err error
		switch i {
		case 0:
			// Lunch recorded backwards
			err = h.registerShift(ctx, emp.ID, day, shift{"08:00", "13:00", "12:00", "17:00"})
		case 1:
			// Forgot to punch out
			err = h.registerShift(ctx, emp.ID, day, shift{"08:00"})
		case 2:
			err = h.registerDay(ctx, emp.ID, day, attendance.DayHoliday, "municipal holiday")
		case 3, 4:
			err = h.registerDay(ctx, emp.ID, day, attendance.DayVacation, "")
		case 5:
			err = h.registerDay(ctx, emp.ID, day, attendance.DayAbsenceExcused, "medical certificate")
		case 6:
			err = h.registerDay(ctx, emp.ID, day, attendance.DayAbsenceUnexcused, "")
		case 7:
			// Entry and exit only
			err = h.registerShift(ctx, emp.ID, day, shift{"09:00", "18:00"})
		default:
			err = h.registerShift(ctx, emp.ID, day, regularShift)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) createEmployee(ctx context.Context, id, name, salary, dailyHours, entry string) (attendance.Employee, error) {
	e, err := h.Service.CreateEmployee(ctx, attendance.Employee{
		ID:            generic.EmployeeID(id),
		Name:          name,
		Email:         id[len("emp-"):] + "@example.com",
		MonthlySalary: decimal.RequireFromString(salary),
		DailyHours:    decimal.RequireFromString(dailyHours),
		ExpectedEntry: generic.MustTimeOfDay(entry),
	})
	if err != nil {
		return attendance.Employee{}, fmt.Errorf("create employee %s: %w", id, err)
	}
	return e, nil
}

func (h *Handler) registerShift(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint, times shift) error {
	kinds := []attendance.TimeKind{attendance.TimeEntry, attendance.TimeLunchOut, attendance.TimeLunchIn, attendance.TimeExit}
	if len(times) == 2 {
		kinds = []attendance.TimeKind{attendance.TimeEntry, attendance.TimeExit}
	}
	for i, at := range times {
		t := generic.MustTimeOfDay(at)
		_, err := h.Service.RegisterPunch(ctx, attendance.PunchRecord{
			EmployeeID: employeeID,
			Date:       day,
			Time:       &t,
			TimeKind:   kinds[i],
		})
		if err != nil {
			return fmt.Errorf("register %s punch on %s: %w", kinds[i], day, err)
		}
	}
	return nil
}

func (h *Handler) registerDay(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint, kind attendance.DayKind, note string) error {
	_, err := h.Service.RegisterPunch(ctx, attendance.PunchRecord{
		EmployeeID: employeeID,
		Date:       day,
		DayKind:    kind,
		Note:       note,
	})
	if err != nil {
		return fmt.Errorf("register %s on %s: %w", kind, day, err)
	}
	return nil
}

func businessDays(p generic.Period) []generic.TimePoint {
	var days []generic.TimePoint
	for _, d := range p.Days() {
		if d.IsBusinessDay() {
			days = append(days, d)
		}
	}
	return days
}
