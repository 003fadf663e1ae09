/*
handlers.go - HTTP API handlers for the attendance closing engine

PURPOSE:
  Exposes punch registration, closing periods, period summaries and the
  labor configuration via REST API. Handles HTTP request/response, JSON
  serialization and request validation, and delegates to attendance.Service.

ENDPOINTS:
  Employees:
    GET    /api/employees                  List all employees
    POST   /api/employees                  Create employee
    GET    /api/employees/{id}             Get employee details
    GET    /api/employees/{id}/punches     Punches in ?from=&to= (default: current month)
    GET    /api/employees/{id}/periods     Closing periods, newest first

  Punches:
    POST   /api/punches                    Register a punch
    PATCH  /api/punches/{id}               Administrative correction

  Periods:
    GET    /api/periods                    List (optional ?employee_id=)
    POST   /api/periods                    Open a month period
    GET    /api/periods/{id}               Period with stored totals
    GET    /api/periods/{id}/punches       Punches inside the period
    GET    /api/periods/{id}/summary       Compute summary, persist totals
                                           (?preview=true skips the write)
    PUT    /api/periods/{id}/status        Move through the closing workflow

  Config:
    GET    /api/config                     Labor config in force + version
    PUT    /api/config                     Validate, merge over defaults, store
    POST   /api/config/reset               Store the defaults as a new version

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Service: attendance operations (summaries, punches, periods)
  - Store: reads that need no domain logic, scenario resets
  - Config: versioned labor config provider

ERROR HANDLING:
  Errors are returned as JSON {error, details, violations} with status:
  - 400: Validation errors, unknown kinds, malformed dates/times
  - 404: Employee, punch or period not found
  - 409: Concurrent modification, daily punch limit
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/factory"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the HTTP layer needs. Both store/sqlite and
// store/memory satisfy it.
type Store interface {
	attendance.Store
	factory.ConfigRecordStore
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *attendance.Service
	Store   Store
	Config  *factory.ConfigProvider

	configFactory *factory.ConfigFactory
	validate      *validator.Validate
	logger        *slog.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires the service and config provider over store.
func NewHandler(store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cf := factory.NewConfigFactory()
	provider := factory.NewConfigProvider(store, cf)
	return &Handler{
		Service:       attendance.NewService(store, provider, logger),
		Store:         store,
		Config:        provider,
		configFactory: cf,
		validate:      factory.NewValidator(),
		logger:        logger,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp := attendance.Employee{
		ID:            generic.EmployeeID(req.ID),
		Name:          req.Name,
		Email:         req.Email,
		MonthlySalary: decimal.NewFromFloat(req.MonthlySalary),
		ExpectedEntry: attendance.DefaultExpectedEntry,
		IsAdmin:       req.IsAdmin,
	}
	if req.DailyHours != nil {
		emp.DailyHours = decimal.NewFromFloat(*req.DailyHours)
	}
	if req.ExpectedEntry != "" {
		emp.ExpectedEntry = generic.MustTimeOfDay(req.ExpectedEntry)
	}

	created, err := h.Service.CreateEmployee(r.Context(), emp)
	if err != nil {
		h.fail(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(created))
}

// ListEmployeePunches returns an employee's punches in a date range.
// GET /api/employees/{id}/punches?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListEmployeePunches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	period := generic.MonthOf(generic.DayOf(time.Now()))
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := generic.ParseDate(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		period.Start = d
	}
	if to := r.URL.Query().Get("to"); to != "" {
		d, err := generic.ParseDate(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		period.End = d
	}
	if err := period.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	punches, err := h.Store.ListPunches(ctx, id, period)
	if err != nil {
		h.fail(w, r, "Failed to list punches", err)
		return
	}
	writeJSON(w, http.StatusOK, toPunchDTOs(punches))
}

// ListEmployeePeriods returns an employee's closing periods.
func (h *Handler) ListEmployeePeriods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	periods, err := h.Store.ListPeriods(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to list periods", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// RegisterPunch stores a new punch.
// POST /api/punches
func (h *Handler) RegisterPunch(w http.ResponseWriter, r *http.Request) {
	var req RegisterPunchRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := attendance.PunchRecord{
		EmployeeID: generic.EmployeeID(req.EmployeeID),
		Note:       req.Note,
	}
	var err error
	if p.Date, err = generic.ParseDate(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	if req.Time != "" {
		t := generic.MustTimeOfDay(req.Time)
		p.Time = &t
	}
	if p.TimeKind, err = attendance.ParseTimeKind(req.TimeKind); err != nil {
		h.fail(w, r, "Invalid time_kind", err)
		return
	}
	if p.DayKind, err = attendance.ParseDayKind(req.DayKind); err != nil {
		h.fail(w, r, "Invalid day_kind", err)
		return
	}
	if p.Status, err = attendance.ParseRecordStatus(req.Status); err != nil {
		h.fail(w, r, "Invalid status", err)
		return
	}

	saved, err := h.Service.RegisterPunch(r.Context(), p)
	if err != nil {
		h.fail(w, r, "Failed to register punch", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPunchDTO(saved))
}

// CorrectPunch applies an administrative correction.
// PATCH /api/punches/{id}
func (h *Handler) CorrectPunch(w http.ResponseWriter, r *http.Request) {
	id := generic.PunchID(chi.URLParam(r, "id"))

	var req CorrectPunchRequest
	if !h.decode(w, r, &req) {
		return
	}

	patch := attendance.PunchPatch{ClearTime: req.ClearTime, Note: req.Note}
	if req.Date != nil {
		d, err := generic.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		patch.Date = &d
	}
	if req.Time != nil {
		t := generic.MustTimeOfDay(*req.Time)
		patch.Time = &t
	}
	if req.TimeKind != nil {
		k, err := attendance.ParseTimeKind(*req.TimeKind)
		if err != nil {
			h.fail(w, r, "Invalid time_kind", err)
			return
		}
		patch.TimeKind = &k
	}
	if req.DayKind != nil {
		k, err := attendance.ParseDayKind(*req.DayKind)
		if err != nil {
			h.fail(w, r, "Invalid day_kind", err)
			return
		}
		patch.DayKind = &k
	}
	if req.Status != nil {
		st, err := attendance.ParseRecordStatus(*req.Status)
		if err != nil {
			h.fail(w, r, "Invalid status", err)
			return
		}
		patch.Status = &st
	}

	updated, err := h.Service.CorrectPunch(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, "Failed to correct punch", err)
		return
	}
	writeJSON(w, http.StatusOK, toPunchDTO(updated))
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns closing periods, optionally for one employee.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	employeeID := generic.EmployeeID(r.URL.Query().Get("employee_id"))
	periods, err := h.Store.ListPeriods(r.Context(), employeeID)
	if err != nil {
		h.fail(w, r, "Failed to list periods", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTOs(periods))
}

// OpenPeriod creates a month period; an existing one is returned as is.
// POST /api/periods
func (h *Handler) OpenPeriod(w http.ResponseWriter, r *http.Request) {
	var req OpenPeriodRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.Service.OpenPeriod(r.Context(), generic.EmployeeID(req.EmployeeID), req.Year, time.Month(req.Month))
	if err != nil {
		h.fail(w, r, "Failed to open period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodDTO(p))
}

// GetPeriod returns a period with its stored totals.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPeriod(r.Context(), generic.PeriodID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

// ListPeriodPunches returns the punches the summary of a period reads.
func (h *Handler) ListPeriodPunches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.Store.GetPeriod(ctx, generic.PeriodID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Failed to get period", err)
		return
	}
	punches, err := h.Store.ListPunches(ctx, p.EmployeeID, p.Period)
	if err != nil {
		h.fail(w, r, "Failed to list punches", err)
		return
	}
	writeJSON(w, http.StatusOK, toPunchDTOs(punches))
}

// GetPeriodSummary computes the payroll summary of a period.
// GET /api/periods/{id}/summary[?preview=true]
func (h *Handler) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.PeriodID(chi.URLParam(r, "id"))
	preview, _ := strconv.ParseBool(r.URL.Query().Get("preview"))

	var (
		summary attendance.PeriodSummary
		err     error
	)
	if preview {
		summary, err = h.Service.Preview(ctx, id)
	} else {
		summary, err = h.Service.PeriodSummary(ctx, id)
	}
	if err != nil {
		h.fail(w, r, "Failed to compute period summary", err)
		return
	}

	var employeeID generic.EmployeeID
	if p, err := h.Store.GetPeriod(ctx, id); err == nil {
		employeeID = p.EmployeeID
	}
	dto := toSummaryDTO(employeeID, summary)
	dto.Preview = preview
	writeJSON(w, http.StatusOK, dto)
}

// SetPeriodStatus moves a period to another status.
// PUT /api/periods/{id}/status
func (h *Handler) SetPeriodStatus(w http.ResponseWriter, r *http.Request) {
	var req SetPeriodStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	status, err := attendance.ParsePeriodStatus(req.Status)
	if err != nil {
		h.fail(w, r, "Invalid status", err)
		return
	}

	p, err := h.Service.SetPeriodStatus(r.Context(), generic.PeriodID(chi.URLParam(r, "id")), status, req.Notes)
	if err != nil {
		h.fail(w, r, "Failed to update period status", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// GetConfig returns the labor configuration in force.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, version, err := h.Config.Current(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load config", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigDTO{Version: version, Config: factory.ToJSON(cfg)})
}

// UpdateConfig stores a new config version. Keys missing from the body
// take their defaults.
// PUT /api/config
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	patch, err := h.configFactory.Parse(string(body))
	if err != nil {
		h.fail(w, r, "Invalid labor config", err)
		return
	}

	cfg, version, err := h.Config.Update(r.Context(), patch)
	if err != nil {
		h.fail(w, r, "Failed to update config", err)
		return
	}
	h.logger.Info("labor config updated", slog.Int("version", version))
	writeJSON(w, http.StatusOK, ConfigDTO{Version: version, Config: factory.ToJSON(cfg)})
}

// ResetConfig stores the defaults as a new version.
func (h *Handler) ResetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, version, err := h.Config.Reset(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to reset config", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigDTO{Version: version, Config: factory.ToJSON(cfg)})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body. On failure the response is
// already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	err := h.validate.Struct(dst)
	if err == nil {
		return true
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	resp := ErrorResponse{Error: "Validation failed"}
	for _, fe := range fieldErrs {
		resp.Violations = append(resp.Violations, ViolationDTO{
			Field:   fe.Field(),
			Message: factory.ViolationMessage(fe),
		})
	}
	writeJSON(w, http.StatusBadRequest, resp)
	return false
}

// fail maps a domain error to its HTTP status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), message,
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}
	var cfgErr *generic.ConfigError
	if errors.As(err, &cfgErr) {
		for _, v := range cfgErr.Violations {
			resp.Violations = append(resp.Violations, ViolationDTO{Field: v.Field, Message: v.Message})
		}
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case attendance.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case attendance.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
