package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/factory"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// REQUEST DTOs
// =============================================================================

type CreateEmployeeRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name" validate:"required"`
	Email         string   `json:"email" validate:"omitempty,email"`
	DailyHours    *float64 `json:"daily_hours" validate:"omitnil,gt=0,lte=24"`
	MonthlySalary float64  `json:"monthly_salary" validate:"gte=0"`
	ExpectedEntry string   `json:"expected_entry" validate:"omitempty,hhmm"`
	IsAdmin       bool     `json:"is_admin"`
}

type RegisterPunchRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"omitempty,hhmm"`
	TimeKind   string `json:"time_kind"`
	DayKind    string `json:"day_kind"`
	Status     string `json:"status"`
	Note       string `json:"note" validate:"max=500"`
}

// CorrectPunchRequest only changes the fields present in the body.
type CorrectPunchRequest struct {
	Date      *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Time      *string `json:"time" validate:"omitnil,hhmm"`
	ClearTime bool    `json:"clear_time"`
	TimeKind  *string `json:"time_kind"`
	DayKind   *string `json:"day_kind"`
	Status    *string `json:"status"`
	Note      *string `json:"note" validate:"omitnil,max=500"`
}

type OpenPeriodRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Year       int    `json:"year" validate:"gte=2000,lte=2100"`
	Month      int    `json:"month" validate:"gte=1,lte=12"`
}

type SetPeriodStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE DTOs
// =============================================================================

type EmployeeDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	DailyHours    float64 `json:"daily_hours"`
	MonthlySalary float64 `json:"monthly_salary"`
	ExpectedEntry string  `json:"expected_entry"`
	IsAdmin       bool    `json:"is_admin"`
	CreatedAt     string  `json:"created_at"`
}

type PunchDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	PeriodID   string  `json:"period_id,omitempty"`
	Date       string  `json:"date"`
	Time       *string `json:"time"`
	TimeKind   string  `json:"time_kind,omitempty"`
	DayKind    string  `json:"day_kind"`
	Status     string  `json:"status"`
	Note       string  `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type TotalsDTO struct {
	WorkedHours   float64 `json:"worked_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	OwedHours     float64 `json:"owed_hours"`
	NightHours    float64 `json:"night_hours"`
}

type PeriodDTO struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	Totals     TotalsDTO `json:"totals"`
	Version    int64     `json:"version"`
	CreatedAt  string    `json:"created_at"`
}

type AnomalyDTO struct {
	Date   string `json:"date"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type DaySummaryDTO struct {
	Date            string  `json:"data"`
	Class           string  `json:"tipo"`
	Complete        bool    `json:"completo"`
	First           *string `json:"primeiroRegistro"`
	Last            *string `json:"ultimoRegistro"`
	WorkedHours     float64 `json:"horasTrabalhadas"`
	NightHours      float64 `json:"horasNoturnas"`
	LatenessMinutes int     `json:"minutosAtraso"`
}

// PeriodSummaryDTO keeps the field names of the payroll export contract.
// Money is rendered with exactly two decimals.
type PeriodSummaryDTO struct {
	PeriodID   string `json:"periodoId"`
	StartDate  string `json:"dataInicio"`
	EndDate    string `json:"dataFim"`
	EmployeeID string `json:"funcionarioId,omitempty"`

	WorkedDays           int `json:"diasTrabalhados"`
	AbsentDays           int `json:"diasFaltados"`
	HolidayDays          int `json:"diasFeriados"`
	ExcusedDays          int `json:"diasAbonados"`
	ExpectedBusinessDays int `json:"diasUteisEsperados"`

	AverageHours    float64 `json:"horasMedias"`
	WorkedHours     float64 `json:"totalHorasTrabalhadas"`
	ExpectedHours   float64 `json:"totalHorasEsperadas"`
	OvertimeHours   float64 `json:"totalHorasExtras"`
	OwedHours       float64 `json:"totalHorasDevidas"`
	NightHours      float64 `json:"totalHorasNoturnas"`
	LatenessMinutes int     `json:"totalMinutosAtraso"`
	DSRHours        float64 `json:"horasDSR"`

	OvertimePercentage int `json:"percentualHorasExtrasAplicado"`

	HourlyRate             json.Number `json:"valorHora"`
	OvertimeValue          json.Number `json:"valorHorasExtras"`
	NightDifferentialValue json.Number `json:"valorAdicionalNoturno"`
	DSRValue               json.Number `json:"valorDSR"`
	LatenessDeduction      json.Number `json:"descontoAtraso"`
	AbsenceDeduction       json.Number `json:"descontoFaltas"`
	TotalEarnings          json.Number `json:"totalProventos"`
	TotalDeductions        json.Number `json:"totalDescontos"`

	Days      []DaySummaryDTO `json:"dias"`
	Anomalies []AnomalyDTO    `json:"anomalias"`
	Preview   bool            `json:"simulacao,omitempty"`
}

type ConfigDTO struct {
	Version int                     `json:"version"`
	Config  factory.LaborConfigJSON `json:"config"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ViolationDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error      string         `json:"error"`
	Details    string         `json:"details,omitempty"`
	Violations []ViolationDTO `json:"violations,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func hours(d decimal.Decimal) float64 {
	return d.Round(4).InexactFloat64()
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toEmployeeDTO(e attendance.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		Email:         e.Email,
		DailyHours:    e.DailyHours.InexactFloat64(),
		MonthlySalary: e.MonthlySalary.InexactFloat64(),
		ExpectedEntry: e.ExpectedEntry.String(),
		IsAdmin:       e.IsAdmin,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func toPunchDTO(p attendance.PunchRecord) PunchDTO {
	dto := PunchDTO{
		ID:         string(p.ID),
		EmployeeID: string(p.EmployeeID),
		PeriodID:   string(p.PeriodID),
		Date:       p.Date.Key(),
		TimeKind:   string(p.TimeKind),
		DayKind:    string(p.DayKind),
		Status:     string(p.Status),
		Note:       p.Note,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	if p.Time != nil {
		s := p.Time.String()
		dto.Time = &s
	}
	return dto
}

func toPunchDTOs(punches []attendance.PunchRecord) []PunchDTO {
	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toPunchDTO(p)
	}
	return dtos
}

func toPeriodDTO(p attendance.ClosingPeriod) PeriodDTO {
	return PeriodDTO{
		ID:         string(p.ID),
		EmployeeID: string(p.EmployeeID),
		StartDate:  p.Period.Start.Key(),
		EndDate:    p.Period.End.Key(),
		Status:     string(p.Status),
		Notes:      p.Notes,
		Totals: TotalsDTO{
			WorkedHours:   hours(p.Totals.WorkedHours),
			OvertimeHours: hours(p.Totals.OvertimeHours),
			OwedHours:     hours(p.Totals.OwedHours),
			NightHours:    hours(p.Totals.NightHours),
		},
		Version:   p.Version,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toPeriodDTOs(periods []attendance.ClosingPeriod) []PeriodDTO {
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	return dtos
}

func toSummaryDTO(employeeID generic.EmployeeID, s attendance.PeriodSummary) PeriodSummaryDTO {
	dto := PeriodSummaryDTO{
		PeriodID:   string(s.PeriodID),
		StartDate:  s.Period.Start.Key(),
		EndDate:    s.Period.End.Key(),
		EmployeeID: string(employeeID),

		WorkedDays:           s.WorkedDays,
		AbsentDays:           s.AbsentDays,
		HolidayDays:          s.HolidayDays,
		ExcusedDays:          s.ExcusedDays,
		ExpectedBusinessDays: s.ExpectedBusinessDays,

		AverageHours:    hours(s.AverageHours),
		WorkedHours:     hours(s.WorkedHours),
		ExpectedHours:   hours(s.ExpectedHours),
		OvertimeHours:   hours(s.OvertimeHours),
		OwedHours:       hours(s.OwedHours),
		NightHours:      hours(s.NightHours),
		LatenessMinutes: s.LatenessMinutes,
		DSRHours:        hours(s.DSRHours),

		OvertimePercentage: s.OvertimePercentage,

		HourlyRate:             money(s.HourlyRate),
		OvertimeValue:          money(s.OvertimeValue),
		NightDifferentialValue: money(s.NightDifferentialValue),
		DSRValue:               money(s.DSRValue),
		LatenessDeduction:      money(s.LatenessDeduction),
		AbsenceDeduction:       money(s.AbsenceDeduction),
		TotalEarnings:          money(s.TotalEarnings),
		TotalDeductions:        money(s.TotalDeductions),

		Days:      make([]DaySummaryDTO, 0, len(s.Days)),
		Anomalies: make([]AnomalyDTO, 0, len(s.Anomalies)),
	}

	for _, d := range s.Days {
		day := DaySummaryDTO{
			Date:            d.Date.Key(),
			Class:           d.Class.String(),
			Complete:        d.Complete,
			WorkedHours:     hours(generic.HoursFromMinutes(d.WorkedMinutes)),
			NightHours:      hours(generic.HoursFromMinutes(d.NightMinutes)),
			LatenessMinutes: d.LatenessMinutes,
		}
		if d.First != nil {
			v := d.First.String()
			day.First = &v
		}
		if d.Last != nil {
			v := d.Last.String()
			day.Last = &v
		}
		dto.Days = append(dto.Days, day)
	}
	for _, a := range s.Anomalies {
		dto.Anomalies = append(dto.Anomalies, AnomalyDTO{
			Date:   a.Date.Key(),
			Code:   string(a.Code),
			Detail: a.Detail,
		})
	}
	return dto
}
