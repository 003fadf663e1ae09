/*
summary.go - Period summary aggregation

PURPOSE:
  Turns one closing period's punches into the payroll summary. This is the
  only place the individual calculators are combined.

PIPELINE:
  1. GroupDays          bucket punches per date, classify the day
  2. ComputeSpan        worked minutes, first and last punch per workable day
  3. NightMinutes       night window overlap of first..last
  4. LatenessMinutes    first punch against the employee's expected entry
  5. BusinessDays       Mon-Fri count of the period; absences are
                        businessDays - workedDays - holidayDays
  6. overtime / owed    worked vs workedDays x dailyHours, clamped at zero
  7. OvertimePercentage period-wide, from "any complete day was a Sunday"
  8. DSRHours, Valuate

  Minutes are summed as integers and converted to decimal hours once, so the
  totals carry no per-day rounding.

PURITY:
  Summarize reads nothing but its input and returns a fresh value. Calling it
  twice with the same input yields equal summaries. The optional logger only
  observes anomalies.

SEE ALSO:
  - service.go: loads inputs, persists Totals with compare-and-swap
  - valuation.go: money
*/
package attendance

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/generic"
)

// SummaryInput is everything one computation needs.
type SummaryInput struct {
	PeriodID      generic.PeriodID
	Period        generic.Period
	DailyHours    decimal.Decimal
	MonthlySalary decimal.Decimal
	ExpectedEntry generic.TimeOfDay
	Records       []PunchRecord
	Config        LaborConfig
}

// PeriodSummary is the derived payroll view of a closing period. Monetary
// fields are already rounded to cents; hour fields are exact.
type PeriodSummary struct {
	PeriodID generic.PeriodID
	Period   generic.Period

	WorkedDays           int
	AbsentDays           int
	HolidayDays          int
	ExcusedDays          int
	ExpectedBusinessDays int

	AverageHours    decimal.Decimal
	WorkedHours     decimal.Decimal
	ExpectedHours   decimal.Decimal
	OvertimeHours   decimal.Decimal
	OwedHours       decimal.Decimal
	NightHours      decimal.Decimal
	LatenessMinutes int
	DSRHours        decimal.Decimal

	OvertimePercentage int

	HourlyRate             decimal.Decimal
	OvertimeValue          decimal.Decimal
	NightDifferentialValue decimal.Decimal
	DSRValue               decimal.Decimal
	LatenessDeduction      decimal.Decimal
	AbsenceDeduction       decimal.Decimal
	TotalEarnings          decimal.Decimal
	TotalDeductions        decimal.Decimal

	Days      []DaySummary
	Anomalies []Anomaly

	// Totals is what the caller writes back onto the ClosingPeriod.
	Totals PeriodTotals
}

// DaySummary is the per-day breakdown kept for review screens.
type DaySummary struct {
	Date            generic.TimePoint
	Class           DayClass
	Complete        bool
	First           *generic.TimeOfDay
	Last            *generic.TimeOfDay
	WorkedMinutes   int
	NightMinutes    int
	LatenessMinutes int
}

// Net returns earnings minus deductions.
func (s PeriodSummary) Net() decimal.Decimal {
	return s.TotalEarnings.Sub(s.TotalDeductions)
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator computes period summaries. The zero value is ready to use.
type Aggregator struct {
	// Logger receives one warning per anomaly. Nil disables logging.
	Logger *slog.Logger
}

// Summarize computes a summary without logging.
func Summarize(in SummaryInput) PeriodSummary {
	return Aggregator{}.Summarize(in)
}

// Summarize runs the full pipeline over in.
func (a Aggregator) Summarize(in SummaryInput) PeriodSummary {
	cfg := in.Config
	expectedEntry := in.ExpectedEntry
	dailyHours := in.DailyHours
	if dailyHours.IsZero() {
		dailyHours = DefaultDailyHours
	}

	out := PeriodSummary{
		PeriodID:             in.PeriodID,
		Period:               in.Period,
		ExpectedBusinessDays: in.Period.BusinessDays(),
	}

	buckets, anomalies := GroupDays(in.Records, in.Period)
	out.Anomalies = append(out.Anomalies, anomalies...)

	var workable, workedMin, nightMin, lateMin int
	sundayWorked := false

	for _, b := range buckets {
		day := DaySummary{Date: b.Date, Class: b.Class}
		switch b.Class {
		case ClassHoliday:
			out.HolidayDays++
			out.Days = append(out.Days, day)
			continue
		case ClassExcused:
			out.ExcusedDays++
			out.Days = append(out.Days, day)
			continue
		}
		workable++

		span := ComputeSpan(b)
		out.Anomalies = append(out.Anomalies, span.Anomalies...)
		if !span.Complete {
			out.Days = append(out.Days, day)
			continue
		}
		if !cfg.AllowWithoutLunch && !span.HasLunch {
			out.Anomalies = append(out.Anomalies, Anomaly{
				Date:   b.Date,
				Code:   AnomalyMissingLunch,
				Detail: "no lunch interval recorded",
			})
		}

		first, last := span.First, span.Last
		day.Complete = true
		day.First, day.Last = &first, &last
		day.WorkedMinutes = span.WorkedMinutes
		day.NightMinutes = NightMinutes(first, last, cfg)
		day.LatenessMinutes = LatenessMinutes(expectedEntry, first, cfg)

		out.WorkedDays++
		workedMin += day.WorkedMinutes
		nightMin += day.NightMinutes
		lateMin += day.LatenessMinutes
		if b.Date.IsSunday() {
			sundayWorked = true
		}
		out.Days = append(out.Days, day)
	}

	if workable == 0 {
		a.logAnomalies(in.PeriodID, out.Anomalies)
		return zeroSummary(out)
	}

	out.WorkedHours = generic.HoursFromMinutes(workedMin)
	out.NightHours = generic.HoursFromMinutes(nightMin)
	out.LatenessMinutes = lateMin
	out.AverageHours = generic.SafeDiv(out.WorkedHours, generic.Dec(out.WorkedDays))
	out.AbsentDays = max(0, out.ExpectedBusinessDays-out.WorkedDays-out.HolidayDays)

	out.ExpectedHours = generic.Dec(out.WorkedDays).Mul(dailyHours)
	out.OvertimeHours = generic.ClampZero(out.WorkedHours.Sub(out.ExpectedHours))
	out.OwedHours = generic.ClampZero(out.ExpectedHours.Sub(out.WorkedHours))

	out.OvertimePercentage = OvertimePercentage(sundayWorked, cfg)
	out.DSRHours = DSRHours(out.OvertimeHours, cfg)

	v := Valuate(ValuationInput{
		MonthlySalary:      in.MonthlySalary,
		DailyHours:         dailyHours,
		OvertimeHours:      out.OvertimeHours,
		NightHours:         out.NightHours,
		DSRHours:           out.DSRHours,
		LatenessMinutes:    out.LatenessMinutes,
		AbsentDays:         out.AbsentDays,
		OvertimePercentage: out.OvertimePercentage,
	}, cfg).Rounded()

	out.HourlyRate = v.HourlyRate
	out.OvertimeValue = v.OvertimeValue
	out.NightDifferentialValue = v.NightDifferentialValue
	out.DSRValue = v.DSRValue
	out.LatenessDeduction = v.LatenessDeduction
	out.AbsenceDeduction = v.AbsenceDeduction
	out.TotalEarnings = v.TotalEarnings
	out.TotalDeductions = v.TotalDeductions

	out.Totals = PeriodTotals{
		WorkedHours:   out.WorkedHours,
		OvertimeHours: out.OvertimeHours,
		OwedHours:     out.OwedHours,
		NightHours:    out.NightHours,
	}

	a.logAnomalies(in.PeriodID, out.Anomalies)
	return out
}

// zeroSummary keeps the observed day counters and breakdown of a period
// without a single workable day and pins every derived field to zero.
func zeroSummary(s PeriodSummary) PeriodSummary {
	z := decimal.Zero
	return PeriodSummary{
		PeriodID:    s.PeriodID,
		Period:      s.Period,
		HolidayDays: s.HolidayDays,
		ExcusedDays: s.ExcusedDays,

		AverageHours: z, WorkedHours: z, ExpectedHours: z,
		OvertimeHours: z, OwedHours: z, NightHours: z, DSRHours: z,

		HourlyRate: z, OvertimeValue: z, NightDifferentialValue: z, DSRValue: z,
		LatenessDeduction: z, AbsenceDeduction: z, TotalEarnings: z, TotalDeductions: z,

		Days:      s.Days,
		Anomalies: s.Anomalies,
		Totals:    PeriodTotals{WorkedHours: z, OvertimeHours: z, OwedHours: z, NightHours: z},
	}
}

func (a Aggregator) logAnomalies(id generic.PeriodID, anomalies []Anomaly) {
	if a.Logger == nil {
		return
	}
	for _, an := range anomalies {
		a.Logger.LogAttrs(context.Background(), slog.LevelWarn, "punch anomaly",
			slog.String("period_id", string(id)),
			slog.String("date", an.Date.Key()),
			slog.String("code", string(an.Code)),
			slog.String("detail", an.Detail),
		)
	}
}
