package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// FINANCIAL VALUATOR - Hours to money
// =============================================================================

// ValuationInput carries the period quantities that have a monetary value.
type ValuationInput struct {
	MonthlySalary      decimal.Decimal
	DailyHours         decimal.Decimal
	OvertimeHours      decimal.Decimal
	NightHours         decimal.Decimal
	DSRHours           decimal.Decimal
	LatenessMinutes    int
	AbsentDays         int
	OvertimePercentage int
}

// Valuation holds unrounded monetary values. Call Rounded before presenting.
type Valuation struct {
	HourlyRate             decimal.Decimal
	OvertimeValue          decimal.Decimal
	NightDifferentialValue decimal.Decimal
	DSRValue               decimal.Decimal
	LatenessDeduction      decimal.Decimal
	AbsenceDeduction       decimal.Decimal
	TotalEarnings          decimal.Decimal
	TotalDeductions        decimal.Decimal
}

// Valuate prices the period. Every divisor is guarded: a zero divisor yields
// a zero value rather than failing.
func Valuate(in ValuationInput, cfg LaborConfig) Valuation {
	days := generic.Dec(cfg.BusinessDaysPerMonth)
	rate := generic.SafeDiv(in.MonthlySalary, days.Mul(in.DailyHours))
	premium := decimal.NewFromInt(1).Add(generic.Percent(generic.Dec(in.OvertimePercentage)))

	v := Valuation{
		HourlyRate:    rate,
		OvertimeValue: in.OvertimeHours.Mul(rate).Mul(premium),
	}
	if cfg.NightDifferential {
		v.NightDifferentialValue = in.NightHours.Mul(rate).Mul(generic.Percent(cfg.NightPercentage))
	}
	if cfg.DSR {
		v.DSRValue = in.DSRHours.Mul(rate).Mul(premium)
	}
	if cfg.LatenessDeduction {
		v.LatenessDeduction = generic.HoursFromMinutes(in.LatenessMinutes).Mul(rate)
	}
	if cfg.AbsenceDeduction {
		v.AbsenceDeduction = generic.Dec(in.AbsentDays).Mul(generic.SafeDiv(in.MonthlySalary, days))
	}

	v.TotalEarnings = v.OvertimeValue.Add(v.NightDifferentialValue).Add(v.DSRValue)
	v.TotalDeductions = v.LatenessDeduction.Add(v.AbsenceDeduction)
	return v
}

// Rounded returns a copy with every value rounded half-up to cents. Totals are
// rounded from the unrounded sums, so they may differ by a cent from the sum
// of the rounded parts.
func (v Valuation) Rounded() Valuation {
	return Valuation{
		HourlyRate:             generic.RoundMoney(v.HourlyRate),
		OvertimeValue:          generic.RoundMoney(v.OvertimeValue),
		NightDifferentialValue: generic.RoundMoney(v.NightDifferentialValue),
		DSRValue:               generic.RoundMoney(v.DSRValue),
		LatenessDeduction:      generic.RoundMoney(v.LatenessDeduction),
		AbsenceDeduction:       generic.RoundMoney(v.AbsenceDeduction),
		TotalEarnings:          generic.RoundMoney(v.TotalEarnings),
		TotalDeductions:        generic.RoundMoney(v.TotalDeductions),
	}
}
