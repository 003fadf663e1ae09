package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// NIGHT HOURS
// =============================================================================

// NightMinutes returns how many minutes of the worked span first..last fall
// inside the configured night window. A last earlier than first means the
// span crossed midnight. Returns 0 when the night differential is off.
//
//	window 22:00-05:00, span 20:00-06:00 -> 420
//	window 22:00-05:00, span 08:00-17:00 -> 0
func NightMinutes(first, last generic.TimeOfDay, cfg LaborConfig) int {
	if !cfg.NightDifferential {
		return 0
	}
	return generic.OverlapWithSegments(
		generic.SpanOf(first, last),
		generic.WindowSegments(cfg.NightStart, cfg.NightEnd),
	)
}

// =============================================================================
// LATENESS
// =============================================================================

// LatenessMinutes returns max(0, actual - expected), or 0 when lateness
// deduction is off.
func LatenessMinutes(expected, actual generic.TimeOfDay, cfg LaborConfig) int {
	if !cfg.LatenessDeduction {
		return 0
	}
	return max(0, actual.Sub(expected))
}

// =============================================================================
// OVERTIME POLICY
// =============================================================================

// DefaultOvertimePercentage applies when no tier is enabled.
const DefaultOvertimePercentage = 50

// OvertimePercentage picks the overtime premium. Sunday or holiday work uses
// the 100% tier when enabled; otherwise the first enabled of 40, 50 and 80
// wins, falling back to 50.
func OvertimePercentage(sundayOrHoliday bool, cfg LaborConfig) int {
	if sundayOrHoliday && cfg.Overtime100 {
		return 100
	}
	switch {
	case cfg.Overtime40:
		return 40
	case cfg.Overtime50:
		return 50
	case cfg.Overtime80:
		return 80
	}
	return DefaultOvertimePercentage
}

// =============================================================================
// DSR (paid weekly rest reflex)
// =============================================================================

var six = decimal.NewFromInt(6)

// DSRHours returns overtime/6 when DSR is enabled and overtime is positive.
func DSRHours(overtime decimal.Decimal, cfg LaborConfig) decimal.Decimal {
	if !cfg.DSR || !overtime.IsPositive() {
		return decimal.Zero
	}
	return overtime.Div(six)
}
