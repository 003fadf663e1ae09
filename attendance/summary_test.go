package attendance_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
)

func summaryInput(records []attendance.PunchRecord) attendance.SummaryInput {
	return attendance.SummaryInput{
		PeriodID:      "period-1",
		Period:        march2024(),
		DailyHours:    dec("8"),
		MonthlySalary: dec("5000"),
		ExpectedEntry: *clock("08:00"),
		Records:       records,
		Config:        attendance.DefaultLaborConfig(),
	}
}

// marchWeekdays returns the first n Mon-Fri dates of March 2024.
func marchWeekdays(n int) []generic.TimePoint {
	var out []generic.TimePoint
	for _, d := range march2024().Days() {
		if len(out) == n {
			break
		}
		if d.IsBusinessDay() {
			out = append(out, d)
		}
	}
	return out
}

func regularDays(n int, exit string) []attendance.PunchRecord {
	var records []attendance.PunchRecord
	for _, d := range marchWeekdays(n) {
		records = append(records, workday(d, "08:00", "12:00", "13:00", exit)...)
	}
	return records
}

// =============================================================================
// ZERO AND BOUNDARY CASES
// =============================================================================

func TestSummarize_NoPunches_AllZero(t *testing.T) {
	// GIVEN: A period with no punches at all
	// WHEN: Summarizing
	// THEN: Every numeric field is zero, nothing panics

	s := attendance.Summarize(summaryInput(nil))

	assert.Zero(t, s.WorkedDays)
	assert.Zero(t, s.AbsentDays)
	assert.Zero(t, s.HolidayDays)
	assert.Zero(t, s.ExpectedBusinessDays)
	assert.Zero(t, s.LatenessMinutes)
	assert.Zero(t, s.OvertimePercentage)
	for name, d := range map[string]decimal.Decimal{
		"average": s.AverageHours, "worked": s.WorkedHours, "overtime": s.OvertimeHours,
		"owed": s.OwedHours, "night": s.NightHours, "dsr": s.DSRHours,
		"rate": s.HourlyRate, "overtimeValue": s.OvertimeValue, "nightValue": s.NightDifferentialValue,
		"dsrValue": s.DSRValue, "lateness": s.LatenessDeduction, "absence": s.AbsenceDeduction,
		"earnings": s.TotalEarnings, "deductions": s.TotalDeductions,
	} {
		assert.True(t, d.IsZero(), "%s should be zero, got %s", name, d)
	}
	assert.True(t, s.Totals.WorkedHours.IsZero())
	assert.Empty(t, s.Anomalies)
}

func TestSummarize_BusinessDaysInMarch2024(t *testing.T) {
	s := attendance.Summarize(summaryInput(regularDays(1, "17:00")))
	assert.Equal(t, 21, s.ExpectedBusinessDays)
}

func TestSummarize_TenRegularDays_NoOvertimeNoOwed(t *testing.T) {
	// GIVEN: 10 workable days of exactly 8h (08-12, 13-17)
	// WHEN: Summarizing with dailyHours=8
	// THEN: worked = expected = 80h, so overtime = owed = 0

	s := attendance.Summarize(summaryInput(regularDays(10, "17:00")))

	assert.Equal(t, 10, s.WorkedDays)
	assertDecimal(t, "80", s.WorkedHours)
	assertDecimal(t, "8", s.AverageHours)
	assert.True(t, s.OvertimeHours.IsZero())
	assert.True(t, s.OwedHours.IsZero())
	assert.True(t, s.NightHours.IsZero())
	assert.Zero(t, s.LatenessMinutes)
	assert.Equal(t, 11, s.AbsentDays)
	assert.Equal(t, 50, s.OvertimePercentage)
	assertDecimal(t, "28.41", s.HourlyRate)
}

func TestSummarize_OvertimeAndOwedNeverBothPositive(t *testing.T) {
	for _, exit := range []string{"15:00", "16:30", "17:00", "17:45", "19:00"} {
		s := attendance.Summarize(summaryInput(regularDays(7, exit)))
		assert.True(t, decimal.Min(s.OvertimeHours, s.OwedHours).IsZero(), "exit %s", exit)
	}
}

func TestSummarize_OwedHours(t *testing.T) {
	s := attendance.Summarize(summaryInput(regularDays(2, "16:00")))

	assertDecimal(t, "14", s.WorkedHours)
	assertDecimal(t, "2", s.OwedHours)
	assert.True(t, s.OvertimeHours.IsZero())
	assert.True(t, s.DSRHours.IsZero())
}

// =============================================================================
// MONEY
// =============================================================================

func TestSummarize_OvertimeValuation(t *testing.T) {
	// GIVEN: Five 9h days (08-12, 13-18), salary 5000, 8h/day
	// THEN:  45h worked, 5h overtime at 50%, DSR 5/6h,
	//        16 absent business days in March 2024

	s := attendance.Summarize(summaryInput(regularDays(5, "18:00")))

	assertDecimal(t, "45", s.WorkedHours)
	assertDecimal(t, "5", s.OvertimeHours)
	assert.Equal(t, 50, s.OvertimePercentage)
	assert.Equal(t, 16, s.AbsentDays)

	assertDecimal(t, "213.07", s.OvertimeValue)
	assertDecimal(t, "35.51", s.DSRValue)
	assertDecimal(t, "248.58", s.TotalEarnings)
	assertDecimal(t, "3636.36", s.AbsenceDeduction)
	assertDecimal(t, "3636.36", s.TotalDeductions)
}

func TestSummarize_NetFromRoundedComponentsWithinACent(t *testing.T) {
	inputs := []attendance.SummaryInput{
		summaryInput(regularDays(5, "18:00")),
		summaryInput(regularDays(12, "18:17")),
		summaryInput(append(regularDays(3, "17:00"), workday(march(3), "20:00", "23:00", "23:30", "06:00")...)),
	}
	for i, in := range inputs {
		s := attendance.Summarize(in)
		recomputed := s.OvertimeValue.Add(s.NightDifferentialValue).Add(s.DSRValue).
			Sub(s.LatenessDeduction).Sub(s.AbsenceDeduction)
		diff := recomputed.Sub(s.Net()).Abs()
		assert.True(t, diff.LessThanOrEqual(dec("0.01")), "input %d: net %s vs %s", i, s.Net(), recomputed)
	}
}

func TestSummarize_LatenessDeduction(t *testing.T) {
	records := regularDays(1, "17:00")
	records[0].Time = clock("08:30")

	s := attendance.Summarize(summaryInput(records))

	assert.Equal(t, 30, s.LatenessMinutes)
	// 0.5h * 28.4090... = 14.2045...
	assertDecimal(t, "14.20", s.LatenessDeduction)
}

// =============================================================================
// DAY CLASSES, NIGHT WORK, SUNDAY
// =============================================================================

func TestSummarize_HolidayAndExcusedDays(t *testing.T) {
	records := regularDays(2, "17:00")
	records = append(records,
		dayRecord(march(29), attendance.DayHoliday),
		dayRecord(march(28), attendance.DayVacation),
		dayRecord(march(27), attendance.DayAbsenceUnexcused),
	)

	s := attendance.Summarize(summaryInput(records))

	assert.Equal(t, 2, s.WorkedDays)
	assert.Equal(t, 1, s.HolidayDays)
	assert.Equal(t, 1, s.ExcusedDays)
	// businessDays - workedDays - holidayDays
	assert.Equal(t, 21-2-1, s.AbsentDays)
	assertDecimal(t, "16", s.WorkedHours)
}

func TestSummarize_WeekendVacationLeavesAbsencesAlone(t *testing.T) {
	// GIVEN: Ten regular weekdays plus VACATION on Sat 03-02 and Sun 03-03
	records := append(regularDays(10, "17:00"),
		dayRecord(march(2), attendance.DayVacation),
		dayRecord(march(3), attendance.DayVacation),
	)

	// WHEN: Summarizing
	s := attendance.Summarize(summaryInput(records))

	// THEN: Absences are 21 - 10 - 0, the weekend records change nothing
	assert.Equal(t, 2, s.ExcusedDays)
	assert.Equal(t, 11, s.AbsentDays)
	assertDecimal(t, "2500", s.AbsenceDeduction)
}

func TestSummarize_MonthOfUnexcusedAbsences(t *testing.T) {
	// GIVEN: An unexcused absence on every business day of March 2024
	var records []attendance.PunchRecord
	for _, d := range marchWeekdays(21) {
		records = append(records, dayRecord(d, attendance.DayAbsenceUnexcused))
	}

	// WHEN: Summarizing
	s := attendance.Summarize(summaryInput(records))

	// THEN: The days are workable, so the whole month is deducted
	assert.Zero(t, s.WorkedDays)
	assert.Equal(t, 21, s.ExpectedBusinessDays)
	assert.Equal(t, 21, s.AbsentDays)
	assertDecimal(t, "28.41", s.HourlyRate)
	// 21 * 5000 / 22
	assertDecimal(t, "4772.73", s.AbsenceDeduction)
	assertDecimal(t, "4772.73", s.TotalDeductions)
	assert.True(t, s.WorkedHours.IsZero())
	assert.True(t, s.OwedHours.IsZero())
}

func TestSummarize_HolidaysOnly_AllZero(t *testing.T) {
	records := []attendance.PunchRecord{
		dayRecord(march(29), attendance.DayHoliday),
		dayRecord(march(28), attendance.DayVacation),
	}

	s := attendance.Summarize(summaryInput(records))

	assert.Equal(t, 1, s.HolidayDays)
	assert.Zero(t, s.ExpectedBusinessDays)
	assert.Zero(t, s.AbsentDays)
	assert.True(t, s.AbsenceDeduction.IsZero())
}

func TestSummarize_SundayNightShift(t *testing.T) {
	// GIVEN: Sunday 2024-03-03, 20:00 to 06:00 without lunch
	// THEN: 10h worked, 7h inside 22:00-05:00, 2h overtime at 100%

	records := []attendance.PunchRecord{
		punch(march(3), "20:00", attendance.TimeEntry),
		punch(march(3), "06:00", attendance.TimeExit),
	}
	in := summaryInput(records)
	in.ExpectedEntry = *clock("20:00")

	s := attendance.Summarize(in)

	require.Equal(t, 1, s.WorkedDays)
	assertDecimal(t, "10", s.WorkedHours)
	assertDecimal(t, "7", s.NightHours)
	assertDecimal(t, "2", s.OvertimeHours)
	assert.Equal(t, 100, s.OvertimePercentage)
	assert.Zero(t, s.LatenessMinutes)
	assertDecimal(t, "7", s.Totals.NightHours)
}

func TestSummarize_InvertedLunchFlaggedNotDeducted(t *testing.T) {
	records := workday(march(4), "08:00", "13:00", "12:00", "17:00")

	s := attendance.Summarize(summaryInput(records))

	assertDecimal(t, "9", s.WorkedHours)
	assert.Contains(t, codes(s.Anomalies), attendance.AnomalyInvertedLunch)
}

func TestSummarize_MissingLunchWhenRequired(t *testing.T) {
	records := []attendance.PunchRecord{
		punch(march(4), "08:00", attendance.TimeEntry),
		punch(march(4), "16:00", attendance.TimeExit),
	}
	in := summaryInput(records)
	in.Config.AllowWithoutLunch = false

	s := attendance.Summarize(in)

	assert.Contains(t, codes(s.Anomalies), attendance.AnomalyMissingLunch)
	assertDecimal(t, "8", s.WorkedHours)
}

func TestSummarize_DefaultsDailyHours(t *testing.T) {
	in := summaryInput(regularDays(1, "18:00"))
	in.DailyHours = decimal.Zero

	s := attendance.Summarize(in)

	assertDecimal(t, "1", s.OvertimeHours)
}

// =============================================================================
// PURITY
// =============================================================================

func TestSummarize_IsIdempotent(t *testing.T) {
	in := summaryInput(append(regularDays(6, "18:10"),
		workday(march(3), "20:00", "23:00", "23:30", "06:00")...))

	first, err := json.Marshal(attendance.Summarize(in))
	require.NoError(t, err)
	second, err := json.Marshal(attendance.Summarize(in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAggregator_LogsOneWarningPerAnomaly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	records := workday(march(4), "08:00", "13:00", "12:00", "17:00")

	s := attendance.Aggregator{Logger: logger}.Summarize(summaryInput(records))

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, len(s.Anomalies), lines)
	assert.Contains(t, buf.String(), `"code":"inverted_lunch"`)
}
