package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
	"github.com/warp/punchclock/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEmployee(t *testing.T, store *sqlite.Store) attendance.Employee {
	t.Helper()
	e := attendance.Employee{
		ID:            "emp-1",
		Name:          "Maria Souza",
		Email:         "maria@example.com",
		DailyHours:    decimal.NewFromInt(8),
		MonthlySalary: decimal.RequireFromString("5000.00"),
		ExpectedEntry: generic.MustTimeOfDay("08:30"),
	}
	require.NoError(t, store.SaveEmployee(context.Background(), e))
	return e
}

func seedPeriod(t *testing.T, store *sqlite.Store) attendance.ClosingPeriod {
	t.Helper()
	p, err := store.CreatePeriod(context.Background(), attendance.ClosingPeriod{
		ID:         "per-1",
		EmployeeID: "emp-1",
		Period:     generic.MonthPeriod(2024, time.March),
	})
	require.NoError(t, err)
	return p
}

func at(s string) *generic.TimeOfDay {
	t := generic.MustTimeOfDay(s)
	return &t
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	want := seedEmployee(t, store)

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.MonthlySalary.Equal(got.MonthlySalary))
	assert.True(t, want.DailyHours.Equal(got.DailyHours))
	assert.Equal(t, "08:30", got.ExpectedEntry.String())

	// Upsert keeps a single row
	want.Name = "Maria S. Souza"
	require.NoError(t, store.SaveEmployee(ctx, want))
	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Maria S. Souza", all[0].Name)

	_, err = store.GetEmployee(ctx, "nobody")
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

// =============================================================================
// PUNCHES
// =============================================================================

func TestPunches_OrderAndCount(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	period := seedPeriod(t, store)

	day := generic.NewTimePoint(2024, time.March, 4)
	add := func(id string, date generic.TimePoint, clock *generic.TimeOfDay, kind attendance.TimeKind) attendance.PunchRecord {
		p, err := store.AddPunch(ctx, attendance.PunchRecord{
			ID:         generic.PunchID(id),
			EmployeeID: "emp-1",
			PeriodID:   period.ID,
			Date:       date,
			Time:       clock,
			TimeKind:   kind,
			DayKind:    attendance.DayNormal,
			Status:     attendance.RecordComplete,
		})
		require.NoError(t, err)
		return p
	}

	first := add("p-1", day, at("17:00"), attendance.TimeExit)
	second := add("p-2", day, at("08:00"), attendance.TimeEntry)
	add("p-3", day.AddDays(-10), at("08:00"), attendance.TimeEntry) // February
	add("p-4", day, nil, "")

	assert.Less(t, first.Seq, second.Seq)

	punches, err := store.ListPunches(ctx, "emp-1", period.Period)
	require.NoError(t, err)
	require.Len(t, punches, 3)
	assert.Equal(t, generic.PunchID("p-1"), punches[0].ID, "creation order within a day")
	assert.Equal(t, "17:00", punches[0].Time.String())
	assert.Nil(t, punches[2].Time)

	n, err := store.CountTimedPunches(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.AddPunch(ctx, attendance.PunchRecord{
		ID: "p-1", EmployeeID: "emp-1", Date: day,
		DayKind: attendance.DayNormal, Status: attendance.RecordComplete,
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidPunch)
}

func TestPunches_UpdateKeepsSeq(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	period := seedPeriod(t, store)

	p, err := store.AddPunch(ctx, attendance.PunchRecord{
		ID:         "p-1",
		EmployeeID: "emp-1",
		PeriodID:   period.ID,
		Date:       generic.NewTimePoint(2024, time.March, 4),
		Time:       at("08:10"),
		TimeKind:   attendance.TimeEntry,
		DayKind:    attendance.DayNormal,
		Status:     attendance.RecordPending,
	})
	require.NoError(t, err)

	p.Time = at("08:00")
	p.Status = attendance.RecordComplete
	p.Note = "corrected by manager"
	require.NoError(t, store.UpdatePunch(ctx, p))

	got, err := store.GetPunch(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, p.Seq, got.Seq)
	assert.Equal(t, "08:00", got.Time.String())
	assert.Equal(t, attendance.RecordComplete, got.Status)
	assert.Equal(t, "corrected by manager", got.Note)

	err = store.UpdatePunch(ctx, attendance.PunchRecord{ID: "ghost", DayKind: attendance.DayNormal, Status: attendance.RecordComplete})
	assert.ErrorIs(t, err, attendance.ErrPunchNotFound)
}

// =============================================================================
// CLOSING PERIODS
// =============================================================================

func TestPeriods_CreateIsIdempotentPerBounds(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	first := seedPeriod(t, store)

	again, err := store.CreatePeriod(ctx, attendance.ClosingPeriod{
		ID:         "per-2",
		EmployeeID: "emp-1",
		Period:     generic.MonthPeriod(2024, time.March),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, attendance.PeriodOpen, again.Status)

	found, err := store.FindPeriod(ctx, "emp-1", generic.NewTimePoint(2024, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = store.FindPeriod(ctx, "emp-1", generic.NewTimePoint(2024, time.April, 1))
	assert.ErrorIs(t, err, attendance.ErrPeriodNotFound)
}

func TestPeriods_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	seedPeriod(t, store)
	_, err := store.CreatePeriod(ctx, attendance.ClosingPeriod{
		ID:         "per-apr",
		EmployeeID: "emp-1",
		Period:     generic.MonthPeriod(2024, time.April),
	})
	require.NoError(t, err)

	periods, err := store.ListPeriods(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, generic.PeriodID("per-apr"), periods[0].ID)

	all, err := store.ListPeriods(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPeriods_TotalsCompareAndSwap(t *testing.T) {
	// GIVEN: A period at version 0
	// WHEN: Two writers both read version 0 and write
	// THEN: The first wins, the second gets a concurrent modification

	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	period := seedPeriod(t, store)
	require.Zero(t, period.Version)

	totals := attendance.PeriodTotals{
		WorkedHours:   decimal.RequireFromString("176.5"),
		OvertimeHours: decimal.RequireFromString("8.5"),
		OwedHours:     decimal.Zero,
		NightHours:    decimal.RequireFromString("1.25"),
	}

	version, err := store.UpdatePeriodTotals(ctx, period.ID, 0, totals)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = store.UpdatePeriodTotals(ctx, period.ID, 0, attendance.PeriodTotals{})
	assert.ErrorIs(t, err, generic.ErrConcurrentModification)
	assert.True(t, generic.IsRetryable(err))

	got, err := store.GetPeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, got.Totals.WorkedHours.Equal(totals.WorkedHours))
	assert.True(t, got.Totals.OvertimeHours.Equal(totals.OvertimeHours))
	assert.True(t, got.Totals.NightHours.Equal(totals.NightHours))

	_, err = store.UpdatePeriodTotals(ctx, "missing", 0, totals)
	assert.ErrorIs(t, err, attendance.ErrPeriodNotFound)
}

func TestPeriods_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	period := seedPeriod(t, store)

	require.NoError(t, store.UpdatePeriodStatus(ctx, period.ID, attendance.PeriodUnderReview, "sent to HR"))
	require.NoError(t, store.UpdatePeriodStatus(ctx, period.ID, attendance.PeriodApproved, ""))

	got, err := store.GetPeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.PeriodApproved, got.Status)
	assert.Equal(t, "sent to HR", got.Notes, "empty notes keep the previous ones")

	err = store.UpdatePeriodStatus(ctx, "missing", attendance.PeriodClosed, "")
	assert.ErrorIs(t, err, attendance.ErrPeriodNotFound)
}

// =============================================================================
// LABOR CONFIG
// =============================================================================

func TestLaborConfig_Versions(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	doc, version, err := store.LatestLaborConfig(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc)
	assert.Zero(t, version)

	v1, err := store.SaveLaborConfig(ctx, `{"usarHoraExtra40":true}`)
	require.NoError(t, err)
	v2, err := store.SaveLaborConfig(ctx, `{"usarHoraExtra40":false}`)
	require.NoError(t, err)
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)

	doc, version, err = store.LatestLaborConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.JSONEq(t, `{"usarHoraExtra40":false}`, doc)

	history, err := store.LaborConfigHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
}

func TestReset_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedEmployee(t, store)
	seedPeriod(t, store)
	_, err := store.SaveLaborConfig(ctx, `{}`)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	periods, err := store.ListPeriods(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, periods)

	v, err := store.SaveLaborConfig(ctx, `{}`)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "version sequence restarts")
}

// =============================================================================
// SERVICE OVER SQLITE
// =============================================================================

func TestService_SummaryPersistsTotals(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := attendance.NewService(store, attendance.StaticConfig(attendance.DefaultLaborConfig()), nil)

	_, err := svc.CreateEmployee(ctx, attendance.Employee{
		ID:            "emp-1",
		Name:          "Maria Souza",
		MonthlySalary: decimal.NewFromInt(5000),
		ExpectedEntry: generic.MustTimeOfDay("08:00"),
	})
	require.NoError(t, err)

	day := generic.NewTimePoint(2024, time.March, 4)
	var periodID generic.PeriodID
	for _, p := range []struct {
		at   string
		kind attendance.TimeKind
	}{
		{"08:00", attendance.TimeEntry},
		{"12:00", attendance.TimeLunchOut},
		{"13:00", attendance.TimeLunchIn},
		{"19:00", attendance.TimeExit},
	} {
		rec, err := svc.RegisterPunch(ctx, attendance.PunchRecord{
			EmployeeID: "emp-1",
			Date:       day,
			Time:       at(p.at),
			TimeKind:   p.kind,
		})
		require.NoError(t, err)
		periodID = rec.PeriodID
	}
	require.NotEmpty(t, periodID)

	summary, err := svc.PeriodSummary(ctx, periodID)
	require.NoError(t, err)
	assert.True(t, summary.WorkedHours.Equal(decimal.NewFromInt(10)))
	assert.True(t, summary.OvertimeHours.Equal(decimal.NewFromInt(2)))

	stored, err := store.GetPeriod(ctx, periodID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.True(t, stored.Totals.WorkedHours.Equal(decimal.NewFromInt(10)))
	assert.True(t, stored.Totals.OvertimeHours.Equal(decimal.NewFromInt(2)))
}
