package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
	"github.com/warp/punchclock/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T, store attendance.Store) (*attendance.Service, attendance.Employee) {
	t.Helper()
	svc := attendance.NewService(store, attendance.StaticConfig(attendance.DefaultLaborConfig()), nil)
	emp, err := svc.CreateEmployee(context.Background(), attendance.Employee{
		ID:            "emp-1",
		Name:          "João Silva",
		MonthlySalary: dec("5000"),
		ExpectedEntry: *clock("08:00"),
	})
	require.NoError(t, err)
	return svc, emp
}

func registerDay(t *testing.T, svc *attendance.Service, date generic.TimePoint, times ...string) attendance.PunchRecord {
	t.Helper()
	kinds := []attendance.TimeKind{attendance.TimeEntry, attendance.TimeLunchOut, attendance.TimeLunchIn, attendance.TimeExit}
	var last attendance.PunchRecord
	for i, at := range times {
		p, err := svc.RegisterPunch(context.Background(), attendance.PunchRecord{
			EmployeeID: "emp-1",
			Date:       date,
			Time:       clock(at),
			TimeKind:   kinds[i],
		})
		require.NoError(t, err)
		last = p
	}
	return last
}

// flakyStore fails the first n totals writes with a concurrent modification.
type flakyStore struct {
	*memory.Store
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) UpdatePeriodTotals(ctx context.Context, id generic.PeriodID, v int64, totals attendance.PeriodTotals) (int64, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return 0, generic.ErrConcurrentModification
	}
	return f.Store.UpdatePeriodTotals(ctx, id, v, totals)
}

// =============================================================================
// PERIOD SUMMARY
// =============================================================================

func TestService_PeriodSummary_UnknownPeriod(t *testing.T) {
	svc, _ := newTestService(t, memory.New())

	_, err := svc.PeriodSummary(context.Background(), "missing")

	assert.ErrorIs(t, err, attendance.ErrPeriodNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func TestService_PeriodSummary_PersistsTotals(t *testing.T) {
	// GIVEN: Two regular days punched through the service
	// WHEN: Requesting the period summary
	// THEN: Totals are written back and the period version moves

	store := memory.New()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	p := registerDay(t, svc, march(4), "08:00", "12:00", "13:00", "17:00")
	registerDay(t, svc, march(5), "08:00", "12:00", "13:00", "18:00")

	summary, err := svc.PeriodSummary(ctx, p.PeriodID)
	require.NoError(t, err)
	assertDecimal(t, "17", summary.WorkedHours)
	assertDecimal(t, "1", summary.OvertimeHours)

	period, err := store.GetPeriod(ctx, p.PeriodID)
	require.NoError(t, err)
	assertDecimal(t, "17", period.Totals.WorkedHours)
	assertDecimal(t, "1", period.Totals.OvertimeHours)
	assert.True(t, period.Totals.OwedHours.IsZero())
	assert.Equal(t, int64(1), period.Version)

	// Recomputing overwrites with the same values
	_, err = svc.PeriodSummary(ctx, p.PeriodID)
	require.NoError(t, err)
	period, _ = store.GetPeriod(ctx, p.PeriodID)
	assertDecimal(t, "17", period.Totals.WorkedHours)
	assert.Equal(t, int64(2), period.Version)
}

func TestService_PeriodSummary_RetriesOnConcurrentWrite(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failures: 2}
	svc, _ := newTestService(t, store)
	p := registerDay(t, svc, march(4), "08:00", "12:00", "13:00", "17:00")

	summary, err := svc.PeriodSummary(context.Background(), p.PeriodID)

	require.NoError(t, err)
	assertDecimal(t, "8", summary.WorkedHours)
	assert.Equal(t, 3, store.calls)
}

func TestService_PeriodSummary_GivesUpAfterThreeConflicts(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failures: 10}
	svc, _ := newTestService(t, store)
	p := registerDay(t, svc, march(4), "08:00", "12:00", "13:00", "17:00")

	_, err := svc.PeriodSummary(context.Background(), p.PeriodID)

	assert.ErrorIs(t, err, generic.ErrConcurrentModification)
	assert.True(t, generic.IsRetryable(err))
	assert.Equal(t, 3, store.calls)
}

func TestService_PeriodSummary_ConcurrentCallers(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store)
	p := registerDay(t, svc, march(4), "08:00", "12:00", "13:00", "17:00")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PeriodSummary(context.Background(), p.PeriodID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	period, err := store.GetPeriod(context.Background(), p.PeriodID)
	require.NoError(t, err)
	assertDecimal(t, "8", period.Totals.WorkedHours)
}

func TestService_PeriodSummary_CanceledContext(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	p := registerDay(t, svc, march(4), "08:00", "17:00")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.PeriodSummary(ctx, p.PeriodID)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

// =============================================================================
// PUNCH REGISTRATION
// =============================================================================

func TestService_RegisterPunch_OpensMonthPeriod(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	first := registerDay(t, svc, march(4), "08:00")
	second := registerDay(t, svc, march(20), "08:00")

	assert.NotEmpty(t, first.PeriodID)
	assert.Equal(t, first.PeriodID, second.PeriodID, "same month, same period")

	period, err := store.GetPeriod(ctx, first.PeriodID)
	require.NoError(t, err)
	assert.Equal(t, attendance.PeriodOpen, period.Status)
	assert.True(t, period.Period.Start.Equal(march(1)))
	assert.True(t, period.Period.End.Equal(march(31)))

	april := registerDay(t, svc, generic.NewTimePoint(2024, time.April, 1), "08:00")
	assert.NotEqual(t, first.PeriodID, april.PeriodID)
}

func TestService_RegisterPunch_EnforcesDailyLimit(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()
	registerDay(t, svc, march(4), "08:00", "12:00", "13:00", "17:00")

	_, err := svc.RegisterPunch(ctx, attendance.PunchRecord{
		EmployeeID: "emp-1", Date: march(4), Time: clock("18:00"),
	})

	assert.ErrorIs(t, err, attendance.ErrPunchLimitReached)
	var limitErr *attendance.PunchLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 4, limitErr.Limit)
	assert.True(t, attendance.IsConflict(err))

	// Day-level records carry no time and are not limited
	_, err = svc.RegisterPunch(ctx, attendance.PunchRecord{
		EmployeeID: "emp-1", Date: march(4), DayKind: attendance.DayHoliday,
	})
	assert.NoError(t, err)
}

func TestService_RegisterPunch_LimitDisabled(t *testing.T) {
	cfg := attendance.DefaultLaborConfig()
	cfg.LimitPunchesPerDay = false
	store := memory.New()
	svc := attendance.NewService(store, attendance.StaticConfig(cfg), nil)
	_, err := svc.CreateEmployee(context.Background(), attendance.Employee{ID: "emp-1", Name: "A"})
	require.NoError(t, err)

	registerDay(t, svc, march(4), "08:00", "12:00", "13:00", "17:00")
	_, err = svc.RegisterPunch(context.Background(), attendance.PunchRecord{
		EmployeeID: "emp-1", Date: march(4), Time: clock("18:00"),
	})
	assert.NoError(t, err)
}

func TestService_RegisterPunch_Validation(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	_, err := svc.RegisterPunch(ctx, attendance.PunchRecord{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrInvalidPunch)

	_, err = svc.RegisterPunch(ctx, attendance.PunchRecord{
		EmployeeID: "emp-1", Date: march(4), TimeKind: attendance.TimeEntry,
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidPunch, "tagged punch needs a time")

	_, err = svc.RegisterPunch(ctx, attendance.PunchRecord{
		EmployeeID: "emp-1", Date: march(4), Time: clock("08:00"), DayKind: "SICK",
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidKind)

	_, err = svc.RegisterPunch(ctx, attendance.PunchRecord{
		EmployeeID: "nobody", Date: march(4), Time: clock("08:00"),
	})
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestService_CorrectPunch(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store)
	ctx := context.Background()
	p := registerDay(t, svc, march(4), "08:00")

	corrected := *clock("08:05")
	note := "badge reader offline"
	got, err := svc.CorrectPunch(ctx, p.ID, attendance.PunchPatch{Time: &corrected, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "08:05", got.Time.String())

	stored, err := store.GetPunch(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:05", stored.Time.String())
	assert.Equal(t, note, stored.Note)
	assert.Equal(t, p.Seq, stored.Seq)

	april := generic.NewTimePoint(2024, time.April, 2)
	moved, err := svc.CorrectPunch(ctx, p.ID, attendance.PunchPatch{Date: &april})
	require.NoError(t, err)
	assert.NotEqual(t, p.PeriodID, moved.PeriodID)

	_, err = svc.CorrectPunch(ctx, "missing", attendance.PunchPatch{})
	assert.ErrorIs(t, err, attendance.ErrPunchNotFound)
}

// =============================================================================
// PERIODS
// =============================================================================

func TestService_OpenPeriod_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()

	a, err := svc.OpenPeriod(ctx, "emp-1", 2024, time.March)
	require.NoError(t, err)
	b, err := svc.OpenPeriod(ctx, "emp-1", 2024, time.March)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)

	_, err = svc.OpenPeriod(ctx, "emp-1", 2024, time.Month(13))
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)

	_, err = svc.OpenPeriod(ctx, "nobody", 2024, time.March)
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestService_SetPeriodStatus_AnyOrder(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	ctx := context.Background()
	p, err := svc.OpenPeriod(ctx, "emp-1", 2024, time.March)
	require.NoError(t, err)

	closed, err := svc.SetPeriodStatus(ctx, p.ID, attendance.PeriodClosed, "closed by payroll")
	require.NoError(t, err)
	assert.Equal(t, attendance.PeriodClosed, closed.Status)
	assert.Equal(t, "closed by payroll", closed.Notes)

	reopened, err := svc.SetPeriodStatus(ctx, p.ID, attendance.PeriodOpen, "")
	require.NoError(t, err)
	assert.Equal(t, attendance.PeriodOpen, reopened.Status)

	_, err = svc.SetPeriodStatus(ctx, p.ID, "ARCHIVED", "")
	assert.ErrorIs(t, err, attendance.ErrInvalidKind)
}

func TestService_EnsureCurrentPeriods(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store)
	ctx := context.Background()
	_, err := svc.CreateEmployee(ctx, attendance.Employee{ID: "emp-2", Name: "Maria Santos"})
	require.NoError(t, err)

	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	created, err := svc.EnsureCurrentPeriods(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = svc.EnsureCurrentPeriods(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, created)

	periods, err := store.ListPeriods(ctx, "")
	require.NoError(t, err)
	assert.Len(t, periods, 2)
}

func TestService_EnsureCurrentPeriods_UsesConfiguredTimeZone(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	// 02:00 UTC on April 1st is still March 31st in Sao Paulo
	now := time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC)
	_, err := svc.EnsureCurrentPeriods(ctx, now)
	require.NoError(t, err)

	_, err = store.FindPeriod(ctx, "emp-1", march(31))
	assert.NoError(t, err)
}
