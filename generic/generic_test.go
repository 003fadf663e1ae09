package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// TIME OF DAY
// =============================================================================

func TestParseTimeOfDay(t *testing.T) {
	valid := map[string]int{
		"00:00":   0,
		"08:00":   480,
		"8:30":    510,
		"23:59":   1439,
		" 22:00 ": 1320,
	}
	for in, want := range valid {
		got, err := generic.ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.Minutes(), in)
	}

	for _, in := range []string{"", "24:00", "12:60", "1200", "12:5", "ab:cd", "-1:00", "123:00"} {
		_, err := generic.ParseTimeOfDay(in)
		assert.ErrorIs(t, err, generic.ErrInvalidTimeOfDay, in)
		assert.True(t, generic.IsClientError(err))
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	type payload struct {
		At generic.TimeOfDay `json:"at"`
	}
	b, err := json.Marshal(payload{At: generic.MustTimeOfDay("7:05")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:05"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"at":"22:15"}`), &p))
	assert.Equal(t, "22:15", p.At.String())

	assert.Error(t, json.Unmarshal([]byte(`{"at":"25:00"}`), &p))
}

func TestTimeOfDay_Sub(t *testing.T) {
	a := generic.MustTimeOfDay("08:15")
	b := generic.MustTimeOfDay("08:00")
	assert.Equal(t, 15, a.Sub(b))
	assert.Equal(t, -15, b.Sub(a))
	assert.True(t, b.Before(a))
}

// =============================================================================
// INTERVALS ON THE 48H TIMELINE
// =============================================================================

func TestSpanOf_CrossesMidnight(t *testing.T) {
	span := generic.SpanOf(generic.MustTimeOfDay("20:00"), generic.MustTimeOfDay("06:00"))
	assert.Equal(t, generic.Interval{Start: 1200, End: 1800}, span)
	assert.Equal(t, 600, span.Len())

	empty := generic.SpanOf(generic.MustTimeOfDay("09:00"), generic.MustTimeOfDay("09:00"))
	assert.Zero(t, empty.Len())
}

func TestWindowSegments(t *testing.T) {
	wrapping := generic.WindowSegments(generic.MustTimeOfDay("22:00"), generic.MustTimeOfDay("05:00"))
	assert.Equal(t, []generic.Interval{
		{Start: 0, End: 300},
		{Start: 1320, End: 1740},
		{Start: 2760, End: 2880},
	}, wrapping)

	plain := generic.WindowSegments(generic.MustTimeOfDay("13:00"), generic.MustTimeOfDay("14:00"))
	assert.Equal(t, []generic.Interval{
		{Start: 780, End: 840},
		{Start: 2220, End: 2280},
	}, plain)

	assert.Nil(t, generic.WindowSegments(generic.MustTimeOfDay("10:00"), generic.MustTimeOfDay("10:00")))
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 30, generic.Overlap(generic.Interval{Start: 0, End: 60}, generic.Interval{Start: 30, End: 90}))
	assert.Zero(t, generic.Overlap(generic.Interval{Start: 0, End: 60}, generic.Interval{Start: 60, End: 90}))
	assert.Zero(t, generic.Overlap(generic.Interval{Start: 100, End: 50}, generic.Interval{Start: 0, End: 200}))
}

// =============================================================================
// PERIODS AND CALENDAR DAYS
// =============================================================================

func TestBusinessDays(t *testing.T) {
	assert.Equal(t, 21, generic.MonthPeriod(2024, time.March).BusinessDays())
	assert.Equal(t, 21, generic.MonthPeriod(2024, time.February).BusinessDays())
	assert.Equal(t, 23, generic.MonthPeriod(2024, time.July).BusinessDays())

	weekend := generic.Period{
		Start: generic.NewTimePoint(2024, time.March, 2),
		End:   generic.NewTimePoint(2024, time.March, 3),
	}
	assert.Zero(t, weekend.BusinessDays())
}

func TestMonthPeriod_Bounds(t *testing.T) {
	p := generic.MonthPeriod(2024, time.February)
	assert.Equal(t, "2024-02-01", p.Start.Key())
	assert.Equal(t, "2024-02-29", p.End.Key())
	assert.Len(t, p.Days(), 29)
	assert.True(t, p.Contains(generic.NewTimePoint(2024, time.February, 29)))
	assert.False(t, p.Contains(generic.NewTimePoint(2024, time.March, 1)))

	assert.Equal(t, p, generic.MonthOf(generic.NewTimePoint(2024, time.February, 17)))
}

func TestPeriod_Validate(t *testing.T) {
	bad := generic.Period{
		Start: generic.NewTimePoint(2024, time.March, 31),
		End:   generic.NewTimePoint(2024, time.March, 1),
	}
	assert.ErrorIs(t, bad.Validate(), generic.ErrInvalidPeriod)
	assert.ErrorIs(t, generic.Period{}.Validate(), generic.ErrInvalidPeriod)
	assert.NoError(t, generic.MonthPeriod(2024, time.March).Validate())
}

func TestParseDate(t *testing.T) {
	d, err := generic.ParseDate("2024-03-03")
	require.NoError(t, err)
	assert.True(t, d.IsSunday())
	assert.False(t, d.IsBusinessDay())

	_, err = generic.ParseDate("03/03/2024")
	assert.Error(t, err)
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

func TestDecimalHelpers(t *testing.T) {
	assert.True(t, generic.HoursFromMinutes(90).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, generic.SafeDiv(decimal.NewFromInt(5), decimal.Zero).IsZero())
	assert.True(t, generic.ClampZero(decimal.NewFromInt(-3)).IsZero())
	assert.True(t, generic.RoundMoney(decimal.RequireFromString("28.40909")).Equal(decimal.RequireFromString("28.41")))
	assert.True(t, generic.RoundMoney(decimal.RequireFromString("0.125")).Equal(decimal.RequireFromString("0.13")))
	assert.True(t, generic.Percent(decimal.NewFromInt(20)).Equal(decimal.RequireFromString("0.2")))
}
