package attendance

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// LABOR CONFIG - Immutable rule snapshot
// =============================================================================

// LaborConfig holds the labor rules one summary is computed under.
//
// The struct has no maps, slices or pointers: assigning it copies everything,
// so a value read once at the start of a computation cannot change under it.
type LaborConfig struct {
	Overtime40  bool
	Overtime50  bool
	Overtime80  bool
	Overtime100 bool

	NightDifferential bool
	NightPercentage   decimal.Decimal
	NightStart        generic.TimeOfDay
	NightEnd          generic.TimeOfDay

	DSR bool

	BusinessDaysPerMonth int
	WeeklyLegalHours     int

	LatenessDeduction bool
	AbsenceDeduction  bool

	TimeZone           string
	LimitPunchesPerDay bool
	MaxPunchesPerDay   int
	AllowWithoutLunch  bool
}

// DefaultLaborConfig returns the statutory defaults.
func DefaultLaborConfig() LaborConfig {
	return LaborConfig{
		Overtime40:  false,
		Overtime50:  true,
		Overtime80:  false,
		Overtime100: true,

		NightDifferential: true,
		NightPercentage:   decimal.NewFromInt(20),
		NightStart:        generic.MustTimeOfDay("22:00"),
		NightEnd:          generic.MustTimeOfDay("05:00"),

		DSR: true,

		BusinessDaysPerMonth: 22,
		WeeklyLegalHours:     44,

		LatenessDeduction: true,
		AbsenceDeduction:  true,

		TimeZone:           "America/Sao_Paulo",
		LimitPunchesPerDay: true,
		MaxPunchesPerDay:   4,
		AllowWithoutLunch:  true,
	}
}

// ConfigSource supplies the labor configuration in force. Every call returns
// an independent snapshot.
type ConfigSource interface {
	LaborConfig(ctx context.Context) (LaborConfig, error)
}

// StaticConfig is a ConfigSource that always returns the same snapshot.
type StaticConfig LaborConfig

func (s StaticConfig) LaborConfig(_ context.Context) (LaborConfig, error) {
	return LaborConfig(s), nil
}
