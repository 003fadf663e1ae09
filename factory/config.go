/*
Package factory provides JSON to Go labor configuration conversion.

PURPOSE:
  Converts JSON labor configuration documents into attendance.LaborConfig
  values. Administrators edit the rules as JSON through the API; the stored
  document is versioned and every summary is computed from one immutable
  snapshot built here.

JSON SCHEMA (every key optional, missing keys keep the defaults):
  {
    "usarHoraExtra40": false,
    "usarHoraExtra50": true,
    "usarHoraExtra80": false,
    "usarHoraExtra100": true,
    "calcularAdicionalNoturno": true,
    "percentualAdicionalNoturno": 20,
    "horarioInicioNoturno": "22:00",
    "horarioFimNoturno": "05:00",
    "calcularDSR": true,
    "diasUteisPorMes": 22,
    "horasSemanaisLegais": 44,
    "aplicarDescontoPorAtraso": true,
    "aplicarDescontoPorFalta": true,
    "fusoHorario": "America/Sao_Paulo",
    "limitarRegistrosPorDia": true,
    "quantidadeMaximaRegistrosPorDia": 4,
    "permitirRegistroSemAlmoco": true
  }

VALIDATION:
  Struct tags checked with go-playground/validator. All violations are
  reported together as a *generic.ConfigError.

USAGE:
  f := factory.NewConfigFactory()
  cfg, err := f.Build(`{"usarHoraExtra40": true}`)

SEE ALSO:
  - provider.go: versioned storage + snapshot reads
  - attendance/config.go: LaborConfig
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/attendance"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LaborConfigJSON is the wire and storage form of a labor configuration.
// Pointer fields distinguish "not given" from the zero value.
type LaborConfigJSON struct {
	Overtime40  *bool `json:"usarHoraExtra40,omitempty"`
	Overtime50  *bool `json:"usarHoraExtra50,omitempty"`
	Overtime80  *bool `json:"usarHoraExtra80,omitempty"`
	Overtime100 *bool `json:"usarHoraExtra100,omitempty"`

	NightDifferential *bool    `json:"calcularAdicionalNoturno,omitempty"`
	NightPercentage   *float64 `json:"percentualAdicionalNoturno,omitempty" validate:"omitnil,gte=0,lte=100"`
	NightStart        *string  `json:"horarioInicioNoturno,omitempty" validate:"omitnil,hhmm"`
	NightEnd          *string  `json:"horarioFimNoturno,omitempty" validate:"omitnil,hhmm"`

	DSR *bool `json:"calcularDSR,omitempty"`

	BusinessDaysPerMonth *int `json:"diasUteisPorMes,omitempty" validate:"omitnil,gte=1,lte=31"`
	WeeklyLegalHours     *int `json:"horasSemanaisLegais,omitempty" validate:"omitnil,gte=1,lte=168"`

	LatenessDeduction *bool `json:"aplicarDescontoPorAtraso,omitempty"`
	AbsenceDeduction  *bool `json:"aplicarDescontoPorFalta,omitempty"`

	TimeZone           *string `json:"fusoHorario,omitempty" validate:"omitnil,timezone"`
	LimitPunchesPerDay *bool   `json:"limitarRegistrosPorDia,omitempty"`
	MaxPunchesPerDay   *int    `json:"quantidadeMaximaRegistrosPorDia,omitempty" validate:"omitnil,gte=1,lte=24"`
	AllowWithoutLunch  *bool   `json:"permitirRegistroSemAlmoco,omitempty"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON documents to LaborConfig values.
type ConfigFactory struct {
	validate *validator.Validate
}

// NewConfigFactory creates a factory with the labor config validations
// registered.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{validate: NewValidator()}
}

// NewValidator returns a validator reporting JSON field names and knowing
// the "hhmm" tag. The HTTP layer validates request bodies with it too.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return v
}

// Parse decodes and validates a JSON document. Unknown keys are rejected so
// that typos do not silently keep a default.
func (f *ConfigFactory) Parse(jsonStr string) (LaborConfigJSON, error) {
	var doc LaborConfigJSON
	dec := json.NewDecoder(bytes.NewBufferString(jsonStr))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return LaborConfigJSON{}, &generic.ConfigError{Violations: []generic.FieldViolation{
			{Field: "document", Message: err.Error()},
		}}
	}
	if err := f.Validate(doc); err != nil {
		return LaborConfigJSON{}, err
	}
	return doc, nil
}

// Validate checks doc against its struct tags.
func (f *ConfigFactory) Validate(doc LaborConfigJSON) error {
	err := f.validate.Struct(doc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate labor config: %w", err)
	}
	cfgErr := &generic.ConfigError{}
	for _, fe := range fieldErrs {
		cfgErr.Violations = append(cfgErr.Violations, generic.FieldViolation{
			Field:   fe.Field(),
			Message: ViolationMessage(fe),
		})
	}
	return cfgErr
}

// ViolationMessage renders a field error for API clients.
func ViolationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be an email address"
	case "datetime":
		return "must be a date in " + fe.Param() + " form"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "hhmm":
		return "must be a HH:mm time"
	case "timezone":
		return "must be an IANA time zone"
	}
	return "failed " + fe.Tag()
}

// Build parses jsonStr and merges it over the defaults.
func (f *ConfigFactory) Build(jsonStr string) (attendance.LaborConfig, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return attendance.DefaultLaborConfig(), nil
	}
	doc, err := f.Parse(jsonStr)
	if err != nil {
		return attendance.LaborConfig{}, err
	}
	return Merge(attendance.DefaultLaborConfig(), doc), nil
}

// Merge applies every field present in patch on top of base. The patch is
// expected to be validated.
func Merge(base attendance.LaborConfig, patch LaborConfigJSON) attendance.LaborConfig {
	cfg := base
	setBool(&cfg.Overtime40, patch.Overtime40)
	setBool(&cfg.Overtime50, patch.Overtime50)
	setBool(&cfg.Overtime80, patch.Overtime80)
	setBool(&cfg.Overtime100, patch.Overtime100)
	setBool(&cfg.NightDifferential, patch.NightDifferential)
	if patch.NightPercentage != nil {
		cfg.NightPercentage = decimal.NewFromFloat(*patch.NightPercentage)
	}
	if patch.NightStart != nil {
		if t, err := generic.ParseTimeOfDay(*patch.NightStart); err == nil {
			cfg.NightStart = t
		}
	}
	if patch.NightEnd != nil {
		if t, err := generic.ParseTimeOfDay(*patch.NightEnd); err == nil {
			cfg.NightEnd = t
		}
	}
	setBool(&cfg.DSR, patch.DSR)
	setInt(&cfg.BusinessDaysPerMonth, patch.BusinessDaysPerMonth)
	setInt(&cfg.WeeklyLegalHours, patch.WeeklyLegalHours)
	setBool(&cfg.LatenessDeduction, patch.LatenessDeduction)
	setBool(&cfg.AbsenceDeduction, patch.AbsenceDeduction)
	if patch.TimeZone != nil {
		cfg.TimeZone = *patch.TimeZone
	}
	setBool(&cfg.LimitPunchesPerDay, patch.LimitPunchesPerDay)
	setInt(&cfg.MaxPunchesPerDay, patch.MaxPunchesPerDay)
	setBool(&cfg.AllowWithoutLunch, patch.AllowWithoutLunch)
	return cfg
}

// ToJSON renders every field of cfg.
func ToJSON(cfg attendance.LaborConfig) LaborConfigJSON {
	pct := cfg.NightPercentage.InexactFloat64()
	start, end := cfg.NightStart.String(), cfg.NightEnd.String()
	days, weekly, maxPunches := cfg.BusinessDaysPerMonth, cfg.WeeklyLegalHours, cfg.MaxPunchesPerDay
	tz := cfg.TimeZone
	return LaborConfigJSON{
		Overtime40:           boolPtr(cfg.Overtime40),
		Overtime50:           boolPtr(cfg.Overtime50),
		Overtime80:           boolPtr(cfg.Overtime80),
		Overtime100:          boolPtr(cfg.Overtime100),
		NightDifferential:    boolPtr(cfg.NightDifferential),
		NightPercentage:      &pct,
		NightStart:           &start,
		NightEnd:             &end,
		DSR:                  boolPtr(cfg.DSR),
		BusinessDaysPerMonth: &days,
		WeeklyLegalHours:     &weekly,
		LatenessDeduction:    boolPtr(cfg.LatenessDeduction),
		AbsenceDeduction:     boolPtr(cfg.AbsenceDeduction),
		TimeZone:             &tz,
		LimitPunchesPerDay:   boolPtr(cfg.LimitPunchesPerDay),
		MaxPunchesPerDay:     &maxPunches,
		AllowWithoutLunch:    boolPtr(cfg.AllowWithoutLunch),
	}
}

// Marshal renders cfg as a complete JSON document.
func Marshal(cfg attendance.LaborConfig) (string, error) {
	b, err := json.Marshal(ToJSON(cfg))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func boolPtr(b bool) *bool { return &b }
