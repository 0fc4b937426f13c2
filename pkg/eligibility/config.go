package eligibility

import "fmt"

// Defaults used when neither the configuration nor the policy document
// provides a value.
const (
	DefaultInitialWaitingDays     = 30
	DefaultPreExistingWaitingDays = 1095
	DefaultAccidentWaitingDays    = 30
	DefaultSeniorAge              = 60
	DefaultSeniorCopayPercent     = 10.0
	DefaultSumInsured             = 500000.0
)

// Config contains the generic rules of the engine. Values found in a policy
// document take precedence over these.
type Config struct {
	// InitialWaitingDays is the period after inception during which only
	// accidents are payable.
	// Default: 30.
	InitialWaitingDays int `yaml:"initial_waiting_days"`

	// PreExistingWaitingDays applies to conditions that predate the policy.
	// Default: 1095 (3 years).
	PreExistingWaitingDays int `yaml:"pre_existing_waiting_days"`

	// AccidentWaitingDays is the minimum gap between policy start and a
	// domestic accident.
	// Default: 30.
	AccidentWaitingDays int `yaml:"accident_waiting_days"`

	// SeniorAge is the age above which the senior co-pay applies.
	// Default: 60.
	SeniorAge int `yaml:"senior_age"`

	// SeniorCopayPercent is the age-based co-pay.
	// Default: 10.
	SeniorCopayPercent float64 `yaml:"senior_copay_percent"`

	// DefaultSumInsured is used when neither the claim nor the document
	// states a sum insured.
	// Default: 500000.
	DefaultSumInsured float64 `yaml:"default_sum_insured"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		InitialWaitingDays:     DefaultInitialWaitingDays,
		PreExistingWaitingDays: DefaultPreExistingWaitingDays,
		AccidentWaitingDays:    DefaultAccidentWaitingDays,
		SeniorAge:              DefaultSeniorAge,
		SeniorCopayPercent:     DefaultSeniorCopayPercent,
		DefaultSumInsured:      DefaultSumInsured,
	}
}

// Validate validates the engine configuration.
func (c Config) Validate() error {
	if c.InitialWaitingDays < 0 {
		return fmt.Errorf("initial_waiting_days cannot be negative")
	}
	if c.PreExistingWaitingDays < 0 {
		return fmt.Errorf("pre_existing_waiting_days cannot be negative")
	}
	if c.AccidentWaitingDays < 0 {
		return fmt.Errorf("accident_waiting_days cannot be negative")
	}
	if c.SeniorAge <= 0 {
		return fmt.Errorf("senior_age must be positive")
	}
	if c.SeniorCopayPercent < 0 || c.SeniorCopayPercent > 100 {
		return fmt.Errorf("senior_copay_percent must be between 0 and 100")
	}
	if c.DefaultSumInsured <= 0 {
		return fmt.Errorf("default_sum_insured must be positive")
	}
	return nil
}
