package physics

import (
	"fmt"
	"math"
	"strconv"
)

// Settings holds every tunable of the solver. Units are per frame: a Step
// advances one unit of time, split into SubSteps sub-steps.
type Settings struct {
	Gravity                float64 `json:"gravity"`
	Friction               float64 `json:"friction"` // fraction of velocity kept per unit time
	BounceDamping          float64 `json:"bounce_damping"`
	SleepVelocityThreshold float64 `json:"sleep_velocity_threshold"`
	SleepTimeThreshold     int     `json:"sleep_time_threshold"` // in sub-steps
	AllowedPenetration     float64 `json:"allowed_penetration"`
	BaumgarteFactor        float64 `json:"baumgarte_factor"`
	VelocityIterations     int     `json:"velocity_iterations"`
	PositionIterations     int     `json:"position_iterations"`
	SubSteps               int     `json:"sub_steps"`
	FrictionEnabled        bool    `json:"friction_enabled"`
	FrictionCoefficient    float64 `json:"friction_coefficient"`
}

// DefaultSettings returns the tuning the letter demo ships with.
func DefaultSettings() Settings {
	return Settings{
		Gravity:                0.3,
		Friction:               0.99,
		BounceDamping:          0.5,
		SleepVelocityThreshold: 0.1,
		SleepTimeThreshold:     60,
		AllowedPenetration:     0.05,
		BaumgarteFactor:        0.2,
		VelocityIterations:     8,
		PositionIterations:     20,
		SubSteps:               2,
		FrictionEnabled:        false,
		FrictionCoefficient:    0.15,
	}
}

// Validate reports the first tunable that would corrupt body state.
func (s Settings) Validate() error {
	floats := []struct {
		key   string
		value float64
	}{
		{"gravity", s.Gravity},
		{"friction", s.Friction},
		{"bounce_damping", s.BounceDamping},
		{"sleep_velocity_threshold", s.SleepVelocityThreshold},
		{"allowed_penetration", s.AllowedPenetration},
		{"baumgarte_factor", s.BaumgarteFactor},
		{"friction_coefficient", s.FrictionCoefficient},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidSettings, f.key, f.value)
		}
	}

	switch {
	case s.Friction <= 0 || s.Friction > 1:
		return fmt.Errorf("%w: friction must be in (0, 1], got %v", ErrInvalidSettings, s.Friction)
	case s.BounceDamping < 0 || s.BounceDamping > 1:
		return fmt.Errorf("%w: bounce_damping must be in [0, 1], got %v", ErrInvalidSettings, s.BounceDamping)
	case s.BaumgarteFactor < 0 || s.BaumgarteFactor > 1:
		return fmt.Errorf("%w: baumgarte_factor must be in [0, 1], got %v", ErrInvalidSettings, s.BaumgarteFactor)
	case s.SleepVelocityThreshold < 0:
		return fmt.Errorf("%w: sleep_velocity_threshold must not be negative", ErrInvalidSettings)
	case s.SleepTimeThreshold < 0:
		return fmt.Errorf("%w: sleep_time_threshold must not be negative", ErrInvalidSettings)
	case s.AllowedPenetration < 0:
		return fmt.Errorf("%w: allowed_penetration must not be negative", ErrInvalidSettings)
	case s.FrictionCoefficient < 0:
		return fmt.Errorf("%w: friction_coefficient must not be negative", ErrInvalidSettings)
	case s.VelocityIterations < 0:
		return fmt.Errorf("%w: velocity_iterations must not be negative", ErrInvalidSettings)
	case s.PositionIterations < 0:
		return fmt.Errorf("%w: position_iterations must not be negative", ErrInvalidSettings)
	case s.SubSteps < 1:
		return fmt.Errorf("%w: sub_steps must be at least 1, got %d", ErrInvalidSettings, s.SubSteps)
	}
	return nil
}

// SettingEntry describes one tunable for the tuning API.
type SettingEntry struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	ValueType   string `json:"value_type"`
	Description string `json:"description"`
}

type settingField struct {
	key         string
	valueType   string
	description string
	get         func(s *Settings) string
	set         func(s *Settings, value string) error
}

func floatField(key, description string, ptr func(s *Settings) *float64) settingField {
	return settingField{
		key:         key,
		valueType:   "float",
		description: description,
		get: func(s *Settings) string {
			return strconv.FormatFloat(*ptr(s), 'g', -1, 64)
		},
		set: func(s *Settings, value string) error {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid float value for %s: %s", ErrInvalidSettings, key, value)
			}
			*ptr(s) = v
			return nil
		},
	}
}

func intField(key, description string, ptr func(s *Settings) *int) settingField {
	return settingField{
		key:         key,
		valueType:   "int",
		description: description,
		get: func(s *Settings) string {
			return strconv.Itoa(*ptr(s))
		},
		set: func(s *Settings, value string) error {
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: invalid integer value for %s: %s", ErrInvalidSettings, key, value)
			}
			*ptr(s) = v
			return nil
		},
	}
}

func boolField(key, description string, ptr func(s *Settings) *bool) settingField {
	return settingField{
		key:         key,
		valueType:   "bool",
		description: description,
		get: func(s *Settings) string {
			return strconv.FormatBool(*ptr(s))
		},
		set: func(s *Settings, value string) error {
			if value != "true" && value != "false" {
				return fmt.Errorf("%w: invalid boolean value for %s: %s (must be 'true' or 'false')", ErrInvalidSettings, key, value)
			}
			*ptr(s) = value == "true"
			return nil
		},
	}
}

var settingFields = []settingField{
	floatField("gravity", "downward acceleration per frame", func(s *Settings) *float64 { return &s.Gravity }),
	floatField("friction", "fraction of velocity kept per frame", func(s *Settings) *float64 { return &s.Friction }),
	floatField("bounce_damping", "restitution for walls and ball contacts", func(s *Settings) *float64 { return &s.BounceDamping }),
	floatField("sleep_velocity_threshold", "speed below which a body counts towards sleep", func(s *Settings) *float64 { return &s.SleepVelocityThreshold }),
	intField("sleep_time_threshold", "slow sub-steps before a body sleeps", func(s *Settings) *int { return &s.SleepTimeThreshold }),
	floatField("allowed_penetration", "overlap tolerated without correction", func(s *Settings) *float64 { return &s.AllowedPenetration }),
	floatField("baumgarte_factor", "fraction of penetration fed back as velocity bias", func(s *Settings) *float64 { return &s.BaumgarteFactor }),
	intField("velocity_iterations", "sequential impulse passes per sub-step", func(s *Settings) *int { return &s.VelocityIterations }),
	intField("position_iterations", "position correction passes per sub-step", func(s *Settings) *int { return &s.PositionIterations }),
	intField("sub_steps", "sub-steps per frame", func(s *Settings) *int { return &s.SubSteps }),
	boolField("friction_enabled", "solve tangential contact friction", func(s *Settings) *bool { return &s.FrictionEnabled }),
	floatField("friction_coefficient", "Coulomb friction coefficient", func(s *Settings) *float64 { return &s.FrictionCoefficient }),
}

func lookupSettingField(key string) (settingField, bool) {
	for _, f := range settingFields {
		if f.key == key {
			return f, true
		}
	}
	return settingField{}, false
}

// Get returns the string form of a tunable.
func (s *Settings) Get(key string) (string, error) {
	f, ok := lookupSettingField(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return f.get(s), nil
}

// Set parses value according to the tunable's type and applies it only when
// the resulting settings still validate.
func (s *Settings) Set(key, value string) error {
	f, ok := lookupSettingField(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	next := *s
	if err := f.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// Entries lists every tunable in a stable order.
func (s *Settings) Entries() []SettingEntry {
	entries := make([]SettingEntry, 0, len(settingFields))
	for _, f := range settingFields {
		entries = append(entries, SettingEntry{
			Key:         f.key,
			Value:       f.get(s),
			ValueType:   f.valueType,
			Description: f.description,
		})
	}
	return entries
}
