package post

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dkovalev/autoinstapost/app/caption"
	"github.com/dkovalev/autoinstapost/app/database"
)

// ValidateConfig checks a candidate schedule configuration before it is
// saved. Cadence-specific fields are only validated when their cadence is
// selected; the inactive ones are preserved as-is.
func ValidateConfig(c database.ScheduleConfig) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Hour, validation.Min(0), validation.Max(23)),
		validation.Field(&c.Minute, validation.Min(0), validation.Max(59)),
		validation.Field(&c.Cadence, validation.Required,
			validation.In(database.CadenceDaily, database.CadenceEveryNDays, database.CadenceWeekdays)),
		// Required runs ahead of Min because threshold rules skip the zero
		// value, and every_n_days: 0 must be rejected, not ignored.
		validation.Field(&c.EveryNDays,
			validation.When(c.Cadence == database.CadenceEveryNDays,
				validation.Required.Error("must be at least 1"),
				validation.Min(1))),
		validation.Field(&c.Weekdays,
			validation.When(c.Cadence == database.CadenceWeekdays,
				validation.Required.Error("cannot be empty"),
				validation.Each(validation.Min(0), validation.Max(6)))),
		validation.Field(&c.FolderID,
			validation.When(c.Enabled, validation.Required.Error("is required when the schedule is enabled"))),
		validation.Field(&c.DefaultCaption,
			validation.When(c.Enabled, validation.Required.Error("is required when the schedule is enabled"))),
		validation.Field(&c.Tone, validation.Required, validation.By(knownToneRule)),
	)
	if err == nil {
		return nil
	}

	fields, ok := err.(validation.Errors)
	if !ok {
		return fmt.Errorf("config validation: %w", err)
	}

	ve := &ValidationError{Fields: make(map[string]string, len(fields))}
	for name, fieldErr := range fields {
		ve.Fields[name] = fieldErr.Error()
	}
	return ve
}

func knownToneRule(value interface{}) error {
	tone, _ := value.(string)
	if !caption.KnownTone(tone) {
		return fmt.Errorf("must be one of %v", caption.Tones())
	}
	return nil
}
