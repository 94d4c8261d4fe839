package wizard

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/schoolevents/internal/model"
)

// Errors maps a form field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return strings.Join(parts, "; ")
}

// stepFields lists which fields a step owns; Next only looks at these.
var stepFields = map[Step][]string{
	StepDetails:       {"title", "description", "event_type"},
	StepScheduling:    {"start", "end"},
	StepAudience:      {"groups", "subgroups", "is_everyone"},
	StepNotifications: {"reminder_hours"},
}

const msgEndAfterStart = "End date must be after start date"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "event_type", func(fl validator.FieldLevel) bool {
		return model.EventType(fl.Field().String()).Valid()
	})
	mustRegister(v, "audience_group", func(fl validator.FieldLevel) bool {
		return model.AudienceGroup(fl.Field().String()).Valid()
	})
	mustRegister(v, "reminder", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				return true
			}
			f = f.Elem()
		}
		h := int(f.Int())
		return model.ValidReminderHours(&h)
	})
	v.RegisterStructValidation(validateSchedule, Form{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func validateSchedule(sl validator.StructLevel) {
	f := sl.Current().Interface().(Form)
	if f.Start.IsZero() {
		sl.ReportError(f.Start, "start", "Start", "required", "")
	}
	if f.End.IsZero() {
		sl.ReportError(f.End, "end", "End", "required", "")
		return
	}
	if !f.Start.IsZero() && !f.End.After(f.Start) {
		sl.ReportError(f.End, "end", "End", "after_start", "")
	}
}

// Validate checks the whole form. It returns nil when the form is valid.
func Validate(f Form) Errors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"form": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, seen := out[field]; !seen {
			out[field] = message(field, fe)
		}
	}
	return out
}

// ValidateStep checks only the fields owned by step.
func ValidateStep(f Form, step Step) Errors {
	all := Validate(f)
	if all == nil {
		return nil
	}
	out := Errors{}
	for _, field := range stepFields[step.clamp()] {
		if msg, ok := all[field]; ok {
			out[field] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "after_start":
		return msgEndAfterStart
	case "event_type":
		return "Select a valid event type"
	case "audience_group":
		return "Select a valid audience group"
	case "reminder":
		return "Select a valid reminder time"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	}
	switch field {
	case "title":
		return "Title must be at least 3 characters"
	case "event_type":
		return "Select an event type"
	case "start":
		return "Start date is required"
	case "end":
		return "End date is required"
	}
	return "Invalid value"
}
