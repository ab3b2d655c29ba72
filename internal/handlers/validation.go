package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/belphemur/storefront/internal/config"
	"github.com/belphemur/storefront/internal/constants"
	"github.com/belphemur/storefront/internal/hours"
)

// newValidator builds a validator that reports JSON field names and knows the storefront tags
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	stringRule := func(check func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}
	}
	// Registration only fails for empty tags
	_ = v.RegisterValidation("weekday", stringRule(constants.IsValidDayOfWeek))
	_ = v.RegisterValidation("clocktime", stringRule(hours.IsClockTime))
	_ = v.RegisterValidation("alias", stringRule(constants.IsValidAlias))
	_ = v.RegisterValidation("whatsapp", stringRule(constants.IsValidWhatsApp))
	// Unlike the built-in timezone rule this accepts "Local"
	_ = v.RegisterValidation("tz", stringRule(func(name string) bool {
		_, err := config.LoadLocation(name)
		return err == nil
	}))

	return v
}

// describeValidationErrors turns validator errors into stable "field: rule" lines
func describeValidationErrors(errs validator.ValidationErrors) []string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		// Drop the top-level struct name from the namespace
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		details = append(details, fmt.Sprintf("%s: %s", field, rule))
	}
	return details
}

// CreateShopRequest is the body of POST /api/shops
type CreateShopRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Alias    string `json:"alias" validate:"omitempty,alias"`
	WhatsApp string `json:"whatsapp" validate:"omitempty,whatsapp"`
}

// DayHoursRequest is one day of PUT /api/shops/{id}/hours
type DayHoursRequest struct {
	Day       string `json:"day" validate:"required,weekday"`
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime" validate:"required_if=IsOpen true,omitempty,clocktime"`
	CloseTime string `json:"closeTime" validate:"required_if=IsOpen true,omitempty,clocktime"`
}

// UpdateHoursRequest is the body of PUT /api/shops/{id}/hours
type UpdateHoursRequest struct {
	Hours []DayHoursRequest `json:"hours" validate:"required,max=7,dive"`
}

// Schedule converts the request into a weekly schedule, keeping the given order
func (r UpdateHoursRequest) Schedule() hours.WeeklySchedule {
	schedule := make(hours.WeeklySchedule, 0, len(r.Hours))
	for _, d := range r.Hours {
		schedule = append(schedule, hours.DaySchedule{
			Day:       d.Day,
			IsOpen:    d.IsOpen,
			OpenTime:  d.OpenTime,
			CloseTime: d.CloseTime,
		})
	}
	return schedule
}

// UpdateSettingsRequest is the body of PUT /api/settings
type UpdateSettingsRequest struct {
	SearchAfterClose *bool  `json:"searchAfterClose" validate:"required"`
	Timezone         string `json:"timezone" validate:"required,tz"`
}
