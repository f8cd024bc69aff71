package validators

import (
	"github.com/go-playground/validator/v10"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/scheduling"
	"reflect"
	"strings"
	"time"
)

// New returns a validator that reports json field names and knows the custom tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	Register(v)
	return v
}

func Register(v *validator.Validate) {
	_ = v.RegisterValidation("category", Category)
	_ = v.RegisterValidation("priority", Priority)
	_ = v.RegisterValidation("eventstatus", EventStatus)
	_ = v.RegisterValidation("meetingtype", MeetingType)
	_ = v.RegisterValidation("hhmm", Clock)
	_ = v.RegisterValidation("iso8601", IsIso8601)
	_ = v.RegisterValidation("weekday", Weekday)
	_ = v.RegisterValidation("nospaces", NoWhiteSpaces)
}

func Category(fl validator.FieldLevel) bool {
	_, ok := scheduling.TypeForCategory(entity.Category(fl.Field().String()))
	return ok
}

func Priority(fl validator.FieldLevel) bool {
	return scheduling.ValidPriority(entity.Priority(fl.Field().String()))
}

func EventStatus(fl validator.FieldLevel) bool {
	return scheduling.ValidStatus(entity.Status(fl.Field().String()))
}

func MeetingType(fl validator.FieldLevel) bool {
	return scheduling.ValidMeetingType(entity.MeetingType(fl.Field().String()))
}

func Clock(fl validator.FieldLevel) bool {
	_, err := scheduling.ParseClock(fl.Field().String())
	return err == nil
}

func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func Weekday(fl validator.FieldLevel) bool {
	d := fl.Field().Int()
	return d >= 0 && d <= 6
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), " \t\r\n")
}
