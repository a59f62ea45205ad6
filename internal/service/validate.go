package service

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RoomInput is the room form.
type RoomInput struct {
	Name     string  `json:"name" validate:"required"`
	Capacity int     `json:"capacity" validate:"gte=1"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
}

func (in *RoomInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
}

// UserInput is the user form.
type UserInput struct {
	Name  string `json:"name" validate:"required,minwords=2"`
	Email string `json:"email" validate:"required,emailshape"`
}

func (in *UserInput) normalize() {
	in.Name = strings.Join(strings.Fields(in.Name), " ")
	in.Email = strings.TrimSpace(in.Email)
}

// BookingInput is the booking form. BookingDate is YYYY-MM-DD.
type BookingInput struct {
	RoomID      string `json:"roomId" validate:"required"`
	UserID      string `json:"userId" validate:"required"`
	BookingDate string `json:"bookingDate" validate:"required"`
	DaysStayed  int    `json:"daysStayed" validate:"gte=1,lte=3650"`
}

func (in *BookingInput) normalize() {
	in.RoomID = strings.TrimSpace(in.RoomID)
	in.UserID = strings.TrimSpace(in.UserID)
	in.BookingDate = strings.TrimSpace(in.BookingDate)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			n = 2
		}
		return len(strings.Fields(fl.Field().String())) >= n
	})

	return v
}

// check validates s and collects failures into ie.
func check(v *validator.Validate, s any, ie *InputError) {
	err := v.Struct(s)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ie.addError("form", err.Error())
		return
	}

	for _, fe := range verrs {
		ie.addError(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "emailshape":
		return "is not a valid email address"
	case "minwords":
		return "must have at least " + fe.Param() + " words"
	}
	return "is invalid"
}
