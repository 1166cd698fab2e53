package api

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"user-management/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names so details line up with payloads.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// birth_date arrives as a string and must be a parseable date.
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := model.ParseDate(fl.Field().String())
		return err == nil
	})

	return v
}

// UserCreatePayload requires every field; unknown fields in the body are
// dropped by encoding/json for forward compatibility.
type UserCreatePayload struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Surname   string `json:"surname" validate:"required,min=2,max=255"`
	BirthDate string `json:"birth_date" validate:"required,date"`
	Sex       string `json:"sex" validate:"required,oneof=male female other"`
}

// UserUpdatePayload validates the same rules but makes every field
// optional. The repository still replaces every column on update.
type UserUpdatePayload struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=255"`
	Surname   string `json:"surname" validate:"omitempty,min=2,max=255"`
	BirthDate string `json:"birth_date" validate:"omitempty,date"`
	Sex       string `json:"sex" validate:"omitempty,oneof=male female other"`
}

type GroupCreatePayload struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

type GroupUpdatePayload struct {
	Name string `json:"name" validate:"omitempty,min=2,max=255"`
}

type MembershipPayload struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	GroupID int64 `json:"group_id" validate:"required,gt=0"`
}

func (p *UserCreatePayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
}

func (p *UserCreatePayload) toUser() model.User {
	d, _ := model.ParseDate(p.BirthDate)
	return model.User{Name: p.Name, Surname: p.Surname, BirthDate: d, Sex: model.Sex(p.Sex)}
}

func (p *UserUpdatePayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
}

func (p *UserUpdatePayload) toUser() model.User {
	d, _ := model.ParseDate(p.BirthDate)
	return model.User{Name: p.Name, Surname: p.Surname, BirthDate: d, Sex: model.Sex(p.Sex)}
}

func (p *GroupCreatePayload) normalize() { p.Name = strings.TrimSpace(p.Name) }
func (p *GroupUpdatePayload) normalize() { p.Name = strings.TrimSpace(p.Name) }

type normalizer interface{ normalize() }

// checkPayload normalizes then validates, collecting every violation so a
// client sees all of them in one round trip.
func checkPayload(payload any) []ErrorDetail {
	if n, ok := payload.(normalizer); ok {
		n.normalize()
	}

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ErrorDetail{{Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s length must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s length must be less than or equal to %s characters long", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "date":
		return fmt.Sprintf("%s must be in ISO 8601 date format", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be a positive number", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Pagination carries validated paging parameters.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePagination applies defaults (page=1, limit=10) and collects every
// violation; limit above 100 is rejected rather than silently clamped.
func parsePagination(c *fiber.Ctx) (Pagination, []ErrorDetail) {
	p := Pagination{Page: defaultPage, Limit: defaultLimit}
	var details []ErrorDetail

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			details = append(details, ErrorDetail{Field: "page", Message: "page must be a positive integer"})
		} else {
			p.Page = n
		}
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 1:
			details = append(details, ErrorDetail{Field: "limit", Message: "limit must be a positive integer"})
		case n > maxLimit:
			details = append(details, ErrorDetail{Field: "limit", Message: fmt.Sprintf("limit must be less than or equal to %d", maxLimit)})
		default:
			p.Limit = n
		}
	}

	return p, details
}
