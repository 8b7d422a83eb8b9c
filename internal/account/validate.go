package account

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterInput carries self-service signup data. Any role supplied by the
// caller is ignored: new signups always get the lowest-privilege role.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"display_name" validate:"max=128"`
	School      string `json:"school" validate:"max=128"`
	Subject     string `json:"subject" validate:"max=128"`
	Tier        string `json:"category_tier" validate:"max=64"`
	Experience  int    `json:"experience_years" validate:"min=0,max=80"`
}

// CreateUserInput is the privileged variant of RegisterInput: a manager may
// set the role explicitly.
type CreateUserInput struct {
	RegisterInput
	Role string `json:"role"`
}

// ProfileUpdate carries mutable profile attributes. Username and role are
// not updatable through this path.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=128"`
	School      *string `json:"school" validate:"omitempty,max=128"`
	Subject     *string `json:"subject" validate:"omitempty,max=128"`
	Tier        *string `json:"category_tier" validate:"omitempty,max=64"`
	Experience  *int    `json:"experience_years" validate:"omitempty,min=0,max=80"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(strings.ToLower(in.Username))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.School = strings.TrimSpace(in.School)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Tier = strings.TrimSpace(in.Tier)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Error: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is too short (min " + fe.Param() + ")"
	case "max":
		return "is too long (max " + fe.Param() + ")"
	default:
		return "is invalid"
	}
}
