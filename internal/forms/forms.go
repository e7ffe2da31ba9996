// Package forms parses the HTML forms of the site into structs and reports
// field-level problems in a shape templates can render next to each input.
package forms

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

type LinkForm struct {
	OriginalURL string `form:"original_url" binding:"required,max=512"`
}

type RegisterForm struct {
	Email         string `form:"email" binding:"required"`
	Password      string `form:"password" binding:"required"`
	PasswordAgain string `form:"password_again" binding:"required"`
	Name          string `form:"name" binding:"required"`
	About         string `form:"about"`
}

type LoginForm struct {
	Email      string `form:"email" binding:"required"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

// Bind fills form from the request body. A non-nil FieldErrors means the
// form was rejected; any other failure is returned under the "form" key.
func Bind(c *gin.Context, form interface{}) FieldErrors {
	err := c.ShouldBind(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": "malformed form submission"}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fieldName(form, fe)
		if _, seen := out[name]; !seen {
			out[name] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "invalid value"
	}
}
