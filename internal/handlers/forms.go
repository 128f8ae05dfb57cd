package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type registerForm struct {
	Username        string `form:"username" binding:"required,min=2,max=20"`
	Email           string `form:"email" binding:"required,email,max=120"`
	Password        string `form:"password" binding:"required,max=72"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	// Checkbox values vary by browser ("y", "on"); any value means checked.
	Remember string `form:"remember"`
}

type recipeForm struct {
	Title        string `form:"title" binding:"required,max=100"`
	Description  string `form:"description"`
	Ingredients  string `form:"ingredients" binding:"required"`
	Instructions string `form:"instructions" binding:"required"`
}

type commentForm struct {
	Comment string `form:"comment" binding:"required"`
}

type ratingForm struct {
	Rating int `form:"rating" binding:"required,min=1,max=5"`
}

type passwordForm struct {
	CurrentPassword string `form:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" binding:"required,max=72"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=NewPassword"`
}

var registerTagNames sync.Once

// useFormTagNames makes validator report fields by their form name, so
// errors line up with the inputs on the page.
func useFormTagNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindForm binds the POSTed form into obj. It returns nil on success, or the
// per-field messages to show next to the inputs. A value that cannot be
// decoded at all (e.g. letters in a number field) is reported on fallback.
func bindForm(c *gin.Context, obj any, fallback string) map[string]string {
	useFormTagNames()

	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{fallback: "Please enter a valid value."}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "eqfield":
		return "Field must be equal to password."
	case "min", "max":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be between %d and %d.", label(fe.Field()), models.MinRating, models.MaxRating)
		}
		if fe.Tag() == "min" {
			return fmt.Sprintf("Must be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	}
	return "Invalid value."
}

func label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// serviceFieldErrors extracts the per-field messages of a services.ValidationError.
func serviceFieldErrors(err error) (map[string]string, bool) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func noErrors() map[string]string {
	return map[string]string{}
}
