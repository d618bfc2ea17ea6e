package server

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// nonFieldErrors collects errors that do not belong to a single input.
const nonFieldErrors = "__all__"

// PostForm is the new/edit post form.
type PostForm struct {
	Text       string `form:"text" validate:"required,max=10000"`
	Group      string `form:"group"`
	ClearImage bool   `form:"image-clear"`
}

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// GroupID returns the selected group, or nil for none.
func (f PostForm) GroupID() (*uint, error) {
	if f.Group == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(f.Group, 10, 32)
	if err != nil || id == 0 {
		return nil, errors.New(invalidChoice)
	}
	gid := uint(id)
	return &gid, nil
}

// CommentForm is the comment form shown under a post.
type CommentForm struct {
	Text string `form:"text" validate:"required,max=2000"`
}

// SignupForm is the registration form.
type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// LoginForm is the login form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// Form pairs submitted values with their validation errors for templates.
type Form struct {
	Data   any
	Errors map[string][]string
}

func newForm(data any) *Form {
	return &Form{Data: data, Errors: map[string][]string{}}
}

// Valid reports whether no error was recorded.
func (f *Form) Valid() bool { return len(f.Errors) == 0 }

// Add records msg against field.
func (f *Form) Add(field, msg string) {
	f.Errors[field] = append(f.Errors[field], msg)
}

// FieldErrors returns the messages of a single field.
func (f *Form) FieldErrors(field string) []string { return f.Errors[field] }

// NonFieldErrors returns the messages not bound to any field.
func (f *Form) NonFieldErrors() []string { return f.Errors[nonFieldErrors] }

// AddError records a service validation error on the form.
// It reports false for errors that are not about the submitted data.
func (f *Form) AddError(err error) bool {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		return false
	}
	field := appErr.Field
	if field == "" {
		field = nonFieldErrors
	}
	f.Add(field, appErr.Message)
	return true
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindForm parses the request body into dst, trims its strings and validates it.
func bindForm(c *fiber.Ctx, dst any) *Form {
	form := newForm(dst)
	if err := c.BodyParser(dst); err != nil {
		form.Add(nonFieldErrors, "The submitted form could not be read.")
		return form
	}
	trimStrings(dst)

	err := validate.Struct(dst)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			form.Add(fe.Field(), validationMessage(fe))
		}
	} else if err != nil {
		form.Add(nonFieldErrors, err.Error())
	}
	return form
}

func trimStrings(dst any) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() {
			continue
		}
		// Passwords keep their surrounding spaces.
		if strings.HasPrefix(v.Type().Field(i).Name, "Password") {
			continue
		}
		f.SetString(strings.TrimSpace(f.String()))
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

// readUpload returns the file posted under field, or nil when none was sent.
// Empty or unreadable files are recorded on form.
func readUpload(c *fiber.Ctx, field string, form *Form) *service.ImageUpload {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	if fh.Size == 0 {
		form.Add(field, "The submitted file is empty.")
		return nil
	}
	f, err := fh.Open()
	if err != nil {
		form.Add(field, "The submitted file could not be read.")
		return nil
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		form.Add(field, "The submitted file could not be read.")
		return nil
	}
	return &service.ImageUpload{Filename: fh.Filename, Data: data}
}
