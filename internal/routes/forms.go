package routes

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Messages shown next to invalid fields
const (
	msgRequired      = "Este campo es obligatorio."
	msgMaxLength     = "Asegúrese de que este valor tenga a lo más %s caracteres."
	msgNumber        = "Introduzca un número entero."
	msgMinValue      = "Asegúrese de que este valor sea mayor o igual a %d."
	msgInvalidChoice = "Escoja una opción válida. Esa opción no está entre las disponibles."
	msgInvalid       = "Introduzca un valor válido."
	msgBadLogin      = "Credenciales inválidas o usuario sin permisos de administrador."
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (e FieldErrors) add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

type form interface {
	trim()
}

type reservationForm struct {
	RUT  string `form:"rut" binding:"required,max=12"`
	Room string `form:"sala" binding:"required"`
}

func (f *reservationForm) trim() {
	f.RUT = strings.TrimSpace(f.RUT)
	f.Room = strings.TrimSpace(f.Room)
}

// RoomID is the chosen room, 0 when none or unparsable.
func (f reservationForm) RoomID() int64 {
	id, _ := strconv.ParseInt(f.Room, 10, 64)
	return id
}

type studentLoginForm struct {
	RUT    string `form:"rut" binding:"required,max=12"`
	Career string `form:"carrera" binding:"required,max=100"`
}

func (f *studentLoginForm) trim() {
	f.RUT = strings.TrimSpace(f.RUT)
	f.Career = strings.TrimSpace(f.Career)
}

type adminLoginForm struct {
	Username string `form:"username" binding:"required,max=150"`
	// Passwords are taken as typed
	Password string `form:"password" binding:"required"`
}

func (f *adminLoginForm) trim() {
	f.Username = strings.TrimSpace(f.Username)
}

type roomForm struct {
	Name        string `form:"nombre" binding:"required,max=100"`
	MaxCapacity string `form:"capacidad_maxima" binding:"required,number"`
}

func (f *roomForm) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.MaxCapacity = strings.TrimSpace(f.MaxCapacity)
}

func (f roomForm) Capacity() (int, error) {
	return strconv.Atoi(f.MaxCapacity)
}

var registerTagNames sync.Once

// Report validation errors under the form field names instead of the Go ones.
func useFormFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindForm fills f from the POST body, trims it and validates it. The
// returned FieldErrors is never nil.
func bindForm(c *gin.Context, f form) (FieldErrors, error) {
	useFormFieldNames()

	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := binding.MapFormWithTag(f, c.Request.PostForm, "form"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	f.trim()

	errs := FieldErrors{}
	if err := binding.Validator.ValidateStruct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			errs.add(fe.Field(), fieldMessage(fe))
		}
	}
	return errs, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf(msgMaxLength, fe.Param())
	case "number":
		return msgNumber
	default:
		return msgInvalid
	}
}
