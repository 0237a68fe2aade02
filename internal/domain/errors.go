package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// Violation describe una regla de validación incumplida sobre un campo.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa todas las reglas incumplidas por un registro (no solo la primera),
// para que el llamador pueda reportar todos los problemas de una vez.
// errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Violations []Violation
}

// Add registra una violación.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// HasViolations indica si se registró al menos una violación.
func (e *ValidationError) HasViolations() bool {
	return e != nil && len(e.Violations) > 0
}

// OrNil devuelve el propio error si hay violaciones; nil en otro caso.
// Evita el clásico "interface no nil con puntero nil".
func (e *ValidationError) OrNil() error {
	if !e.HasViolations() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if !e.HasViolations() {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AsValidationError extrae el ValidationError de la cadena de errores, si existe.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
