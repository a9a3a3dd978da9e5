package errors

import (
	stderrors "errors"
	"fmt"
)

// Error taxonomy shared by commands, the dashboard API and the effect executor.
var (
	ErrPermissionDenied = stderrors.New("permission denied")
	ErrNotFound         = stderrors.New("not found")
	ErrPlatformRejected = stderrors.New("platform rejected the request")
	ErrStorage          = stderrors.New("storage failure")
	ErrFeatureDisabled  = stderrors.New("feature disabled")
)

// StorageError wraps a persistence failure of the guild config store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage wraps err as a StorageError. It returns nil when err is nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// PlatformError wraps a failed Discord API call.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("discord %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

func (e *PlatformError) Is(target error) bool { return target == ErrPlatformRejected }

// Platform wraps err as a PlatformError. It returns nil when err is nil.
func Platform(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PlatformError{Op: op, Err: err}
}

// PermissionDenied builds a rejection for an actor missing a capability.
func PermissionDenied(what string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, what)
}

// NotFound builds a rejection for a missing user, role, channel or guild.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// FeatureDisabled builds a rejection for a command turned off in the guild config.
func FeatureDisabled(what string) error {
	return fmt.Errorf("%w: %s", ErrFeatureDisabled, what)
}

// Is, As and Join re-export the standard helpers so callers importing this
// package do not need a second alias for the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// New re-exports errors.New.
func New(text string) error { return stderrors.New(text) }

// IsExpected reports whether err is a normal rejection that should not be logged as an error.
func IsExpected(err error) bool {
	return Is(err, ErrPermissionDenied) || Is(err, ErrNotFound) || Is(err, ErrFeatureDisabled)
}

// UserMessage translates err into the reply shown to the actor.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrPermissionDenied):
		return "❌ No tienes permisos para realizar esta acción."
	case Is(err, ErrFeatureDisabled):
		return "❌ Este comando está desactivado en este servidor."
	case Is(err, ErrNotFound):
		return "❌ No se encontró el usuario, rol o canal indicado."
	case Is(err, ErrStorage):
		return "❌ No se pudo guardar la configuración del servidor. Inténtalo más tarde."
	case Is(err, ErrPlatformRejected):
		return "❌ Discord rechazó la acción. Revisa los permisos y la jerarquía de roles del bot."
	default:
		return "❌ Ocurrió un error inesperado."
	}
}
