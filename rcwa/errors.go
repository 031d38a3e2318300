package rcwa

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures.
type Kind int

const (
	// KindConfig marks a configuration fault: retrying with the same
	// parameters fails again.
	KindConfig Kind = iota + 1
	// KindSingular marks a numerically singular system.
	KindSingular
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindSingular:
		return "singular"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Classification sentinels matched by [Error.Is].
var (
	ErrConfig   = errors.New("rcwa: configuration fault")
	ErrSingular = errors.New("rcwa: numerically singular system")
)

// Specific failures, reachable through errors.Is.
var (
	ErrDegeneratePropagation = errors.New("rcwa: longitudinal wavevector is zero")
	ErrInvalidParameter      = errors.New("rcwa: invalid parameter")
	ErrDuplicateLayerID      = errors.New("rcwa: duplicate layer id")
)

// Remediation hints.
const (
	HintChangeAngle    = "Change incident angle or grating"
	HintHarmonics      = "Reduce the harmonic order or refine the grid"
	HintCheckParameter = "Check the parameter values"
)

// Error is an engine failure with a user-facing hint.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "rcwa: " + e.Message + ": " + e.Err.Error()
	}
	return "rcwa: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the classification sentinel of e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrSingular:
		return e.Kind == KindSingular
	}
	return false
}

// Hint returns the remediation hint attached to err, or "".
func Hint(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

func configError(msg, hint string, err error) error {
	return &Error{Kind: KindConfig, Message: msg, Hint: hint, Err: err}
}

func singularError(msg string, err error) error {
	return &Error{Kind: KindSingular, Message: msg, Hint: HintHarmonics, Err: err}
}
