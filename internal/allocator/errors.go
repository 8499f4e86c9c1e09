package allocator

import "errors"

var (
	// ErrInputFormat classifies inputs that are not usable numbers at all.
	ErrInputFormat = errors.New("malformed input")
	// ErrInvalidValue classifies numeric inputs outside the allowed range.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNegativeWeight is returned when any item weight is below zero.
	ErrNegativeWeight = &classError{msg: "weights must be non-negative", class: ErrInvalidValue}
	// ErrNegativeLimit is returned when the platform limit is below zero.
	ErrNegativeLimit = &classError{msg: "limit must be non-negative", class: ErrInvalidValue}
	// ErrNotFinite is returned for NaN or infinite weights and limits.
	ErrNotFinite = &classError{msg: "weights and limit must be finite numbers", class: ErrInputFormat}
)

type classError struct {
	msg   string
	class error
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }
