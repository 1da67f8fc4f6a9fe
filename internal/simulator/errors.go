package simulator

import "errors"

// Business-rule rejections of otherwise well-formed orders. Nothing is
// mutated when these are returned.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// ValidationError reports malformed or out-of-range input. Validation
// runs before any mutation, so a ValidationError always means the
// stores are untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalidf(reason string) error { return &ValidationError{Reason: reason} }

// IsRejection reports whether err is a client-facing rejection
// (validation or business rule) rather than an internal store failure.
func IsRejection(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientHoldings)
}
