package feedback

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by Validate for a kind other than relative or
// absolute. Normalize itself accepts such requests.
var ErrUnknownKind = errors.New("unknown feedback kind")

// ValidationError is a missing or malformed user input. Message is meant to
// be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate runs the checks the feedback form performs before submitting.
func (r Request) Validate() error {
	switch d := r.Details.(type) {
	case Relative:
		if strings.TrimSpace(d.ExpectedOutput) == "" {
			return &ValidationError{Field: "expectedOutput", Message: "Please provide your expected output"}
		}
	case Absolute:
		if d.Rating == 0 {
			return &ValidationError{Field: "rating", Message: "Please select a rating"}
		}
		if d.Rating < MinRating || d.Rating > MaxRating {
			return &ValidationError{
				Field:   "rating",
				Message: fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating),
			}
		}
	case Unknown:
		if d.Name == "" {
			return &ValidationError{Field: "type", Message: "Please select a feedback type"}
		}
		return fmt.Errorf("%w: %q", ErrUnknownKind, d.Name)
	default:
		return &ValidationError{Field: "type", Message: "Please select a feedback type"}
	}
	return nil
}
