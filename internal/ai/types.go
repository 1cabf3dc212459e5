package ai

import (
	"errors"
	"fmt"
)

// Descriptor is the four-field input that drives generation.
type Descriptor struct {
	Era      string `json:"era"`
	Mood     string `json:"mood"`
	Language string `json:"language"`
	Feeling  string `json:"feeling"`
}

var (
	// ErrGenerationUnavailable is matched by every *UnavailableError.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrEmptyResponse         = errors.New("empty response from gemini api")
)

// UnavailableError reports that every api version failed. Cause is the
// failure of the last version tried.
type UnavailableError struct {
	Model string
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("all generation attempts failed for model %s: %v", e.Model, e.Cause)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrGenerationUnavailable, e.Cause}
}
