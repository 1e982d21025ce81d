package barcode

import (
	"fmt"
	"strings"
)

// FailureKind classifies why a payload could not be extracted
type FailureKind string

const (
	KindTooShort             FailureKind = "too_short"
	KindUnsupportedSymbology FailureKind = "unsupported_symbology"
	KindNotBoardingPass      FailureKind = "not_boarding_pass"
	KindNameNotFound         FailureKind = "name_not_found"
	KindFlightNotFound       FailureKind = "flight_not_found"
	KindFlightNotAllowed     FailureKind = "flight_not_allowed"
)

// ExtractionError is a typed extraction failure. Call sites switch on Kind
// rather than matching message text.
type ExtractionError struct {
	Kind     FailureKind
	Message  string
	Found    string
	Expected []string
}

func (e *ExtractionError) Error() string {
	return e.Message
}

func errTooShort() *ExtractionError {
	return &ExtractionError{
		Kind:    KindTooShort,
		Message: "barcode payload is too short or empty",
	}
}

func errUnsupportedSymbology(symbology string) *ExtractionError {
	return &ExtractionError{
		Kind:    KindUnsupportedSymbology,
		Message: fmt.Sprintf("unsupported barcode type %q: only QR and PDF417 are accepted", symbology),
		Found:   symbology,
	}
}

func errNotBoardingPass() *ExtractionError {
	return &ExtractionError{
		Kind:    KindNotBoardingPass,
		Message: "payload does not look like a boarding pass",
	}
}

func errNameNotFound() *ExtractionError {
	return &ExtractionError{
		Kind:    KindNameNotFound,
		Message: "passenger name not found in barcode payload",
	}
}

func errFlightNotFound() *ExtractionError {
	return &ExtractionError{
		Kind:    KindFlightNotFound,
		Message: "flight number not found in barcode payload",
	}
}

func errFlightNotAllowed(found string, expected []string) *ExtractionError {
	return &ExtractionError{
		Kind:     KindFlightNotAllowed,
		Message:  fmt.Sprintf("flight %s is not allowed, expected: %s", found, strings.Join(expected, ", ")),
		Found:    found,
		Expected: expected,
	}
}
