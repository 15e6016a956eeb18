package domain

import (
	"errors"
	"fmt"
)

// Category of a coordinate resolution failure.
type ErrorKind int

const (
	KindInvalidFormat ErrorKind = iota + 1
	KindGeocodingFailed
	KindGeolocationUnavailable
	KindGeolocationDenied
	KindGeolocationFailed
)

// Sentinels for errors.Is matching against a ResolveError's kind.
var (
	ErrInvalidFormat          = errors.New("invalid postal code format")
	ErrGeocodingFailed        = errors.New("geocoding failed")
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	ErrGeolocationDenied      = errors.New("geolocation denied")
	ErrGeolocationFailed      = errors.New("geolocation failed")
)

const (
	MsgInvalidPostalCode = "Enter a valid 5-digit ZIP code."
	MsgPostalNotFound    = "Sorry, we couldn't find that ZIP code."
	MsgGeolocationError  = "Unable to access your location. Please try ZIP code search."
	MsgNoStores          = "No stores found."
	MsgInternal          = "Something went wrong. Please try again."
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidFormat:          ErrInvalidFormat,
	KindGeocodingFailed:        ErrGeocodingFailed,
	KindGeolocationUnavailable: ErrGeolocationUnavailable,
	KindGeolocationDenied:      ErrGeolocationDenied,
	KindGeolocationFailed:      ErrGeolocationFailed,
}

var kindCodes = map[ErrorKind]string{
	KindInvalidFormat:          "INVALID_FORMAT",
	KindGeocodingFailed:        "GEOCODING_FAILED",
	KindGeolocationUnavailable: "GEOLOCATION_UNAVAILABLE",
	KindGeolocationDenied:      "GEOLOCATION_DENIED",
	KindGeolocationFailed:      "GEOLOCATION_FAILED",
}

func (k ErrorKind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ResolveError is the typed failure of a coordinate resolution.
// Kind drives user-facing messaging; Err keeps the underlying cause
// (HTTP status, timeout, parse error) for logs and tests only.
type ResolveError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewResolveError(kind ErrorKind, op string, err error) *ResolveError {
	return &ResolveError{Kind: kind, Op: op, Err: err}
}

func (e *ResolveError) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Match the kind sentinel so callers can write errors.Is(err, ErrGeocodingFailed).
func (e *ResolveError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// Return the kind of err, or 0 if err is not a ResolveError.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

// Map a resolution failure to the single human-readable status message
// for its kind. No underlying detail leaks into the returned text.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindInvalidFormat:
		return MsgInvalidPostalCode
	case KindGeocodingFailed:
		return MsgPostalNotFound
	case KindGeolocationUnavailable, KindGeolocationDenied, KindGeolocationFailed:
		return MsgGeolocationError
	default:
		return MsgInternal
	}
}
