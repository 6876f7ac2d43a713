package vrchat

import (
	"errors"
	"fmt"
)

// Kind classifies an API failure. Collectors and the scheduler only ever
// branch on the kind, never on raw status codes.
type Kind int

const (
	// KindTransport covers network-level failures and unexpected HTTP
	// statuses (anything that is not 200, 401 or 429).
	KindTransport Kind = iota

	// KindUnauthorized means the session expired (HTTP 401). The shared
	// authenticated flag has already been flipped false when this is returned.
	KindUnauthorized

	// KindRateLimited means the API returned HTTP 429. The fixed cooldown
	// has already been served when this is returned.
	KindRateLimited

	// KindMalformed means the response decoded but is missing a field the
	// caller requires (e.g. no "id" on the user document).
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindMalformed:
		return "malformed"
	default:
		return "transport"
	}
}

// APIError is the failure type returned by every client call.
type APIError struct {
	Kind     Kind
	Endpoint string
	Status   int    // HTTP status, 0 for network-level failures
	Body     string // truncated upstream body, for logging only
	cause    error
}

func (e *APIError) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("vrchat: %s on %s: %v", e.Kind, e.Endpoint, e.cause)
	case e.Body != "":
		return fmt.Sprintf("vrchat: %s on %s: HTTP %d: %s", e.Kind, e.Endpoint, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("vrchat: %s on %s: HTTP %d", e.Kind, e.Endpoint, e.Status)
	default:
		return fmt.Sprintf("vrchat: %s on %s", e.Kind, e.Endpoint)
	}
}

func (e *APIError) Unwrap() error { return e.cause }

func isKind(err error, k Kind) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == k
}

// IsUnauthorized reports whether err is a 401 session-expiry failure.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsRateLimited reports whether err is a 429 rate-limit failure.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }

// IsMalformed reports whether err is a missing-field failure.
func IsMalformed(err error) bool { return isKind(err, KindMalformed) }
