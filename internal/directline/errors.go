package directline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession indicates an operation that requires an established
	// conversation was called before Start succeeded.
	ErrNoSession = errors.New("directline: no active conversation")

	// ErrInvalidID indicates an operation addressed a conversation without a
	// usable id. Checked locally; the request is never sent.
	ErrInvalidID = errors.New("directline: invalid or missing conversation id")

	// ErrNoCredentials indicates neither a session token nor a secret is
	// configured.
	ErrNoCredentials = errors.New("directline: no token or secret configured")

	// ErrUnknown indicates a response arrived carrying neither data nor a
	// recognizable error.
	ErrUnknown = errors.New("directline: unknown response")
)

// URLError indicates a request URL could not be constructed.
type URLError struct {
	URL string
	Err error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("directline: malformed url %q: %v", e.URL, e.Err)
}

func (e *URLError) Unwrap() error { return e.Err }

// DecodeError indicates a response body did not match the expected schema.
// Raw carries the undecodable payload for diagnostics.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("directline: decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a structured error returned by the service, or a bare status
// error when the body was not decodable.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("directline: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("directline: api error %d", e.StatusCode)
}

// TransportError indicates the request produced no response at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("directline: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
