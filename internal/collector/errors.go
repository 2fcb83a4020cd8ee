package collector

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind string

const (
	KindNetwork   Kind = "network"   // transport failure, timeout, open breaker
	KindService   Kind = "service"   // non-2xx status or explicit error payload
	KindMalformed Kind = "malformed" // response shape does not match the contract
)

// Sentinels for errors.Is.
var (
	ErrNetwork   = errors.New("network error")
	ErrService   = errors.New("service error")
	ErrMalformed = errors.New("malformed payload")
)

// FetchError is returned by every Fetcher method on failure.
type FetchError struct {
	Kind     Kind
	Endpoint string
	Status   int    // HTTP status, 0 when no response was received
	Message  string // service-provided message or a description of the problem
	Err      error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Kind, e.Endpoint, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Endpoint, msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrService:
		return e.Kind == KindService
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// KindOf classifies any error returned by a Fetcher. Errors that are not a
// *FetchError are treated as transport failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}

func networkError(endpoint string, err error) *FetchError {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return &FetchError{Kind: KindNetwork, Endpoint: endpoint, Message: msg, Err: err}
}

func serviceError(endpoint string, status int, msg string) *FetchError {
	return &FetchError{Kind: KindService, Endpoint: endpoint, Status: status, Message: msg}
}

func malformed(endpoint string, format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: KindMalformed, Endpoint: endpoint, Message: fmt.Sprintf(format, args...)}
}
