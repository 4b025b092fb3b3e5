package tgchecker

import (
	"errors"
	"fmt"
)

var (
	// ErrChecker is the base of every failure caused by configuration or the remote service.
	ErrChecker = errors.New("tgchecker")
	// ErrAPIKeyMissing is returned before any work when no API key is set.
	ErrAPIKeyMissing = fmt.Errorf("%w: api key is not set", ErrChecker)
	// ErrNumberNotFound is returned by the single-number path when the response omits the number.
	ErrNumberNotFound = errors.New("number not found in response")
)

// ErrorKind classifies an error returned by this package.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConfiguration
	KindValidation
	KindRequest
	KindNotFound
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindRequest:
		return "request"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Kind maps err onto the closed set of error kinds.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		verr *ValidationError
		rerr *RequestError
	)
	switch {
	case errors.Is(err, ErrAPIKeyMissing):
		return KindConfiguration
	case errors.As(err, &verr):
		return KindValidation
	case errors.As(err, &rerr):
		return KindRequest
	case errors.Is(err, ErrNumberNotFound):
		return KindNotFound
	}
	return KindUnknown
}

// ValidationError reports caller input that cannot be sent. It is not an ErrChecker.
type ValidationError struct {
	// Index is the position in the batch, or -1 outside a batch.
	Index  int
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index < 0 && e.Input == "":
		return fmt.Sprintf("invalid input: %s", e.Reason)
	case e.Index < 0:
		return fmt.Sprintf("invalid phone number %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid phone number %q at index %d: %s", e.Input, e.Index, e.Reason)
}

// RequestError covers transport failures, non-2xx statuses and unusable response bodies.
type RequestError struct {
	// StatusCode is 0 when no response was received.
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("tgchecker request: status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("tgchecker request: status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("tgchecker request: %v", e.Err)
	}
	return "tgchecker request failed"
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is makes every RequestError match ErrChecker.
func (e *RequestError) Is(target error) bool { return target == ErrChecker }

// NotFoundError names the number missing from the response.
type NotFoundError struct {
	Number string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNumberNotFound, e.Number)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNumberNotFound }
