package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested song or playlist does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrServerOffline indicates the server is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrAuthFailed indicates the credentials were rejected
	ErrAuthFailed = errors.New("wrong username or password")

	// ErrParse indicates a response did not match the expected shape
	ErrParse = errors.New("malformed response")

	// ErrTransportBusy indicates the transport is already claimed by another controller
	ErrTransportBusy = errors.New("transport is in use by another controller")

	// ErrControllerClosed indicates the controller has released its transport
	ErrControllerClosed = errors.New("controller is closed")

	// ErrQueueNotFound indicates no saved queue exists under the given name
	ErrQueueNotFound = errors.New("saved queue not found")
)

// ParseError reports a response that failed to decode.
// Field names the offending wire field, when there is one.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "parse error: " + e.Reason
	}
	return fmt.Sprintf("parse error: field %q: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrParse) match any ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Subsonic error codes
const (
	APICodeGeneric         = 0
	APICodeMissingParam    = 10
	APICodeClientTooOld    = 20
	APICodeServerTooOld    = 30
	APICodeWrongCreds      = 40
	APICodeTokenAuthNotSup = 41
	APICodeNotAuthorized   = 50
	APICodeTrialExpired    = 60
	APICodeNotFound        = 70
)

// APIError is a failed response envelope returned by the server
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Is maps well-known server codes onto the domain sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthFailed:
		return e.Code == APICodeWrongCreds || e.Code == APICodeTokenAuthNotSup
	case ErrItemNotFound:
		return e.Code == APICodeNotFound
	}
	return false
}
