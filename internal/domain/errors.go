package domain

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")
)

// Failure classes for operations that cross the network. Every failed profile
// operation is folded into exactly one of these so the UI can map each class
// to a distinct affordance: retry, re-login prompt, field-level message, or a
// generic banner.
var (
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidationRejected = errors.New("validation rejected")
	ErrServerError        = errors.New("server error")
)

// ClassifyStatus maps an HTTP response status to a failure class.
func ClassifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrValidationRejected
	case status >= 500:
		return ErrServerError
	case status >= 400:
		return ErrServerError
	default:
		return nil
	}
}

// ClassifyTransport maps a transport-level error to a failure class. Errors
// that already carry a class are returned unchanged.
func ClassifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNetworkUnavailable) || errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrValidationRejected) || errors.Is(err, ErrServerError) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return ErrNetworkUnavailable
	}
	return ErrNetworkUnavailable
}
