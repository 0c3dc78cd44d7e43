// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package exceptions provides error types used throughout Kulturhaus
package exceptions

import (
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/pkg/errors"
)

// A Kind classifies an error by where it comes from
type Kind string

// Error kinds
const (
	// TransportError is a network, timeout or non-2xx failure
	TransportError Kind = "transport"
	// ServerLogicError is a well-formed response that signals a failure
	ServerLogicError Kind = "server_logic"
	// ValidationError is raised locally before any network call
	ValidationError Kind = "validation"
	// StateError is an operation that is illegal in the current state
	StateError Kind = "state"
)

// A Reason further qualifies an error inside its Kind
type Reason string

// Error reasons
const (
	Unreachable      Reason = "unreachable"
	Rejected         Reason = "rejected"
	EmptyMessage     Reason = "empty_message"
	UnknownChannel   Reason = "unknown_channel"
	InvalidSection   Reason = "invalid_section"
	Busy             Reason = "busy"
	Stopped          Reason = "stopped"
	AlreadyInFlight  Reason = "already_in_flight"
	SubmissionFailed Reason = "submission_failed"
)

// UserError is an error that must be displayed to the user.
//
// Message is human readable and safe to show. Debug holds the
// underlying technical detail and is only meant for logs.
type UserError struct {
	Kind     Kind
	Reason   Reason
	Message  string
	Severity notify.Severity
	Debug    string
	cause    error
}

// Error method for the UserError type.
// Returns the message.
func (u UserError) Error() string {
	return u.Message
}

// Cause returns the underlying error, if any
func (u UserError) Cause() error {
	return u.cause
}

// Unwrap is the standard library version of Cause
func (u UserError) Unwrap() error {
	return u.cause
}

// New returns a UserError of the given kind and reason.
// The severity is derived from the kind.
func New(kind Kind, reason Reason, message string) UserError {
	return UserError{
		Kind:     kind,
		Reason:   reason,
		Message:  message,
		Severity: severityFor(kind),
	}
}

// Wrap returns a UserError that hides cause behind the given message.
func Wrap(cause error, kind Kind, reason Reason, message string) UserError {
	res := New(kind, reason, message)
	if cause != nil {
		res.cause = cause
		res.Debug = cause.Error()
	}
	return res
}

// Transport returns a TransportError wrapping err with the given context.
// It is meant for transports, callers turn it into a UserError.
func Transport(err error, format string, args ...interface{}) error {
	return transportError{errors.Wrapf(err, format, args...)}
}

// IsTransport returns true if err, or one of its causes, is a transport failure.
func IsTransport(err error) bool {
	for err != nil {
		switch e := err.(type) {
		case transportError:
			return true
		case UserError:
			if e.Kind == TransportError {
				return true
			}
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		next := cause.Cause()
		if next == err {
			return false
		}
		err = next
	}
	return false
}

// As returns the UserError found in err's chain, if any.
func As(err error) (UserError, bool) {
	var ue UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return UserError{}, false
}

// Is returns true if err is a UserError with the given reason
func Is(err error, reason Reason) bool {
	ue, ok := As(err)
	return ok && ue.Reason == reason
}

// KindOf returns the Kind of err, or the empty Kind if err is not a UserError.
func KindOf(err error) Kind {
	if ue, ok := As(err); ok {
		return ue.Kind
	}
	if IsTransport(err) {
		return TransportError
	}
	return ""
}

// transportError marks an error as coming from the transport layer
type transportError struct {
	error
}

// Cause returns the wrapped error
func (t transportError) Cause() error {
	return t.error
}

func severityFor(kind Kind) notify.Severity {
	switch kind {
	case ValidationError, StateError:
		return notify.Warning
	case TransportError, ServerLogicError:
		return notify.Danger
	default:
		return notify.Info
	}
}
