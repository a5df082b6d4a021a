package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind says where a call failed.
type ErrorKind int

const (
	// KindNetwork: the request could not be sent or the response not read.
	KindNetwork ErrorKind = iota + 1
	// KindTransport: the server answered with a non-2xx status.
	KindTransport
	// KindEnvelope: the response envelope was malformed or reported failure.
	KindEnvelope
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTransport:
		return "transport"
	case KindEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation that does not succeed.
type Error struct {
	Op      string // list, create, update, complete, delete
	Kind    ErrorKind
	Status  int    // HTTP status, 0 for network failures
	Message string // server-provided message, if one could be decoded
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d %s)", e.Status, http.StatusText(e.Status))
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
