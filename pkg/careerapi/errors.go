package careerapi

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by every call when no base URL was supplied.
var ErrNotConfigured = errors.New("career API base URL is not configured")

type Kind int

const (
	KindNotConfigured Kind = iota + 1
	KindNetwork
	KindStatus
	KindDecode
	// KindEncode means the request never left the client.
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindNotConfigured:
		return "not_configured"
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// Error describes a failed career API call.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a career API error, or zero for other errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}
