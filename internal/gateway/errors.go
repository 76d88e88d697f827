package gateway

import "fmt"

// Kind classifies gateway failures so callers need only one error path.
type Kind int

const (
	// KindTransport covers network failures, timeouts, and unreadable
	// responses: the call never produced a backend answer.
	KindTransport Kind = iota
	// KindBackend covers structured failures reported by the backend.
	KindBackend
	// KindNoData marks a well-formed response with nothing in it, for
	// procedures where that is meaningful (stats with no payload).
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBackend:
		return "backend"
	case KindNoData:
		return "no_data"
	}
	return "unknown"
}

// Error is the only error type the gateway returns. Every transport and
// decode failure is converted into one; nothing panics or escapes raw
// across the gateway boundary.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func transportErr(msg string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: msg, cause: cause}
}

func backendErr(code, msg string) *Error {
	return &Error{Kind: KindBackend, Code: code, Message: msg}
}

func noDataErr(msg string) *Error {
	return &Error{Kind: KindNoData, Message: msg}
}

// KindOf extracts the failure kind; non-gateway errors report as transport.
func KindOf(err error) Kind {
	if ge, ok := err.(*Error); ok {
		return ge.Kind
	}
	return KindTransport
}
