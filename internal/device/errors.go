package device

import "fmt"

// Code enumerates device-runtime failure codes.
type Code int

const (
	Success Code = iota
	ErrorNotReady
	ErrorInvalidHandle
	ErrorInvalidValue
	ErrorOutOfMemory
)

// Name returns the symbolic name of the code.
func (c Code) Name() string {
	switch c {
	case Success:
		return "Success"
	case ErrorNotReady:
		return "ErrorNotReady"
	case ErrorInvalidHandle:
		return "ErrorInvalidHandle"
	case ErrorInvalidValue:
		return "ErrorInvalidValue"
	case ErrorOutOfMemory:
		return "ErrorOutOfMemory"
	default:
		return "ErrorUnknown"
	}
}

// String returns the human-readable description of the code.
func (c Code) String() string {
	switch c {
	case Success:
		return "no error"
	case ErrorNotReady:
		return "operation has not completed"
	case ErrorInvalidHandle:
		return "invalid resource handle"
	case ErrorInvalidValue:
		return "invalid argument"
	case ErrorOutOfMemory:
		return "out of memory"
	default:
		return "unknown error"
	}
}

// Error carries a device failure: the numeric code, its symbolic name and
// description, the call site that failed and the offending detail. Device
// failures are always fatal to the benchmarking session; nothing retries.
type Error struct {
	Code Code
	Op   string // failing call site, e.g. "Event.Synchronize"
	Expr string // offending expression or detail
}

func (e *Error) Error() string {
	return fmt.Sprintf("device error %d (%s) in %s: %s: %s",
		int(e.Code), e.Code.Name(), e.Op, e.Expr, e.Code.String())
}

func errf(code Code, op, expr string) *Error {
	return &Error{Code: code, Op: op, Expr: expr}
}
