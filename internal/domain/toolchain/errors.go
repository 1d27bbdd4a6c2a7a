package toolchain

import "errors"

var (
	// ErrUnknownTool is returned when a tool name is not in the registry.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrUnknownWorkflow is returned when a workflow name is not registered.
	ErrUnknownWorkflow = errors.New("unknown workflow")
	// ErrMissingPathParam is returned when an endpoint placeholder has no value.
	ErrMissingPathParam = errors.New("missing path parameter")
)

// ErrorKind classifies an entry in the execution context error log.
type ErrorKind string

const (
	ErrorKindUnknownTool       ErrorKind = "UnknownTool"
	ErrorKindUnknownWorkflow   ErrorKind = "UnknownWorkflow"
	ErrorKindTransportFailure  ErrorKind = "TransportFailure"
	ErrorKindValidationFailure ErrorKind = "ValidationFailure"
)

// ErrorRecord is one failed tool attempt.
type ErrorRecord struct {
	Tool    string    `json:"tool"`
	Error   string    `json:"error"`
	Kind    ErrorKind `json:"kind"`
	Details string    `json:"details,omitempty"`
}

// KindOf maps an error to the kind recorded in the context.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return ErrorKindUnknownTool
	case errors.Is(err, ErrUnknownWorkflow):
		return ErrorKindUnknownWorkflow
	case errors.Is(err, ErrMissingPathParam):
		return ErrorKindValidationFailure
	default:
		return ErrorKindTransportFailure
	}
}
