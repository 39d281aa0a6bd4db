package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("analysis not found")
	ErrEncodingFailed       = errors.New("encoding failed")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrMissingRequiredInput = errors.New("missing required input")
	ErrBadRequest           = errors.New("bad request")
	ErrUpstream             = errors.New("upstream error")
	ErrSuperseded           = errors.New("response superseded by a newer trigger")
)

// RemoteReportedError is returned when the remote workflow answers with an
// explicit error or duplicate status.
type RemoteReportedError struct {
	Status  string
	Message string
}

func (e *RemoteReportedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote reported %s", e.Status)
	}
	return e.Message
}

// NormalizationError means the raw response could not be read as a JSON object at all.
// Missing or unexpected keys never produce it; they degrade to placeholders.
type NormalizationError struct {
	ID     ID
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.ID, e.Reason)
}
