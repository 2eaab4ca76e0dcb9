package httpclient

import (
	"errors"
	"fmt"
)

// Request stages that can fail before a response exists.
const (
	StageBuild = "build"
	StageSend  = "send"
)

// ErrTransport marks failures where no HTTP response was received.
var ErrTransport = errors.New("transport failure")

// RequestError describes a request that produced no HTTP response.
// HTTP error statuses never surface as RequestError.
type RequestError struct {
	Stage  string
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Stage, e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is lets callers match send failures with errors.Is(err, ErrTransport).
func (e *RequestError) Is(target error) bool {
	return target == ErrTransport && e.Stage == StageSend
}
