package api

import (
	"bytes"
	"fmt"
	"strings"

	"inventoritoko/internal/models"
)

// TransportError means no response arrived: dial failure, timeout, reset.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError is a non-2xx reply. Body is kept verbatim.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// HasBody reports whether the server sent anything besides whitespace.
func (e *ResponseError) HasBody() bool {
	return len(bytes.TrimSpace(e.Body)) > 0
}

// RawBody is the trimmed body text.
func (e *ResponseError) RawBody() string {
	return strings.TrimSpace(string(e.Body))
}

// ErrorResponse parses the body as a structured error. ok is false when the
// body is not a JSON object.
func (e *ResponseError) ErrorResponse() (models.ErrorResponse, bool) {
	var out models.ErrorResponse
	body := bytes.TrimSpace(e.Body)
	if len(body) == 0 || body[0] != '{' {
		return out, false
	}
	if err := codec.Unmarshal(body, &out); err != nil {
		return out, false
	}
	return out, true
}
