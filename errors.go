package pdk

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is returned by HTTPRequest.Send when the host reports a
// nonzero status. No response handle exists in that case.
var ErrRequestFailed = errors.New("HTTP request failed")

var errInvalidUTF8 = errors.New("invalid UTF-8")

// EncodeError wraps a failure to serialize a value before handing it to the host.
type EncodeError struct {
	inner error // The underlying serialization error.
}

// Error implements the error interface for EncodeError.
func (e *EncodeError) Error() string {
	if e.inner == nil {
		return "encode"
	}
	return "encode: " + e.inner.Error()
}

// Unwrap returns the underlying serialization error.
func (e *EncodeError) Unwrap() error {
	return e.inner
}

// newEncodeError wraps err, returning nil for a nil err.
func newEncodeError(err error) *EncodeError {
	if err == nil {
		return nil
	}
	return &EncodeError{inner: err}
}

// DecodeError wraps a failure to interpret bytes read from the host, either
// because they are not valid UTF-8 or because they are not the expected JSON.
type DecodeError struct {
	inner error // The underlying decode error.
}

// Error implements the error interface for DecodeError.
func (e *DecodeError) Error() string {
	if e.inner == nil {
		return "decode"
	}
	return "decode: " + e.inner.Error()
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error {
	return e.inner
}

// newDecodeError wraps err, returning nil for a nil err.
func newDecodeError(err error) *DecodeError {
	if err == nil {
		return nil
	}
	return &DecodeError{inner: err}
}

// RequestError reports an HTTP request rejected before it reached the host.
type RequestError struct {
	inner error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid HTTP request: %v", e.inner)
}

func (e *RequestError) Unwrap() error {
	return e.inner
}
