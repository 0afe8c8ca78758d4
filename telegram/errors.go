package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
)

// TransportCode classifies a network level failure
type TransportCode string

const (
	CodeTimeout    TransportCode = "timeout"
	CodeConnection TransportCode = "connection"
	CodeDNS        TransportCode = "dns"
	CodeEOF        TransportCode = "eof"
	CodeCanceled   TransportCode = "canceled"
	CodeUnknown    TransportCode = "unknown"
)

// TransportError is returned once every delivery attempt failed without a response
type TransportError struct {
	Code     TransportCode
	Message  string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s) after %d attempt(s): %s", e.Code, e.Attempts, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnrecognizedResponseError is returned when the response body is not a Bot API payload
type UnrecognizedResponseError struct {
	Status int
	Body   []byte
}

func (e *UnrecognizedResponseError) Error() string {
	return fmt.Sprintf("telegram API error - unrecognized response (status %d)", e.Status)
}

// RemoteError is returned when the Bot API answered with ok=false
type RemoteError struct {
	Description string
	ErrorCode   int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("telegram API error - description: %s", e.Description)
}

func newTransportError(err error, attempts int) *TransportError {
	return &TransportError{
		Code:     classify(err),
		Message:  err.Error(),
		Attempts: attempts,
		Err:      err,
	}
}

func classify(err error) TransportCode {
	var (
		dnsErr *net.DNSError
		netErr net.Error
		opErr  *net.OpError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.As(err, &dnsErr):
		return CodeDNS
	case errors.As(err, &netErr) && netErr.Timeout():
		return CodeTimeout
	case errors.As(err, &opErr):
		return CodeConnection
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return CodeEOF
	default:
		return CodeUnknown
	}
}
