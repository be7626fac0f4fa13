// Package herr carries the stable error kinds spec'd for the TLS core
// (spec.md §6's small-negative-sentinel error codes) as a Go error type,
// so callers can errors.Is/errors.As against a Code while an alert layer
// still maps each kind to a fixed wire alert.
package herr

import (
	"errors"
	"fmt"
)

// Code identifies a stable error kind, independent of the wrapped cause.
type Code int

const (
	_ Code = iota
	BadInputData
	BufferTooSmall
	FeatureUnavailable
	VerifyFailed
	RandomFailed
	SigLenMismatch
	InvalidKey
	ProtocolVersion
	DecodeError
	HandshakeFailure
	BadHSClientHello
	BadHSServerHello
	BadHSCertificate
	BadHSKeyExchange
	BadHSCertificateVerify
	BadHSFinished
	InappropriateFallback
	NoApplicationProtocol
	UnrecognizedName
)

var codeNames = map[Code]string{
	BadInputData:           "bad_input_data",
	BufferTooSmall:         "buffer_too_small",
	FeatureUnavailable:     "feature_unavailable",
	VerifyFailed:           "verify_failed",
	RandomFailed:           "random_failed",
	SigLenMismatch:         "sig_len_mismatch",
	InvalidKey:             "invalid_key",
	ProtocolVersion:        "protocol_version",
	DecodeError:            "decode_error",
	HandshakeFailure:       "handshake_failure",
	BadHSClientHello:       "bad_hs_client_hello",
	BadHSServerHello:       "bad_hs_server_hello",
	BadHSCertificate:       "bad_hs_certificate",
	BadHSKeyExchange:       "bad_hs_key_exchange",
	BadHSCertificateVerify: "bad_hs_certificate_verify",
	BadHSFinished:          "bad_hs_finished",
	InappropriateFallback:  "inappropriate_fallback",
	NoApplicationProtocol:  "no_application_protocol",
	UnrecognizedName:       "unrecognized_name",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "unknown"
}

// Error pairs a stable Code with an optional wrapped cause.
type Error struct {
	Code  Code
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, herr.New(Code)) match any *Error with the same
// Code, regardless of wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New builds an *Error with no wrapped cause.
func New(code Code) *Error { return &Error{Code: code} }

// Wrap builds an *Error that wraps cause under code.
func Wrap(code Code, cause error) *Error {
	if cause == nil {
		return New(code)
	}
	return &Error{Code: code, Cause: cause}
}

// Is reports whether err carries the given Code anywhere in its chain.
func Is(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}
