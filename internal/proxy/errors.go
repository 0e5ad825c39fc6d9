package proxy

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedURI            = errors.New("malformed uri")
	ErrMissingTransportOptions = errors.New("missing transport options")
	ErrUnknownTransportType    = errors.New("unknown transport type")
	ErrVMessPayload            = errors.New("invalid vmess payload")
)

// UnsupportedProtocolError is returned when no decoder is registered for a link scheme.
type UnsupportedProtocolError struct {
	Scheme string
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("proxy type not supported '%s'", e.Scheme)
}

// MissingFieldError reports a mandatory field absent from a link.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field '%s'", e.Field)
}

// EnumValueError reports a value outside a closed set of spellings.
type EnumValueError struct {
	Field string
	Value string
}

func (e *EnumValueError) Error() string {
	return fmt.Sprintf("unrecognized value '%s' for '%s'", e.Value, e.Field)
}

// InvalidFieldError reports a present field that failed to parse as its type.
type InvalidFieldError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value '%s' for '%s': %v", e.Value, e.Field, e.Err)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Err
}
