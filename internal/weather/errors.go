package weather

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindTransport
	KindEmptyResponse
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindTransport:
		return "transport_error"
	case KindEmptyResponse:
		return "empty_response"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *FetchError
var (
	ErrInvalidInput  = errors.New("invalid city name")
	ErrTransport     = errors.New("transport error")
	ErrEmptyResponse = errors.New("empty response")
	ErrDecode        = errors.New("decode error")
)

// FetchError is returned by Client.Fetch for every failure
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *FetchError) Is(target error) bool {
	return target != nil && target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindTransport:
		return ErrTransport
	case KindEmptyResponse:
		return ErrEmptyResponse
	case KindDecode:
		return ErrDecode
	}
	return nil
}

// KindOf reports the kind of a fetch error, or KindUnknown
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

func newError(kind Kind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}
