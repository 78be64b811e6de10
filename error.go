package json4web

import (
	"fmt"
	"reflect"
)

// Every failure produced by the decoder or the encoder unwraps to one
// of these sentinels, so callers can match the failure kind with
// errors.Is without depending on message text.
var (
	ErrUnexpectedEnd   = fmt.Errorf("json4web: unexpected end of input")
	ErrUnexpectedToken = fmt.Errorf("json4web: unexpected token")
	ErrUnicodeEscape   = fmt.Errorf("json4web: invalid unicode escape sequence")
	ErrBase64          = fmt.Errorf("json4web: malformed base64")
	ErrInvalidUTF8     = fmt.Errorf("json4web: input is not valid UTF-8")
	ErrNumber          = fmt.Errorf("json4web: malformed number")
	ErrNonFinite       = fmt.Errorf("json4web: NaN and infinite floats cannot be encoded")
	ErrMaxDepth        = fmt.Errorf("json4web: maximum nesting depth exceeded")
)

// TokenError reports a character the decoder was not prepared to see
// at a decision point, along with its byte offset in the input.
type TokenError struct {
	Token  rune
	Offset int
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("json4web: unexpected token %q at offset %d", e.Token, e.Offset)
}

func (e *TokenError) Unwrap() error {
	return ErrUnexpectedToken
}

// EscapeError reports a \uXXXX escape whose hex digits parsed fine but
// whose value is not a valid code point (a surrogate half, or beyond
// U+10FFFF).
type EscapeError struct {
	Code   uint32
	Offset int
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("json4web: unicode escape \\u%04X is not a valid code point (offset %d)", e.Code, e.Offset)
}

func (e *EscapeError) Unwrap() error {
	return ErrUnicodeEscape
}

func numberError(err error) error {
	return fmt.Errorf("%w: %w", ErrNumber, err)
}

func base64Error(err error) error {
	return fmt.Errorf("%w: %w", ErrBase64, err)
}

var (
	errNonSettableValue = fmt.Errorf("non-settable value")
	errUnsupportedType  = fmt.Errorf("unsupported type")
)

// ValueError is a reflection binding error tied to a specific
// reflect.Value.
type ValueError struct {
	err   error
	Value reflect.Value
}

func (e *ValueError) Error() string {
	typeString := "<invalid>"
	if e.Value.IsValid() {
		typeString = e.Value.Type().String()
	}
	return fmt.Sprintf("json4web: error with value %s: %v", typeString, e.err)
}

func (e *ValueError) Unwrap() error {
	return e.err
}
