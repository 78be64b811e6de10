package json4web

import (
	"bytes"
	"strings"
)

// Marshaler is the encode half of the traversal contract: a type that
// describes itself to an Encoder. It takes precedence over the
// reflection binding.
type Marshaler interface {
	MarshalJSON4Web(e *Encoder) error
}

// Unmarshaler is the decode half of the traversal contract: a type
// that reconstructs itself from a Decoder.
type Unmarshaler interface {
	UnmarshalJSON4Web(d *Decoder) error
}

// DefaultMaxDepth bounds nesting when Config.MaxDepth is zero. Nesting
// equals recursion in both engines, so adversarial input runs into
// ErrMaxDepth long before it can exhaust the stack.
const DefaultMaxDepth = 1024

// Config carries the optional knobs of both engines. A nil pointer
// selects every default.
type Config struct {
	// MaxDepth bounds the nesting depth. Zero selects DefaultMaxDepth.
	MaxDepth int

	// Debugger receives trace output. Defaults to the silent one.
	Debugger Debugger
}

// Marshal encodes v as wire text.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, nil).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalString is Marshal returning a string.
func MarshalString(v any) (string, error) {
	var sb strings.Builder
	if err := NewEncoder(&sb, nil).Encode(v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Unmarshal decodes one value from data into v, which must be a
// non-nil pointer. Exactly one value is consumed; trailing bytes after
// it are not inspected.
func Unmarshal(data []byte, v any) error {
	return NewDecoder(data, nil).Decode(v)
}

// UnmarshalString is Unmarshal over a string that is trusted to be
// valid UTF-8.
func UnmarshalString(s string, v any) error {
	return NewDecoderString(s, nil).Decode(v)
}
