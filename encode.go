package json4web

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
)

// writer is the minimal sink the encoder needs. bytes.Buffer,
// strings.Builder and bufio.Writer all satisfy it already; any other
// io.Writer gets wrapped in a bufio.Writer drained by Encode or Flush.
type writer interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
}

// Encoder appends the wire encoding of values to an output sink. It
// never backtracks: fragments are committed as the traversal proceeds,
// so whatever was written before a mid-structure error is a truncated
// document the caller must discard. An Encoder must not be shared
// between goroutines.
type Encoder struct {
	w  writer
	bw *bufio.Writer

	depth    int
	maxDepth int
	debug    Debugger
}

// NewEncoder prepares an Encoder writing to w. A nil config selects
// the defaults.
func NewEncoder(w io.Writer, config *Config) *Encoder {
	e := &Encoder{
		maxDepth: DefaultMaxDepth,
		debug:    NewNoopDebugger(),
	}
	if ww, ok := w.(writer); ok {
		e.w = ww
	} else {
		e.bw = bufio.NewWriter(w)
		e.w = e.bw
	}
	if config != nil {
		if config.MaxDepth > 0 {
			e.maxDepth = config.MaxDepth
		}
		if config.Debugger != nil {
			e.debug = config.Debugger.WithContext("encoder")
		}
	}
	e.debug.Log("New encoder", fmt.Sprintf("buffered: %t", e.bw != nil))
	return e
}

// Flush drains the internal buffer, if the sink required one.
func (e *Encoder) Flush() error {
	if e.bw != nil {
		return e.bw.Flush()
	}
	return nil
}

func (e *Encoder) push() error {
	if e.depth >= e.maxDepth {
		return ErrMaxDepth
	}
	e.depth++
	return nil
}

func (e *Encoder) pop() {
	e.depth--
}

// Bool encodes a boolean in its single wire form: 1 or 0.
func (e *Encoder) Bool(v bool) error {
	if v {
		return e.w.WriteByte('1')
	}
	return e.w.WriteByte('0')
}

func (e *Encoder) Int8(v int8) error {
	return e.writeInt(int64(v))
}

func (e *Encoder) Int16(v int16) error {
	return e.writeInt(int64(v))
}

func (e *Encoder) Int32(v int32) error {
	return e.writeInt(int64(v))
}

// Int64 encodes in the quoted decimal form. Wide integers ride the
// wire as strings so consumers with 53-bit-safe numeric domains never
// round them.
func (e *Encoder) Int64(v int64) error {
	return e.writeQuoted(strconv.FormatInt(v, 10))
}

func (e *Encoder) Uint8(v uint8) error {
	return e.writeUint(uint64(v))
}

func (e *Encoder) Uint16(v uint16) error {
	return e.writeUint(uint64(v))
}

func (e *Encoder) Uint32(v uint32) error {
	return e.writeUint(uint64(v))
}

// Uint64 encodes in the quoted decimal form.
func (e *Encoder) Uint64(v uint64) error {
	return e.writeQuoted(strconv.FormatUint(v, 10))
}

// Int128 encodes a 128-bit integer in the quoted decimal form.
func (e *Encoder) Int128(v *big.Int) error {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return fmt.Errorf("%w: value %s out of range", ErrNumber, v)
	}
	return e.writeQuoted(v.String())
}

// Uint128 encodes a 128-bit unsigned integer in the quoted decimal
// form.
func (e *Encoder) Uint128(v *big.Int) error {
	if v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return fmt.Errorf("%w: value %s out of range", ErrNumber, v)
	}
	return e.writeQuoted(v.String())
}

func (e *Encoder) Float32(v float32) error {
	return e.writeFloat(float64(v), 32)
}

// Float64 encodes the shortest decimal that parses back to the same
// bits. NaN and infinities are a hard error; they have no wire form.
func (e *Encoder) Float64(v float64) error {
	return e.writeFloat(v, 64)
}

// Rune encodes a single character in its string form.
func (e *Encoder) Rune(v rune) error {
	return e.Str(string(v))
}

// Bytes encodes a byte string as quoted URL-safe base64.
func (e *Encoder) Bytes(v []byte) error {
	return e.writeQuoted(base64.URLEncoding.EncodeToString(v))
}

// Null encodes the unit/absent value.
func (e *Encoder) Null() error {
	_, err := e.w.WriteString("null")
	return err
}

func (e *Encoder) writeInt(v int64) error {
	_, err := e.w.WriteString(strconv.FormatInt(v, 10))
	return err
}

func (e *Encoder) writeUint(v uint64) error {
	_, err := e.w.WriteString(strconv.FormatUint(v, 10))
	return err
}

func (e *Encoder) writeQuoted(s string) error {
	if err := e.w.WriteByte('"'); err != nil {
		return err
	}
	if _, err := e.w.WriteString(s); err != nil {
		return err
	}
	return e.w.WriteByte('"')
}

// Fixed notation only ('f'): the decoder's literal scanner does not
// read exponents.
func (e *Encoder) writeFloat(v float64, bits int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNonFinite
	}
	_, err := e.w.WriteString(strconv.FormatFloat(v, 'f', -1, bits))
	return err
}

const hexChars = "0123456789abcdef"

// Str encodes a string with the fixed escape set. The forward slash is
// escaped too, so encoded text can be embedded in HTML contexts;
// control characters outside the named escapes become \u00XX.
func (e *Encoder) Str(v string) error {
	if err := e.w.WriteByte('"'); err != nil {
		return err
	}
	start := 0
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c >= 0x20 && c != '"' && c != '\\' && c != '/' {
			continue
		}
		if start < i {
			if _, err := e.w.WriteString(v[start:i]); err != nil {
				return err
			}
		}
		var err error
		switch c {
		case '"', '\\', '/':
			err = e.writeEscape(c)
		case '\b':
			err = e.writeEscape('b')
		case '\f':
			err = e.writeEscape('f')
		case '\n':
			err = e.writeEscape('n')
		case '\r':
			err = e.writeEscape('r')
		case '\t':
			err = e.writeEscape('t')
		default:
			if _, err = e.w.WriteString(`\u00`); err == nil {
				if err = e.w.WriteByte(hexChars[c>>4]); err == nil {
					err = e.w.WriteByte(hexChars[c&0xf])
				}
			}
		}
		if err != nil {
			return err
		}
		start = i + 1
	}
	if start < len(v) {
		if _, err := e.w.WriteString(v[start:]); err != nil {
			return err
		}
	}
	return e.w.WriteByte('"')
}

func (e *Encoder) writeEscape(c byte) error {
	if err := e.w.WriteByte('\\'); err != nil {
		return err
	}
	return e.w.WriteByte(c)
}

// SeqEncoder frames one open sequence. Call Elem before every element;
// it writes the separator for every element after the first.
type SeqEncoder struct {
	e     *Encoder
	first bool
}

// BeginSeq opens a sequence. The element count need not be known up
// front.
func (e *Encoder) BeginSeq() (*SeqEncoder, error) {
	if err := e.push(); err != nil {
		return nil, err
	}
	if err := e.w.WriteByte('['); err != nil {
		return nil, err
	}
	return &SeqEncoder{e: e, first: true}, nil
}

func (s *SeqEncoder) Elem() error {
	if s.first {
		s.first = false
		return nil
	}
	return s.e.w.WriteByte(',')
}

func (s *SeqEncoder) End() error {
	s.e.pop()
	return s.e.w.WriteByte(']')
}

// MapEncoder frames one open map or struct body.
type MapEncoder struct {
	e     *Encoder
	first bool
}

func (e *Encoder) BeginMap() (*MapEncoder, error) {
	if err := e.push(); err != nil {
		return nil, err
	}
	if err := e.w.WriteByte('{'); err != nil {
		return nil, err
	}
	return &MapEncoder{e: e, first: true}, nil
}

// Key goes before every key. The key itself is a value the caller
// encodes next; the usual wire form is a string.
func (m *MapEncoder) Key() error {
	if m.first {
		m.first = false
		return nil
	}
	return m.e.w.WriteByte(',')
}

// Value goes between a key and its value.
func (m *MapEncoder) Value() error {
	return m.e.w.WriteByte(':')
}

// Field writes a string key plus the separators around it in one step.
func (m *MapEncoder) Field(name string) error {
	if err := m.Key(); err != nil {
		return err
	}
	if err := m.e.Str(name); err != nil {
		return err
	}
	return m.Value()
}

func (m *MapEncoder) End() error {
	m.e.pop()
	return m.e.w.WriteByte('}')
}

// UnitVariant encodes a payload-free variant as its bare quoted tag.
func (e *Encoder) UnitVariant(tag string) error {
	return e.Str(tag)
}

// Variant opens the object shape {"Tag": for a variant carrying a
// payload. The caller encodes the payload in its declared shape (a
// sequence for a tuple variant, a map for named fields) and closes
// with EndVariant.
func (e *Encoder) Variant(tag string) error {
	if err := e.push(); err != nil {
		return err
	}
	if err := e.w.WriteByte('{'); err != nil {
		return err
	}
	if err := e.Str(tag); err != nil {
		return err
	}
	return e.w.WriteByte(':')
}

// EndVariant closes an object-shaped variant.
func (e *Encoder) EndVariant() error {
	e.pop()
	return e.w.WriteByte('}')
}
