package json4web

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Decoder consumes one complete document from an in-memory buffer.
// Its only mutable state is the unconsumed suffix of the input and a
// nesting depth counter, so a Decoder is created per top-level decode
// and thrown away afterwards. It must not be shared between
// goroutines.
//
// Each operation skips insignificant whitespace, then consumes exactly
// the bytes of one token. Separators between elements belong to the
// enclosing compound's Cursor, never to the value operations.
type Decoder struct {
	input string
	rest  string

	depth    int
	maxDepth int
	debug    Debugger
	err      error
}

// NewDecoder validates that data is UTF-8 and prepares a Decoder over
// it. A nil config selects the defaults. Validation failure is sticky:
// every subsequent operation returns ErrInvalidUTF8.
func NewDecoder(data []byte, config *Config) *Decoder {
	d := NewDecoderString(string(data), config)
	if !utf8.ValidString(d.input) {
		d.err = ErrInvalidUTF8
	}
	return d
}

// NewDecoderString prepares a Decoder over s. The string is trusted to
// be valid UTF-8; use NewDecoder to decode raw bytes of unknown
// provenance.
func NewDecoderString(s string, config *Config) *Decoder {
	d := &Decoder{
		input:    s,
		rest:     s,
		maxDepth: DefaultMaxDepth,
		debug:    NewNoopDebugger(),
	}
	if config != nil {
		if config.MaxDepth > 0 {
			d.maxDepth = config.MaxDepth
		}
		if config.Debugger != nil {
			d.debug = config.Debugger.WithDynamicContext("decoder", func() string {
				return "offset " + strconv.Itoa(d.offset())
			})
		}
	}
	d.debug.Log("New decoder with input of", len(s), "bytes")
	return d
}

// offset is the number of input bytes consumed so far.
func (d *Decoder) offset() int {
	return len(d.input) - len(d.rest)
}

// trim skips insignificant whitespace before the next token. Every
// public operation goes through here, which also surfaces the sticky
// construction error.
func (d *Decoder) trim() error {
	if d.err != nil {
		return d.err
	}
	d.rest = strings.TrimLeft(d.rest, " \t\n\r")
	return nil
}

func (d *Decoder) peekRune() (rune, error) {
	if len(d.rest) == 0 {
		return 0, ErrUnexpectedEnd
	}
	r, _ := utf8.DecodeRuneInString(d.rest)
	return r, nil
}

// expect consumes the next byte, which must be want.
func (d *Decoder) expect(want byte) error {
	if len(d.rest) == 0 {
		return ErrUnexpectedEnd
	}
	if d.rest[0] != want {
		r, _ := utf8.DecodeRuneInString(d.rest)
		return d.tokenError(r)
	}
	d.rest = d.rest[1:]
	return nil
}

func (d *Decoder) tokenError(r rune) error {
	return &TokenError{Token: r, Offset: d.offset()}
}

func (d *Decoder) push() error {
	if d.depth >= d.maxDepth {
		return ErrMaxDepth
	}
	d.depth++
	return nil
}

func (d *Decoder) pop() {
	d.depth--
}

// The four accepted boolean literals. Even indexes are true, odd ones
// false.
var boolLiterals = [...]string{"1", "0", "true", "false"}

func (d *Decoder) parseBool() (bool, error) {
	for i, lit := range boolLiterals {
		if strings.HasPrefix(d.rest, lit) {
			d.rest = d.rest[len(lit):]
			return i&1 == 0, nil
		}
	}
	r, err := d.peekRune()
	if err != nil {
		return false, err
	}
	return false, d.tokenError(r)
}

// digitRun consumes the maximal run of ASCII digits and the extra
// bytes and returns it. Malformed runs (say, a stray minus in the
// middle) are left for strconv to reject.
func (d *Decoder) digitRun(extra string) string {
	i := 0
	for i < len(d.rest) {
		c := d.rest[i]
		if (c >= '0' && c <= '9') || strings.IndexByte(extra, c) >= 0 {
			i++
			continue
		}
		break
	}
	run := d.rest[:i]
	d.rest = d.rest[i:]
	return run
}

func (d *Decoder) parseInt(bits int) (int64, error) {
	run := d.digitRun("-")
	n, err := strconv.ParseInt(run, 10, bits)
	if err != nil {
		return 0, numberError(err)
	}
	return n, nil
}

func (d *Decoder) parseUint(bits int) (uint64, error) {
	run := d.digitRun("")
	n, err := strconv.ParseUint(run, 10, bits)
	if err != nil {
		return 0, numberError(err)
	}
	return n, nil
}

func (d *Decoder) parseFloat(bits int) (float64, error) {
	// A null on the wire is a foreign "unknown numeric"; it becomes
	// NaN rather than an error.
	if strings.HasPrefix(d.rest, "null") {
		d.rest = d.rest[len("null"):]
		return math.NaN(), nil
	}
	run := d.digitRun("-.")
	f, err := strconv.ParseFloat(run, bits)
	if err != nil {
		return 0, numberError(err)
	}
	return f, nil
}

// parseString decodes a quoted string. As long as no escape sequence
// appears, the result is a substring of the input sharing its backing
// array; the first backslash switches to an owned buffer seeded with
// the prefix scanned so far.
func (d *Decoder) parseString() (string, error) {
	if len(d.rest) == 0 {
		return "", ErrUnexpectedEnd
	}
	if d.rest[0] != '"' {
		r, _ := utf8.DecodeRuneInString(d.rest)
		return "", d.tokenError(r)
	}
	s := d.rest
	// Quote and backslash are ASCII, so scanning bytes cannot split a
	// multi-byte rune.
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			out := s[1:i]
			d.rest = s[i+1:]
			return out, nil
		case '\\':
			return d.parseStringSlow(s, i)
		}
	}
	return "", ErrUnexpectedEnd
}

// parseStringSlow picks up at the first backslash, s[i] == '\\'.
func (d *Decoder) parseStringSlow(s string, i int) (string, error) {
	var b strings.Builder
	b.WriteString(s[1:i])
	for i < len(s) {
		c := s[i]
		if c == '"' {
			d.rest = s[i+1:]
			return b.String(), nil
		}
		if c != '\\' {
			j := i
			for j < len(s) && s[j] != '"' && s[j] != '\\' {
				j++
			}
			b.WriteString(s[i:j])
			i = j
			continue
		}
		i++
		if i >= len(s) {
			return "", ErrUnexpectedEnd
		}
		var err error
		i, err = d.unescape(&b, s, i)
		if err != nil {
			return "", err
		}
	}
	return "", ErrUnexpectedEnd
}

// unescape appends the escape beginning at s[i] (the byte after the
// backslash) to b and returns the index of the first byte after the
// escape.
func (d *Decoder) unescape(b *strings.Builder, s string, i int) (int, error) {
	switch c := s[i]; c {
	case '"', '\\', '/':
		b.WriteByte(c)
		return i + 1, nil
	case 'b':
		b.WriteByte('\b')
		return i + 1, nil
	case 'f':
		b.WriteByte('\f')
		return i + 1, nil
	case 'n':
		b.WriteByte('\n')
		return i + 1, nil
	case 'r':
		b.WriteByte('\r')
		return i + 1, nil
	case 't':
		b.WriteByte('\t')
		return i + 1, nil
	case 'u':
		i++
		if i+4 > len(s) {
			return 0, ErrUnexpectedEnd
		}
		var code uint32
		for k := 0; k < 4; k++ {
			digit := hexDigit(s[i+k])
			if digit < 0 {
				return 0, fmt.Errorf("%w: %q is not a hex digit", ErrUnicodeEscape, rune(s[i+k]))
			}
			code = code<<4 | uint32(digit)
		}
		// 4 hex digits cannot exceed U+FFFF, so only surrogate halves
		// can be invalid here.
		r := rune(code)
		if !utf8.ValidRune(r) {
			return 0, &EscapeError{Code: code, Offset: len(d.input) - len(s) + i}
		}
		b.WriteRune(r)
		return i + 4, nil
	default:
		r, _ := utf8.DecodeRuneInString(s[i:])
		return 0, &TokenError{Token: r, Offset: len(d.input) - len(s) + i}
	}
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// Bool decodes a boolean. 1, 0, true and false are all accepted;
// anything else is a token error.
func (d *Decoder) Bool() (bool, error) {
	if err := d.trim(); err != nil {
		return false, err
	}
	return d.parseBool()
}

func (d *Decoder) Int8() (int8, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	n, err := d.parseInt(8)
	return int8(n), err
}

func (d *Decoder) Int16() (int16, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	n, err := d.parseInt(16)
	return int16(n), err
}

func (d *Decoder) Int32() (int32, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	n, err := d.parseInt(32)
	return int32(n), err
}

// Int64 decodes a 64-bit integer from its quoted decimal form. Wide
// integers ride the wire as strings so consumers with 53-bit-safe
// numeric domains never round them.
func (d *Decoder) Int64() (int64, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, numberError(err)
	}
	return n, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	n, err := d.parseUint(8)
	return uint8(n), err
}

func (d *Decoder) Uint16() (uint16, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	n, err := d.parseUint(16)
	return uint16(n), err
}

func (d *Decoder) Uint32() (uint32, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	n, err := d.parseUint(32)
	return uint32(n), err
}

// Uint64 decodes a 64-bit unsigned integer from its quoted decimal
// form.
func (d *Decoder) Uint64() (uint64, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, numberError(err)
	}
	return n, nil
}

var (
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	minUint128 = new(big.Int)
)

// Int128 decodes a 128-bit integer from its quoted decimal form.
func (d *Decoder) Int128() (*big.Int, error) {
	return d.parseBig(minInt128, maxInt128)
}

// Uint128 decodes a 128-bit unsigned integer from its quoted decimal
// form.
func (d *Decoder) Uint128() (*big.Int, error) {
	return d.parseBig(minUint128, maxUint128)
}

func (d *Decoder) parseBig(min, max *big.Int) (*big.Int, error) {
	if err := d.trim(); err != nil {
		return nil, err
	}
	s, err := d.parseString()
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrNumber, s)
	}
	if n.Cmp(min) < 0 || n.Cmp(max) > 0 {
		return nil, fmt.Errorf("%w: value %s out of range", ErrNumber, s)
	}
	return n, nil
}

func (d *Decoder) Float32() (float32, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	f, err := d.parseFloat(32)
	return float32(f), err
}

// Float64 decodes a float. The literal null decodes to NaN.
func (d *Decoder) Float64() (float64, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	return d.parseFloat(64)
}

// Rune decodes a single character from its string form.
func (d *Decoder) Rune() (rune, error) {
	if err := d.trim(); err != nil {
		return 0, err
	}
	s, err := d.parseString()
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, d.tokenError('"')
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Str decodes a string. The result shares the input's backing array
// unless an escape sequence forced a copy, so it stays valid exactly
// as long as the input does.
func (d *Decoder) Str() (string, error) {
	if err := d.trim(); err != nil {
		return "", err
	}
	return d.parseString()
}

// Bytes decodes a byte string from its quoted URL-safe base64 form.
func (d *Decoder) Bytes() ([]byte, error) {
	if err := d.trim(); err != nil {
		return nil, err
	}
	s, err := d.parseString()
	if err != nil {
		return nil, err
	}
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, base64Error(err)
	}
	return raw, nil
}

// Null consumes the null literal.
func (d *Decoder) Null() error {
	if err := d.trim(); err != nil {
		return err
	}
	if !strings.HasPrefix(d.rest, "null") {
		r, err := d.peekRune()
		if err != nil {
			return err
		}
		return d.tokenError(r)
	}
	d.rest = d.rest[len("null"):]
	return nil
}

// Option reports whether an optional value is present. An absent value
// (the null literal) is fully consumed; when present, the cursor is
// left at the inner value for the caller to decode.
func (d *Decoder) Option() (bool, error) {
	if err := d.trim(); err != nil {
		return false, err
	}
	if len(d.rest) == 0 {
		return false, ErrUnexpectedEnd
	}
	if d.rest[0] == 'n' {
		return false, d.Null()
	}
	return true, nil
}

// Cursor walks the elements of one open sequence or map. It tracks
// whether the first element has been consumed, so the comma separator
// is demanded in exactly the right places: never before the first
// element, always before every later one. Next stops at the closing
// bracket without consuming it; End consumes it.
type Cursor struct {
	d     *Decoder
	end   byte
	first bool
}

// Seq opens a sequence and returns its cursor.
func (d *Decoder) Seq() (*Cursor, error) {
	return d.openCompound('[', ']')
}

// Map opens a map or struct body and returns its cursor.
func (d *Decoder) Map() (*Cursor, error) {
	return d.openCompound('{', '}')
}

func (d *Decoder) openCompound(open, end byte) (*Cursor, error) {
	if err := d.trim(); err != nil {
		return nil, err
	}
	if err := d.push(); err != nil {
		return nil, err
	}
	if err := d.expect(open); err != nil {
		d.pop()
		return nil, err
	}
	return &Cursor{d: d, end: end, first: true}, nil
}

// Next reports whether another element (another key, for maps)
// follows, consuming the separating comma on the way.
func (c *Cursor) Next() (bool, error) {
	d := c.d
	if err := d.trim(); err != nil {
		return false, err
	}
	if len(d.rest) == 0 {
		return false, ErrUnexpectedEnd
	}
	if d.rest[0] == c.end {
		return false, nil
	}
	if c.first {
		c.first = false
		return true, nil
	}
	if err := d.expect(','); err != nil {
		return false, err
	}
	return true, nil
}

// Value consumes the colon between a map key and its value.
func (c *Cursor) Value() error {
	if err := c.d.trim(); err != nil {
		return err
	}
	return c.d.expect(':')
}

// End consumes the compound's closing bracket.
func (c *Cursor) End() error {
	if err := c.d.trim(); err != nil {
		return err
	}
	if err := c.d.expect(c.end); err != nil {
		return err
	}
	c.d.pop()
	return nil
}

// Variant reads a variant tag and reports which physical shape carried
// it. A bare quoted tag is a unit variant (hasPayload false, nothing
// more to read). The object shape {"Tag":payload} reports hasPayload
// true: the caller decodes the payload in its declared shape (a
// sequence for a tuple variant, a map for named fields), then calls
// EndVariant. A unit-variant target seeing the object shape must
// reject it.
func (d *Decoder) Variant() (tag string, hasPayload bool, err error) {
	if err = d.trim(); err != nil {
		return "", false, err
	}
	if len(d.rest) == 0 {
		return "", false, ErrUnexpectedEnd
	}
	switch d.rest[0] {
	case '"':
		tag, err = d.parseString()
		return tag, false, err
	case '{':
		if err = d.push(); err != nil {
			return "", false, err
		}
		d.rest = d.rest[1:]
		if err = d.trim(); err != nil {
			return "", false, err
		}
		if tag, err = d.parseString(); err != nil {
			return "", false, err
		}
		if err = d.trim(); err != nil {
			return "", false, err
		}
		if err = d.expect(':'); err != nil {
			return "", false, err
		}
		return tag, true, nil
	default:
		r, _ := utf8.DecodeRuneInString(d.rest)
		return "", false, d.tokenError(r)
	}
}

// EndVariant consumes the closing brace of an object-shaped variant.
func (d *Decoder) EndVariant() error {
	if err := d.trim(); err != nil {
		return err
	}
	if err := d.expect('}'); err != nil {
		return err
	}
	d.pop()
	return nil
}

// Skip consumes exactly one value of any kind and discards it, nested
// values included. Unknown struct fields go through here so the cursor
// always lands on the next separator instead of guessing the skipped
// value's extent.
func (d *Decoder) Skip() error {
	if err := d.trim(); err != nil {
		return err
	}
	if len(d.rest) == 0 {
		return ErrUnexpectedEnd
	}
	switch c := d.rest[0]; {
	case c == 'n':
		return d.Null()
	case c == 't' || c == 'f':
		_, err := d.parseBool()
		return err
	case c == '"':
		_, err := d.parseString()
		return err
	case c == '-' || (c >= '0' && c <= '9'):
		d.digitRun("-.")
		return nil
	case c == '[':
		seq, err := d.Seq()
		if err != nil {
			return err
		}
		for {
			ok, err := seq.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if err := d.Skip(); err != nil {
				return err
			}
		}
		return seq.End()
	case c == '{':
		mp, err := d.Map()
		if err != nil {
			return err
		}
		for {
			ok, err := mp.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if err := d.Skip(); err != nil {
				return err
			}
			if err := mp.Value(); err != nil {
				return err
			}
			if err := d.Skip(); err != nil {
				return err
			}
		}
		return mp.End()
	default:
		r, _ := utf8.DecodeRuneInString(d.rest)
		return d.tokenError(r)
	}
}

// Any decodes one value of any kind into the natural Go shape: nil,
// bool, float64, string, []any or map[string]any. Dispatch is on the
// first byte, so bare 1 and 0 become numbers here; only true and false
// produce booleans.
func (d *Decoder) Any() (any, error) {
	if err := d.trim(); err != nil {
		return nil, err
	}
	if len(d.rest) == 0 {
		return nil, ErrUnexpectedEnd
	}
	switch c := d.rest[0]; {
	case c == 'n':
		return nil, d.Null()
	case c == 't' || c == 'f':
		return d.parseBool()
	case c == '"':
		return d.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return d.parseFloat(64)
	case c == '[':
		seq, err := d.Seq()
		if err != nil {
			return nil, err
		}
		out := []any{}
		for {
			ok, err := seq.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			v, err := d.Any()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if err := seq.End(); err != nil {
			return nil, err
		}
		return out, nil
	case c == '{':
		mp, err := d.Map()
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		for {
			ok, err := mp.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			key, err := d.Str()
			if err != nil {
				return nil, err
			}
			if err := mp.Value(); err != nil {
				return nil, err
			}
			v, err := d.Any()
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		if err := mp.End(); err != nil {
			return nil, err
		}
		return out, nil
	default:
		r, _ := utf8.DecodeRuneInString(d.rest)
		return nil, d.tokenError(r)
	}
}
