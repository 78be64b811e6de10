package json4web

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStruct(t *testing.T) {
	type test struct {
		Int uint32   `j4w:"int"`
		Seq []string `j4w:"seq"`
	}

	var v test
	require.NoError(t, UnmarshalString(`{"int":1,"seq":["a","b"]}`, &v))
	assert.Equal(t, test{Int: 1, Seq: []string{"a", "b"}}, v)
}

func TestDecodeWhitespace(t *testing.T) {
	type test struct {
		Int uint32   `j4w:"int"`
		Seq []string `j4w:"seq"`
	}

	var v test
	j := " \t\r\n{ \"int\" : 1 ,\n\t\"seq\" : [ \"a\" , \"b\" ] }"
	require.NoError(t, UnmarshalString(j, &v))
	assert.Equal(t, test{Int: 1, Seq: []string{"a", "b"}}, v)
}

func TestDecodeEnum(t *testing.T) {
	t.Run("unit", func(t *testing.T) {
		var v testEnum
		require.NoError(t, UnmarshalString(`"Unit"`, &v))
		assert.Equal(t, testEnum{kind: "Unit"}, v)
	})

	t.Run("newtype", func(t *testing.T) {
		var v testEnum
		require.NoError(t, UnmarshalString(`{"Newtype":1}`, &v))
		assert.Equal(t, testEnum{kind: "Newtype", newtype: 1}, v)
	})

	t.Run("tuple", func(t *testing.T) {
		var v testEnum
		require.NoError(t, UnmarshalString(`{"Tuple":[1,2]}`, &v))
		assert.Equal(t, testEnum{kind: "Tuple", tuple: [2]uint32{1, 2}}, v)
	})

	t.Run("struct", func(t *testing.T) {
		var v testEnum
		require.NoError(t, UnmarshalString(`{"Struct":{"a":1}}`, &v))
		assert.Equal(t, testEnum{kind: "Struct", a: 1}, v)
	})

	t.Run("unknown tag", func(t *testing.T) {
		var v testEnum
		assert.Error(t, UnmarshalString(`"Bogus"`, &v))
	})
}

func TestDecodeBytes(t *testing.T) {
	type b struct {
		B []byte `j4w:"b"`
	}

	var v b
	require.NoError(t, UnmarshalString(`{"b":"Ynl0ZXMgdGVzdA=="}`, &v))
	assert.Equal(t, []byte("bytes test"), v.B)
}

func TestDecodeBool(t *testing.T) {
	for j, expected := range map[string]bool{
		"1":     true,
		"true":  true,
		"0":     false,
		"false": false,
	} {
		var v bool
		require.NoError(t, UnmarshalString(j, &v))
		assert.Equal(t, expected, v, "input %q", j)
	}
}

func TestDecodeNumbers(t *testing.T) {
	t.Run("narrow integers are bare", func(t *testing.T) {
		var v8 uint8
		require.NoError(t, UnmarshalString("123", &v8))
		assert.Equal(t, uint8(123), v8)

		var v16 int16
		require.NoError(t, UnmarshalString("-12345", &v16))
		assert.Equal(t, int16(-12345), v16)

		var v32 uint32
		require.NoError(t, UnmarshalString("1234512345", &v32))
		assert.Equal(t, uint32(1234512345), v32)
	})

	t.Run("wide integers are quoted", func(t *testing.T) {
		var i64 int64
		require.NoError(t, UnmarshalString(`"-1234512345"`, &i64))
		assert.Equal(t, int64(-1234512345), i64)

		var u64 uint64
		require.NoError(t, UnmarshalString(`"18446744073709551615"`, &u64))
		assert.Equal(t, uint64(18446744073709551615), u64)

		// int and uint never get the bare form, whatever the platform
		// width.
		var i int
		require.NoError(t, UnmarshalString(`"42"`, &i))
		assert.Equal(t, 42, i)
	})

	t.Run("floats", func(t *testing.T) {
		var f32 float32
		require.NoError(t, UnmarshalString("1.3", &f32))
		assert.Equal(t, float32(1.3), f32)

		var f64 float64
		require.NoError(t, UnmarshalString("-0.25", &f64))
		assert.Equal(t, -0.25, f64)
	})

	t.Run("null reads as NaN", func(t *testing.T) {
		d := NewDecoderString("null", nil)
		f, err := d.Float64()
		require.NoError(t, err)
		assert.True(t, math.IsNaN(f))
		// The literal must be consumed, not peeked.
		assert.Empty(t, d.rest)
	})
}

func TestDecode128(t *testing.T) {
	d := NewDecoderString(`"12345123451234512345"`, nil)
	n, err := d.Uint128()
	require.NoError(t, err)
	assert.Equal(t, "12345123451234512345", n.String())

	d = NewDecoderString(`"-170141183460469231731687303715884105728"`, nil)
	n, err = d.Int128()
	require.NoError(t, err)
	assert.Equal(t, "-170141183460469231731687303715884105728", n.String())

	t.Run("out of range", func(t *testing.T) {
		d := NewDecoderString(`"340282366920938463463374607431768211456"`, nil)
		_, err := d.Uint128()
		assert.ErrorIs(t, err, ErrNumber)

		d = NewDecoderString(`"-1"`, nil)
		_, err = d.Uint128()
		assert.ErrorIs(t, err, ErrNumber)

		d = NewDecoderString(`"170141183460469231731687303715884105728"`, nil)
		_, err = d.Int128()
		assert.ErrorIs(t, err, ErrNumber)
	})
}

func TestDecodeBigInt(t *testing.T) {
	type wallet struct {
		Balance big.Int `j4w:"balance"`
	}

	var v wallet
	require.NoError(t, UnmarshalString(`{"balance":"123456789012345678901234567890"}`, &v))
	assert.Equal(t, "123456789012345678901234567890", v.Balance.String())
}

func TestDecodeString(t *testing.T) {
	var v string
	require.NoError(t, UnmarshalString(`"\"\\\/\b\f\n\r\t"`, &v))
	assert.Equal(t, "\"\\/\b\f\n\r\t", v)

	require.NoError(t, UnmarshalString(`"ğ…"`, &v))
	assert.Equal(t, "ğ…", v)

	require.NoError(t, UnmarshalString(`"\u011f"`, &v))
	assert.Equal(t, "ğ", v)

	require.NoError(t, UnmarshalString(`"\u0022"`, &v))
	assert.Equal(t, `"`, v)
}

func TestDecodeRune(t *testing.T) {
	d := NewDecoderString(`"ğ"`, nil)
	r, err := d.Rune()
	require.NoError(t, err)
	assert.Equal(t, 'ğ', r)

	d = NewDecoderString(`""`, nil)
	_, err = d.Rune()
	assert.ErrorIs(t, err, ErrUnexpectedToken)
}

func TestDecodeOption(t *testing.T) {
	type opt struct {
		A *uint32 `j4w:"a"`
	}

	var v opt
	require.NoError(t, UnmarshalString(`{"a":null}`, &v))
	assert.Nil(t, v.A)

	require.NoError(t, UnmarshalString(`{"a":5}`, &v))
	require.NotNil(t, v.A)
	assert.Equal(t, uint32(5), *v.A)

	// A present value overwritten by null must come back nil.
	require.NoError(t, UnmarshalString(`{"a":null}`, &v))
	assert.Nil(t, v.A)
}

func TestDecodeArray(t *testing.T) {
	var v [2]string
	require.NoError(t, UnmarshalString(`["a","b","c"]`, &v))
	assert.Equal(t, [2]string{"a", "b"}, v)

	v = [2]string{"x", "y"}
	require.NoError(t, UnmarshalString(`["a"]`, &v))
	assert.Equal(t, [2]string{"a", ""}, v)
}

func TestDecodeMap(t *testing.T) {
	var sm map[string]uint32
	require.NoError(t, UnmarshalString(`{"a":1,"b":2}`, &sm))
	assert.Equal(t, map[string]uint32{"a": 1, "b": 2}, sm)

	// Narrow integer keys ride bare, wide ones quoted, exactly like
	// they do in value position.
	var nm map[uint32]string
	require.NoError(t, UnmarshalString(`{1:"a",2:"b"}`, &nm))
	assert.Equal(t, map[uint32]string{1: "a", 2: "b"}, nm)

	var wm map[uint64]string
	require.NoError(t, UnmarshalString(`{"1":"a"}`, &wm))
	assert.Equal(t, map[uint64]string{1: "a"}, wm)
}

func TestDecodeUnknownFields(t *testing.T) {
	type test struct {
		Int uint32   `j4w:"int"`
		Seq []string `j4w:"seq"`
	}

	var v test
	j := `{"junk":{"a":[1,2,{"b":null}],"c":"x\n"},"int":1,"more":[[]],"seq":[]}`
	require.NoError(t, UnmarshalString(j, &v))
	assert.Equal(t, test{Int: 1, Seq: []string{}}, v)
}

func TestDecodeMissingRequired(t *testing.T) {
	type test struct {
		A uint32  `j4w:"a"`
		B string  `j4w:"b"`
		C *uint32 `j4w:"c"`
		D string  `j4w:"d,omitempty"`
	}

	var v test
	err := UnmarshalString(`{"a":1}`, &v)
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing required fields")
	assert.ErrorContains(t, err, "[b]")

	// Optional fields may be absent.
	require.NoError(t, UnmarshalString(`{"a":1,"b":"x"}`, &v))
	assert.Equal(t, test{A: 1, B: "x"}, v)
}

func TestDecodeAny(t *testing.T) {
	var v any
	j := `{"a":true,"b":1,"c":"s","d":[null,false],"e":{"f":2.5}}`
	require.NoError(t, UnmarshalString(j, &v))
	assert.Equal(t, map[string]any{
		"a": true,
		"b": float64(1),
		"c": "s",
		"d": []any{nil, false},
		"e": map[string]any{"f": 2.5},
	}, v)

	// Without a schema a bare 1 is a number. Only true and false decode
	// as booleans here.
	require.NoError(t, UnmarshalString("1", &v))
	assert.Equal(t, float64(1), v)
}

func TestDecodeTrailingInput(t *testing.T) {
	// One value is consumed; whatever follows it is the caller's
	// business.
	var v uint32
	require.NoError(t, UnmarshalString("1 trailing garbage", &v))
	assert.Equal(t, uint32(1), v)
}

func TestDecodeTarget(t *testing.T) {
	assert.Error(t, UnmarshalString("1", nil))

	var v uint32
	assert.Error(t, UnmarshalString("1", v))

	var p *uint32
	assert.Error(t, UnmarshalString("1", p))
}

func TestDecodeErrors(t *testing.T) {
	t.Run("unexpected end", func(t *testing.T) {
		var v map[string]uint32
		assert.ErrorIs(t, UnmarshalString("", &v), ErrUnexpectedEnd)
		assert.ErrorIs(t, UnmarshalString("{", &v), ErrUnexpectedEnd)
		assert.ErrorIs(t, UnmarshalString(`{"a":1`, &v), ErrUnexpectedEnd)

		var s string
		assert.ErrorIs(t, UnmarshalString(`"abc`, &s), ErrUnexpectedEnd)
	})

	t.Run("unexpected token", func(t *testing.T) {
		var s string
		err := UnmarshalString("x", &s)
		assert.ErrorIs(t, err, ErrUnexpectedToken)

		var m map[string]uint32
		err = UnmarshalString(`{"a":1,}`, &m)
		require.ErrorIs(t, err, ErrUnexpectedToken)

		var te *TokenError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, '}', te.Token)
		assert.Equal(t, 7, te.Offset)

		var b bool
		err = UnmarshalString("yes", &b)
		assert.ErrorIs(t, err, ErrUnexpectedToken)
	})

	t.Run("bad escapes", func(t *testing.T) {
		var s string
		assert.ErrorIs(t, UnmarshalString(`"\q"`, &s), ErrUnexpectedToken)
		assert.ErrorIs(t, UnmarshalString(`"\u12g4"`, &s), ErrUnicodeEscape)
		assert.ErrorIs(t, UnmarshalString(`"\u12"`, &s), ErrUnexpectedEnd)

		err := UnmarshalString(`"\ud800"`, &s)
		require.ErrorIs(t, err, ErrUnicodeEscape)
		var ee *EscapeError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, uint32(0xd800), ee.Code)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		var s string
		err := Unmarshal([]byte{'"', 0xff, 0xfe, '"'}, &s)
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("malformed numbers", func(t *testing.T) {
		var v uint8
		assert.ErrorIs(t, UnmarshalString("999", &v), ErrNumber)
		assert.ErrorIs(t, UnmarshalString("x", &v), ErrNumber)

		var i int16
		assert.ErrorIs(t, UnmarshalString("40000", &i), ErrNumber)

		var u uint32
		assert.ErrorIs(t, UnmarshalString("-1", &u), ErrNumber)
	})

	t.Run("bad base64", func(t *testing.T) {
		var b []byte
		assert.ErrorIs(t, UnmarshalString(`"!!!"`, &b), ErrBase64)
	})

	t.Run("max depth", func(t *testing.T) {
		var v any
		j := "[[[[[1]]]]]"
		err := NewDecoderString(j, &Config{MaxDepth: 3}).Decode(&v)
		assert.ErrorIs(t, err, ErrMaxDepth)

		require.NoError(t, NewDecoderString(j, &Config{MaxDepth: 5}).Decode(&v))
	})
}

func TestDecodeStringZeroCopy(t *testing.T) {
	input := `"a long enough string with no escapes at all"`
	var out string
	allocs := testing.AllocsPerRun(100, func() {
		d := Decoder{input: input, rest: input, maxDepth: DefaultMaxDepth, debug: noopDebugger{}}
		s, err := d.Str()
		if err != nil {
			t.Fatal(err)
		}
		out = s
	})
	assert.Zero(t, allocs)
	assert.Equal(t, `a long enough string with no escapes at all`, out)
}

func TestDecodeSkipConsumes(t *testing.T) {
	d := NewDecoderString(`{"a":[1,"two",null,{"b":0}],"c":true} leftover`, nil)
	require.NoError(t, d.Skip())
	assert.Equal(t, " leftover", d.rest)
}
