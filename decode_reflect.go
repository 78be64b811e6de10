package json4web

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
)

// Decode decodes one value into v, which must be a non-nil pointer.
// Types implementing Unmarshaler decode themselves; everything else is
// walked with reflection per the TagKey rules.
func (d *Decoder) Decode(v any) error {
	if v == nil {
		return fmt.Errorf("json4web: decode target is nil")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("json4web: decode target must be a non-nil pointer, got %s", rv.Type())
	}
	d.debug.Log("decode into", rv.Type())
	err := d.decodeValue(rv.Elem())
	if err != nil {
		d.debug.Log("decode error", err)
	}
	return err
}

func (d *Decoder) decodeValue(rv reflect.Value) error {
	if !rv.IsValid() || !rv.CanSet() {
		return &ValueError{err: errNonSettableValue, Value: rv}
	}

	// A type gets to decode itself first. CanSet implies
	// addressability, so taking the pointer is always legal here.
	if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
		return u.UnmarshalJSON4Web(d)
	}

	if rv.Type() == bigIntType {
		return d.decodeBigInt(rv)
	}

	switch k := rv.Kind(); k {
	case reflect.Bool:
		b, err := d.Bool()
		if err != nil {
			return err
		}
		rv.SetBool(b)

	case reflect.Int8, reflect.Int16, reflect.Int32:
		if err := d.trim(); err != nil {
			return err
		}
		n, err := d.parseInt(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetInt(n)

	case reflect.Int64, reflect.Int:
		n, err := d.Int64()
		if err != nil {
			return err
		}
		rv.SetInt(n)

	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		if err := d.trim(); err != nil {
			return err
		}
		n, err := d.parseUint(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetUint(n)

	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		n, err := d.Uint64()
		if err != nil {
			return err
		}
		rv.SetUint(n)

	case reflect.Float32, reflect.Float64:
		if err := d.trim(); err != nil {
			return err
		}
		f, err := d.parseFloat(rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)

	case reflect.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		rv.SetString(s)

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf, err := d.Bytes()
			if err != nil {
				return err
			}
			rv.SetBytes(buf)
			return nil
		}
		return d.decodeSlice(rv)

	case reflect.Array:
		return d.decodeArray(rv)

	case reflect.Map:
		return d.decodeMap(rv)

	case reflect.Struct:
		return d.decodeStruct(rv)

	case reflect.Ptr:
		present, err := d.Option()
		if err != nil {
			return err
		}
		if !present {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decodeValue(rv.Elem())

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return &ValueError{err: errUnsupportedType, Value: rv}
		}
		v, err := d.Any()
		if err != nil {
			return err
		}
		if v == nil {
			rv.Set(reflect.Zero(rv.Type()))
		} else {
			rv.Set(reflect.ValueOf(v))
		}

	default:
		return &ValueError{err: errUnsupportedType, Value: rv}
	}
	return nil
}

// big.Int fields take the quoted decimal form without a width bound;
// Int128/Uint128 are the range-checked operations.
func (d *Decoder) decodeBigInt(rv reflect.Value) error {
	if err := d.trim(); err != nil {
		return err
	}
	s, err := d.parseString()
	if err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("%w: %q is not a decimal integer", ErrNumber, s)
	}
	rv.Set(reflect.ValueOf(*n))
	return nil
}

func (d *Decoder) decodeSlice(rv reflect.Value) error {
	seq, err := d.Seq()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(rv.Type(), 0, 0)
	for {
		ok, err := seq.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		el := reflect.New(rv.Type().Elem()).Elem()
		if err := d.decodeValue(el); err != nil {
			return err
		}
		out = reflect.Append(out, el)
	}
	if err := seq.End(); err != nil {
		return err
	}
	rv.Set(out)
	return nil
}

// Arrays fill from the front; surplus wire elements are skipped and
// missing ones leave zero values.
func (d *Decoder) decodeArray(rv reflect.Value) error {
	seq, err := d.Seq()
	if err != nil {
		return err
	}
	i := 0
	for {
		ok, err := seq.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if i < rv.Len() {
			if err := d.decodeValue(rv.Index(i)); err != nil {
				return err
			}
		} else {
			if err := d.Skip(); err != nil {
				return err
			}
		}
		i++
	}
	for ; i < rv.Len(); i++ {
		rv.Index(i).Set(reflect.Zero(rv.Type().Elem()))
	}
	return seq.End()
}

// Map keys decode by their own type's rules, mirroring the encoder:
// string keys arrive quoted, 32-bit-class integer keys bare, 64-bit
// ones quoted.
func (d *Decoder) decodeMap(rv reflect.Value) error {
	mp, err := d.Map()
	if err != nil {
		return err
	}
	t := rv.Type()
	out := reflect.MakeMap(t)
	for {
		ok, err := mp.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key := reflect.New(t.Key()).Elem()
		if err := d.decodeValue(key); err != nil {
			return err
		}
		if err := mp.Value(); err != nil {
			return err
		}
		val := reflect.New(t.Elem()).Elem()
		if err := d.decodeValue(val); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	if err := mp.End(); err != nil {
		return err
	}
	rv.Set(out)
	return nil
}

func (d *Decoder) decodeStruct(rv reflect.Value) error {
	mp, err := d.Map()
	if err != nil {
		return err
	}
	fields := cachedFields(rv.Type())
	missing := fields.required.Clone()
	for {
		ok, err := mp.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key, err := d.Str()
		if err != nil {
			return err
		}
		if err := mp.Value(); err != nil {
			return err
		}
		idx, known := fields.byName[key]
		if !known {
			if err := d.Skip(); err != nil {
				return err
			}
			continue
		}
		if err := d.decodeValue(rv.Field(fields.list[idx].index)); err != nil {
			return err
		}
		missing.Remove(key)
	}
	if err := mp.End(); err != nil {
		return err
	}
	if missing.Cardinality() > 0 {
		names := missing.ToSlice()
		sort.Strings(names)
		return fmt.Errorf("json4web: missing required fields %v in %s", names, rv.Type())
	}
	return nil
}
