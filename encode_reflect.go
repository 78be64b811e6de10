package json4web

import (
	"math/big"
	"reflect"
	"sort"
)

// Encode encodes one value of any Go shape and flushes the sink.
// Types implementing Marshaler encode themselves; everything else is
// walked with reflection per the TagKey rules.
func (e *Encoder) Encode(v any) error {
	e.debug.Log("encode", reflect.TypeOf(v))
	if err := e.encodeValue(reflect.ValueOf(v)); err != nil {
		e.debug.Log("encode error", err)
		return err
	}
	return e.Flush()
}

func (e *Encoder) encodeValue(rv reflect.Value) error {
	// reflect.ValueOf(nil) lands here; untyped nil is the unit value.
	if !rv.IsValid() {
		return e.Null()
	}

	if rv.CanInterface() {
		if m, ok := rv.Interface().(Marshaler); ok {
			if rv.Kind() == reflect.Ptr && rv.IsNil() {
				return e.Null()
			}
			return m.MarshalJSON4Web(e)
		}
		if rv.CanAddr() {
			if m, ok := rv.Addr().Interface().(Marshaler); ok {
				return m.MarshalJSON4Web(e)
			}
		}
	}

	if rv.Type() == bigIntType {
		n := rv.Interface().(big.Int)
		return e.writeQuoted(n.String())
	}

	switch rv.Kind() {
	case reflect.Bool:
		return e.Bool(rv.Bool())

	case reflect.Int8, reflect.Int16, reflect.Int32:
		return e.writeInt(rv.Int())

	case reflect.Int64, reflect.Int:
		return e.Int64(rv.Int())

	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return e.writeUint(rv.Uint())

	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return e.Uint64(rv.Uint())

	case reflect.Float32:
		return e.writeFloat(rv.Float(), 32)

	case reflect.Float64:
		return e.writeFloat(rv.Float(), 64)

	case reflect.String:
		return e.Str(rv.String())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.Bytes(rv.Bytes())
		}
		return e.encodeSeq(rv)

	case reflect.Array:
		return e.encodeSeq(rv)

	case reflect.Map:
		return e.encodeMap(rv)

	case reflect.Struct:
		return e.encodeStruct(rv)

	case reflect.Ptr, reflect.Interface:
		// Only options and unit map to null; nil slices and maps
		// encode as their empty compounds.
		if rv.IsNil() {
			return e.Null()
		}
		return e.encodeValue(rv.Elem())

	default:
		return &ValueError{err: errUnsupportedType, Value: rv}
	}
}

func (e *Encoder) encodeSeq(rv reflect.Value) error {
	seq, err := e.BeginSeq()
	if err != nil {
		return err
	}
	l := rv.Len()
	for i := 0; i < l; i++ {
		if err := seq.Elem(); err != nil {
			return err
		}
		if err := e.encodeValue(rv.Index(i)); err != nil {
			return err
		}
	}
	return seq.End()
}

// Maps encode with sorted keys so output is deterministic. Keys follow
// their own type's width rules, symmetric with key decoding.
func (e *Encoder) encodeMap(rv reflect.Value) error {
	mp, err := e.BeginMap()
	if err != nil {
		return err
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return mapKeyLess(keys[i], keys[j])
	})
	for _, key := range keys {
		if err := mp.Key(); err != nil {
			return err
		}
		if err := e.encodeValue(key); err != nil {
			return err
		}
		if err := mp.Value(); err != nil {
			return err
		}
		if err := e.encodeValue(rv.MapIndex(key)); err != nil {
			return err
		}
	}
	return mp.End()
}

func mapKeyLess(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() < b.Uint()
	}
	return false
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	mp, err := e.BeginMap()
	if err != nil {
		return err
	}
	fields := cachedFields(rv.Type())
	for _, f := range fields.list {
		fv := rv.Field(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := mp.Field(f.name); err != nil {
			return err
		}
		if err := e.encodeValue(fv); err != nil {
			return err
		}
	}
	return mp.End()
}

func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return rv.IsNil()
	}
	return false
}
