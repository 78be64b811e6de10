package json4web

import (
	"math/big"
	"reflect"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karagenc/json4web-go/internal/sync"
)

// TagKey is the struct tag the reflection binding reads:
//
//	Field int    `j4w:"field"`
//	Blob  []byte `j4w:"blob,omitempty"`
//	Skip  int    `j4w:"-"`
//
// An empty name keeps the Go field name. omitempty drops the field on
// encode when it holds its type's empty value and makes it optional on
// decode; pointer fields are optional either way.
const TagKey = "j4w"

var bigIntType = reflect.TypeOf(big.Int{})

type field struct {
	name      string
	index     int
	omitEmpty bool
	required  bool
}

type structFields struct {
	list   []field
	byName map[string]int

	// required keeps the names a document must supply. Decodes clone
	// it and knock names off as keys arrive; whatever is left over is
	// the missing-field report.
	required mapset.Set[string]
}

var fieldCache sync.Map // reflect.Type -> *structFields

func cachedFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	f := typeFields(t)
	fieldCache.Store(t, f)
	return f
}

func typeFields(t reflect.Type) *structFields {
	sf := &structFields{
		byName:   make(map[string]int),
		required: mapset.NewThreadUnsafeSet[string](),
	}
	nf := t.NumField()
	for i := 0; i < nf; i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(TagKey)
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)
		if name == "" {
			name = f.Name
		}
		fl := field{
			name:      name,
			index:     i,
			omitEmpty: opts.contains("omitempty"),
		}
		fl.required = !fl.omitEmpty && f.Type.Kind() != reflect.Ptr
		sf.byName[name] = len(sf.list)
		sf.list = append(sf.list, fl)
		if fl.required {
			sf.required.Add(name)
		}
	}
	return sf
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, tagOptions(opts)
}

func (o tagOptions) contains(name string) bool {
	s := string(o)
	for s != "" {
		var opt string
		opt, s, _ = strings.Cut(s, ",")
		if opt == name {
			return true
		}
	}
	return false
}
