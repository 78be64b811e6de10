// Package jsonbridge converts between json4web wire text and standard
// JSON.
//
// Conversion is schema-less: the document passes through an untyped
// any, so wire constructs with no JSON counterpart keep their surface
// form instead of their meaning. Bare 1 and 0 come out as numbers, not
// booleans, and quoted 64 and 128 bit integers come out as strings.
// Callers that know the schema should decode into a concrete type with
// the json4web package instead.
package jsonbridge

import (
	"io"

	json4web "github.com/karagenc/json4web-go"
	"github.com/karagenc/json4web-go/jsonbridge/serializer"
	"github.com/karagenc/json4web-go/jsonbridge/serializer/stdjson"
)

func orDefault(s serializer.JSONSerializer) serializer.JSONSerializer {
	if s == nil {
		return stdjson.New()
	}
	return s
}

// ToJSON converts one json4web document to standard JSON. A nil
// serializer selects encoding/json.
func ToJSON(data []byte, s serializer.JSONSerializer) ([]byte, error) {
	var v any
	if err := json4web.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return orDefault(s).Marshal(v)
}

// FromJSON converts one standard JSON document to json4web wire text.
// A nil serializer selects encoding/json.
func FromJSON(data []byte, s serializer.JSONSerializer) ([]byte, error) {
	var v any
	if err := orDefault(s).Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json4web.Marshal(v)
}

// CopyToJSON reads one json4web document from r and writes it to w as
// standard JSON.
func CopyToJSON(w io.Writer, r io.Reader, s serializer.JSONSerializer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var v any
	if err = json4web.Unmarshal(data, &v); err != nil {
		return err
	}
	return orDefault(s).NewEncoder(w).Encode(v)
}

// CopyFromJSON reads one standard JSON document from r and writes it to
// w as json4web wire text.
func CopyFromJSON(w io.Writer, r io.Reader, s serializer.JSONSerializer) error {
	var v any
	if err := orDefault(s).NewDecoder(r).Decode(&v); err != nil {
		return err
	}
	return json4web.NewEncoder(w, nil).Encode(v)
}
