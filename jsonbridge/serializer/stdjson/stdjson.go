package stdjson

import (
	"encoding/json"
	"io"

	"github.com/karagenc/json4web-go/jsonbridge/serializer"
)

// New returns the encoding/json implementation, the reference behavior
// the faster backends are drop-ins for.
func New() serializer.JSONSerializer { return std{} }

type std struct{}

func (std) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (std) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (std) NewEncoder(w io.Writer) serializer.JSONEncoder { return json.NewEncoder(w) }
func (std) NewDecoder(r io.Reader) serializer.JSONDecoder { return json.NewDecoder(r) }
