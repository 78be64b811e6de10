package gojson

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/karagenc/json4web-go/jsonbridge/serializer"
)

// Options carries the go-json option sets applied on every call.
type Options struct {
	Encode []json.EncodeOptionFunc
	Decode []json.DecodeOptionFunc
}

func New(opts Options) serializer.JSONSerializer {
	return backend{opts: opts}
}

type backend struct {
	opts Options
}

func (b backend) Marshal(v any) ([]byte, error) {
	return json.MarshalWithOption(v, b.opts.Encode...)
}

func (b backend) Unmarshal(data []byte, v any) error {
	return json.UnmarshalWithOption(data, v, b.opts.Decode...)
}

func (b backend) NewEncoder(w io.Writer) serializer.JSONEncoder {
	return optionEncoder{e: json.NewEncoder(w), opts: b.opts.Encode}
}

func (b backend) NewDecoder(r io.Reader) serializer.JSONDecoder {
	return optionDecoder{d: json.NewDecoder(r), opts: b.opts.Decode}
}

// go-json's stream types take their options per call, not at
// construction, so the wrappers re-apply them on every document.
type optionEncoder struct {
	e    *json.Encoder
	opts []json.EncodeOptionFunc
}

func (e optionEncoder) Encode(v any) error { return e.e.EncodeWithOption(v, e.opts...) }

type optionDecoder struct {
	d    *json.Decoder
	opts []json.DecodeOptionFunc
}

func (d optionDecoder) Decode(v any) error { return d.d.DecodeWithOption(v, d.opts...) }
