//go:build !amd64 || (amd64 && !(linux || windows || darwin))

package fast

import (
	"github.com/karagenc/json4web-go/jsonbridge/serializer"
	gojson "github.com/karagenc/json4web-go/jsonbridge/serializer/go-json"
)

// New returns the fastest JSON backend the target supports: go-json
// here, sonic on supported amd64 targets.
func New() serializer.JSONSerializer {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(config Config) serializer.JSONSerializer {
	return gojson.New(config.GoJSON)
}

// Type reports which backend the build selected.
func Type() SerializerType {
	return SerializerTypeGoJSON
}
