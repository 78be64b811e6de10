//go:build amd64 && (linux || windows || darwin)

package fast

import (
	"github.com/karagenc/json4web-go/jsonbridge/serializer"
	"github.com/karagenc/json4web-go/jsonbridge/serializer/sonic"
)

// New returns the fastest JSON backend the target supports: sonic
// here, go-json elsewhere.
func New() serializer.JSONSerializer {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(config Config) serializer.JSONSerializer {
	return sonic.New(config.Sonic)
}

// Type reports which backend the build selected.
func Type() SerializerType {
	return SerializerTypeSonic
}
