//go:build amd64 && (linux || windows || darwin)

package sonic

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/karagenc/json4web-go/jsonbridge/serializer"
)

// Config is re-exported so callers can configure the backend without
// importing bytedance/sonic themselves.
type Config = sonic.Config

// New freezes config into a sonic API and wraps it as a serializer.
func New(config Config) serializer.JSONSerializer {
	return api{sonic: config.Froze()}
}

type api struct {
	sonic sonic.API
}

func (a api) Marshal(v any) ([]byte, error)      { return a.sonic.Marshal(v) }
func (a api) Unmarshal(data []byte, v any) error { return a.sonic.Unmarshal(data, v) }

func (a api) NewEncoder(w io.Writer) serializer.JSONEncoder { return a.sonic.NewEncoder(w) }
func (a api) NewDecoder(r io.Reader) serializer.JSONDecoder { return a.sonic.NewDecoder(r) }
