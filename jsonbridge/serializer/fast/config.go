package fast

import (
	"github.com/bytedance/sonic"
	"github.com/goccy/go-json"
	gojson "github.com/karagenc/json4web-go/jsonbridge/serializer/go-json"
)

// Config carries the options of both backends; the build picks which
// half takes effect.
type Config struct {
	Sonic  sonic.Config
	GoJSON gojson.Options
}

func DefaultConfig() Config {
	return Config{
		Sonic: sonic.Config{
			// Decoded strings are very likely to be kept around longer
			// than the JSON buffer they came from. We never want the
			// buffer pinned in memory because of them, so copy.
			CopyString: true,
			// The whole point of the bridge is compact transport.
			// Sacrificing CPU speed for network speed/latency is the
			// right trade here.
			CompactMarshaler: true,
			// Bridged documents regularly end up embedded in web pages.
			// Keep HTML-significant characters escaped.
			EscapeHTML: true,
			// Key order carries no meaning on either side of the bridge.
			// Not worth the sort.
			SortMapKeys: false,
		},
		GoJSON: gojson.Options{
			Encode: []json.EncodeOptionFunc{
				// Same reasoning as SortMapKeys above.
				json.UnorderedMap(),
			},
		},
	}
}
