package serializer

import "io"

// JSONSerializer is one pluggable JSON implementation: buffer-level
// Marshal/Unmarshal plus streaming halves over io.Writer and
// io.Reader. Implementations must be safe for concurrent use.
type JSONSerializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	NewEncoder(w io.Writer) JSONEncoder
	NewDecoder(r io.Reader) JSONDecoder
}

// JSONEncoder writes one JSON document per Encode call.
type JSONEncoder interface {
	Encode(v any) error
}

// JSONDecoder reads one JSON document per Decode call.
type JSONDecoder interface {
	Decode(v any) error
}
