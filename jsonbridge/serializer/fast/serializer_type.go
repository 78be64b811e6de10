package fast

// SerializerType identifies a backend the build can select.
type SerializerType int

const (
	SerializerTypeSonic SerializerType = iota
	SerializerTypeGoJSON
)

func (t SerializerType) String() string {
	switch t {
	case SerializerTypeSonic:
		return "sonic"
	case SerializerTypeGoJSON:
		return "go-json"
	default:
		return "unknown"
	}
}
