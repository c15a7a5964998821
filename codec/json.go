package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Indent encodes the value to indented JSON.
func (JSON) Indent(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

// Default is the codec used for reports unless one is selected by name.
var Default Codec = GoJSON{}

// Indenter is implemented by codecs that can produce human-readable output.
type Indenter interface {
	Indent(v any) ([]byte, error)
}
