package jsonx

import "github.com/goccy/go-json"

// ToDynamicJSON converts any Go value to a dynamic JSON object represented as
// a map[string]any. It first marshals the input value to JSON bytes and then
// unmarshals those bytes into a map. Channel payloads and orchestrator context
// travel as dynamic objects, so this is the canonical struct-to-payload bridge.
//
// Returns an error if the value does not encode to a JSON object.
func ToDynamicJSON(val any) (map[string]any, error) {
	result := make(map[string]any)
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FromDynamicJSON decodes a dynamic JSON object into the provided target,
// the inverse of ToDynamicJSON. Target must be a pointer.
func FromDynamicJSON(val map[string]any, target any) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}
