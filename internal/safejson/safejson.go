// Package safejson decodes JSON request bodies while rejecting
// "__proto__" as an object key, per spec.md §4.4 and §9: the wire
// format is the attack surface regardless of whether the host language
// has prototype-based objects, so the core refuses to decode a body
// that tries to smuggle one in.
package safejson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Unmarshal decodes data the same way encoding/json would, except that
// any JSON object containing a "__proto__" key is rejected outright.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("safejson: unexpected trailing data after JSON value")
	}
	if err := checkProtoPollution(v); err != nil {
		return nil, err
	}
	return v, nil
}

func checkProtoPollution(v any) error {
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t["__proto__"]; ok {
			return fmt.Errorf("safejson: \"__proto__\" is not a legal object key")
		}
		for _, child := range t {
			if err := checkProtoPollution(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range t {
			if err := checkProtoPollution(child); err != nil {
				return err
			}
		}
	}
	return nil
}
