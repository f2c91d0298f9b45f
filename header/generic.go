package header

import "fmt"

// genericState is the state variable of the generic grammar's
// (state, token-kind) → (state, action) machine, recognising
// `1#( field-value *( OWS ";" OWS name "=" value ) )` (spec.md §4.3).
type genericState int

const (
	gsValue genericState = iota
	gsAfterValue
	gsParamName
	gsParamEquals
	gsParamValue
	gsAfterParam
)

// ParseGeneric parses a header field value using the generic
// value-with-parameters grammar: a comma-separated list of field-values,
// each optionally followed by `;`-separated `name=value` parameters.
func ParseGeneric(raw string) ([]Descriptor, error) {
	outer, err := lexOuter(raw)
	if err != nil {
		return nil, err
	}
	lexemes := fineLex(outer, ",;=")

	var result []Descriptor
	var cur *Descriptor
	var pendingName string
	state := gsValue

	emit := func() {
		if cur != nil {
			result = append(result, *cur)
			cur = nil
		}
	}

	for _, lx := range lexemes {
		switch state {
		case gsValue:
			switch {
			case lx.kind == lexToken || lx.kind == lexQuoted:
				cur = &Descriptor{Value: lx.text}
				state = gsAfterValue
			case lx.kind == lexDelim && lx.delim == ',':
				// empty list element, permitted by the `1#` rule
			default:
				return nil, fmt.Errorf("header: unexpected %s, expected a value", describe(lx))
			}

		case gsAfterValue:
			if lx.kind != lexDelim {
				return nil, fmt.Errorf("header: unexpected %s after value", describe(lx))
			}
			switch lx.delim {
			case ',':
				emit()
				state = gsValue
			case ';':
				state = gsParamName
			default:
				return nil, fmt.Errorf("header: unexpected delimiter %q after value", lx.delim)
			}

		case gsParamName:
			if lx.kind != lexToken {
				return nil, fmt.Errorf("header: expected parameter name, got %s", describe(lx))
			}
			pendingName = lowerASCII(lx.text)
			state = gsParamEquals

		case gsParamEquals:
			if lx.kind != lexDelim || lx.delim != '=' {
				return nil, fmt.Errorf("header: expected '=' after parameter name %q", pendingName)
			}
			state = gsParamValue

		case gsParamValue:
			if lx.kind != lexToken && lx.kind != lexQuoted {
				return nil, fmt.Errorf("header: expected a value for parameter %q", pendingName)
			}
			if cur.Params == nil {
				cur.Params = make(map[string]string)
			}
			cur.Params[pendingName] = lx.text
			state = gsAfterParam

		case gsAfterParam:
			if lx.kind != lexDelim {
				return nil, fmt.Errorf("header: unexpected %s after parameter value", describe(lx))
			}
			switch lx.delim {
			case ',':
				emit()
				state = gsValue
			case ';':
				state = gsParamName
			default:
				return nil, fmt.Errorf("header: unexpected delimiter %q", lx.delim)
			}
		}
	}

	switch state {
	case gsValue:
		// trailing empty element, or an entirely empty field: fine
	case gsAfterValue, gsAfterParam:
		emit()
	default:
		return nil, fmt.Errorf("header: unexpected end of header value")
	}

	return result, nil
}

// ParseSingleValued parses a header that must not be split on commas or
// semicolons at all (e.g. User-Agent): the whole field value becomes one
// Descriptor with no parameters.
func ParseSingleValued(raw string) ([]Descriptor, error) {
	return []Descriptor{{Value: raw}}, nil
}

func describe(lx lexeme) string {
	switch lx.kind {
	case lexToken:
		return fmt.Sprintf("token %q", lx.text)
	case lexQuoted:
		return fmt.Sprintf("quoted-string %q", lx.text)
	default:
		return fmt.Sprintf("delimiter %q", lx.delim)
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
