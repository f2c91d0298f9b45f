package header

import "strings"

// Variant selects which grammar a header name is parsed with.
type Variant int

const (
	// Generic is the default: `1#( field-value *( OWS ";" name "=" value ) )`.
	Generic Variant = iota
	// SingleCredentials is RFC 7235 `credentials` (Authorization).
	SingleCredentials
	// CredentialsList is RFC 7235 `#credentials` (WWW-Authenticate).
	CredentialsList
	// SingleValued takes the whole field value as one Descriptor,
	// unsplit (User-Agent and friends).
	SingleValued
)

// specialization maps a lowercased header name to the grammar variant
// used to parse it, per spec.md §4.3's "specialisation table".
var specialization = map[string]Variant{
	"authorization":      SingleCredentials,
	"www-authenticate":   CredentialsList,
	"proxy-authorization": SingleCredentials,
	"proxy-authenticate":  CredentialsList,
	"user-agent":         SingleValued,
}

// Specialize reports the grammar variant used for header name (matched
// case-insensitively).
func Specialize(name string) Variant {
	if v, ok := specialization[strings.ToLower(name)]; ok {
		return v
	}
	return Generic
}

// Parse tokenises and parses raw (the header's field value, with repeated
// header lines already joined by the caller) according to the
// grammar variant registered for name, returning the ordered list of
// Descriptors spec.md §4.4 requires RequestParser to store per header.
func Parse(name string, raw string) ([]Descriptor, error) {
	switch Specialize(name) {
	case SingleCredentials:
		descs, err := ParseCredentials(raw)
		if err != nil {
			return nil, err
		}
		if len(descs) > 1 {
			descs = descs[:1]
		}
		return descs, nil
	case CredentialsList:
		return ParseCredentials(raw)
	case SingleValued:
		return ParseSingleValued(raw)
	default:
		return ParseGeneric(raw)
	}
}

// isBareToken reports whether s can be written on the wire without
// quoting, per RFC 7230's `token` production (no separators, no
// whitespace, no control bytes).
func isBareToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']', '?', '=', '{', '}', ' ', '\t':
		return false
	}
	return c > 0x20 && c != 0x7f
}

// QuoteValue renders v as a bare token when legal, otherwise as a
// quoted-string with '\\' and '"' escaped — the canonical quoting rule
// spec.md §8's round-trip property requires.
func QuoteValue(v string) string {
	if isBareToken(v) {
		return v
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// Render serialises d back to wire form using the generic grammar's
// shape (`value; name="param"`), used by tests asserting the round-trip
// property and by code that needs to re-emit a parsed descriptor.
func Render(d Descriptor) string {
	var b strings.Builder
	b.WriteString(d.Value)
	names := make([]string, 0, len(d.Params))
	for n := range d.Params {
		if n == "scheme" || n == "token68" {
			continue
		}
		names = append(names, n)
	}
	sortStrings(names)
	for _, n := range names {
		b.WriteString("; ")
		b.WriteString(n)
		b.WriteString("=")
		b.WriteString(QuoteValue(d.Params[n]))
	}
	return b.String()
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
