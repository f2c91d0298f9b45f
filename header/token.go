// Package header implements the HTTP header grammar parser of spec.md
// §4.3: an outer byte-level tokenizer shared by every header, and two
// grammar-specific state machines (generic value-with-parameters, and
// the RFC 7235 credentials list used by Authorization/WWW-Authenticate)
// built on top of it. The scanning style is hand-rolled rather than
// regex-driven, in the manner of the teacher's own lexers — header
// grammars are simple enough that a byte-at-a-time scan stays readable
// and avoids a compiled-regexp allocation per request.
package header

import "fmt"

// Descriptor is the parsed form of one comma-separated member of a
// header field: a main value plus an optional name→value parameter map
// (spec.md §3). Parameter names are stored lowercase; values that were
// quoted on the wire arrive already unescaped.
type Descriptor struct {
	Value  string
	Params map[string]string
}

// Param looks up a parameter by name; ok is false when absent. The
// lookup is exact: Params keys are lowercased at parse time, so callers
// pass an already-lowercase name.
func (d Descriptor) Param(name string) (string, bool) {
	if d.Params == nil {
		return "", false
	}
	v, ok := d.Params[name]
	return v, ok
}

type outerKind int

const (
	outQuoted outerKind = iota
	outWS
	outToken
)

type outerToken struct {
	kind outerKind
	text string // unescaped content for outQuoted; raw bytes otherwise
}

func isControl(c byte) bool {
	return c < 0x20 && c != '\t'
}

// lexOuter splits a header field value into quoted-string, whitespace,
// and token substrings (spec.md §4.3's "outer tokeniser"). Control
// bytes other than HTAB, and DEL, are rejected; bytes 0x80–0xFF are
// permitted inside tokens.
func lexOuter(s string) ([]outerToken, error) {
	var out []outerToken
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"':
			text, next, err := scanQuoted(s, i)
			if err != nil {
				return nil, err
			}
			out = append(out, outerToken{kind: outQuoted, text: text})
			i = next
		case c == ' ' || c == '\t':
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}
			out = append(out, outerToken{kind: outWS})
			i = j
		default:
			if isControl(c) || c == 0x7f {
				return nil, fmt.Errorf("header: illegal control byte 0x%02x", c)
			}
			j := i
			for j < len(s) {
				cj := s[j]
				if cj == '"' || cj == ' ' || cj == '\t' {
					break
				}
				if isControl(cj) || cj == 0x7f {
					return nil, fmt.Errorf("header: illegal control byte 0x%02x", cj)
				}
				j++
			}
			out = append(out, outerToken{kind: outToken, text: s[i:j]})
			i = j
		}
	}
	return out, nil
}

// scanQuoted reads a quoted-string starting at s[start] == '"',
// returning its unescaped content and the index just past the closing
// quote. A backslash escapes exactly the following byte.
func scanQuoted(s string, start int) (string, int, error) {
	var b []byte
	j := start + 1
	for j < len(s) {
		c := s[j]
		switch {
		case c == '\\':
			if j+1 >= len(s) {
				return "", 0, fmt.Errorf("header: unterminated escape in quoted-string")
			}
			b = append(b, s[j+1])
			j += 2
		case c == '"':
			return string(b), j + 1, nil
		case isControl(c) && c != '\t':
			return "", 0, fmt.Errorf("header: illegal control byte 0x%02x in quoted-string", c)
		default:
			b = append(b, c)
			j++
		}
	}
	return "", 0, fmt.Errorf("header: unterminated quoted-string")
}

type lexemeKind int

const (
	lexToken lexemeKind = iota
	lexQuoted
	lexDelim
)

type lexeme struct {
	kind  lexemeKind
	text  string // for lexToken / lexQuoted
	delim byte   // for lexDelim
}

// fineLex further splits outToken runs on the single-byte delimiters
// relevant to a grammar (spec.md §4.3's "fine tokeniser"); whitespace is
// discarded (OWS carries no meaning once the outer shape is known) and
// quoted strings pass through as a single lexeme.
func fineLex(outer []outerToken, delims string) []lexeme {
	var out []lexeme
	for _, t := range outer {
		switch t.kind {
		case outWS:
			continue
		case outQuoted:
			out = append(out, lexeme{kind: lexQuoted, text: t.text})
		case outToken:
			start := 0
			for i := 0; i < len(t.text); i++ {
				c := t.text[i]
				if indexByte(delims, c) {
					if i > start {
						out = append(out, lexeme{kind: lexToken, text: t.text[start:i]})
					}
					out = append(out, lexeme{kind: lexDelim, delim: c})
					start = i + 1
				}
			}
			if start < len(t.text) {
				out = append(out, lexeme{kind: lexToken, text: t.text[start:]})
			}
		}
	}
	return out
}

func indexByte(set string, c byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == c {
			return true
		}
	}
	return false
}
