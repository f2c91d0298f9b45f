package header

import (
	"fmt"
	"strings"
)

// ParseCredentials parses the RFC 7235 `#credentials` grammar used by
// Authorization (a single `credentials`) and WWW-Authenticate (a list):
//
//	credentials = auth-scheme [ 1*SP ( token68 / #auth-param ) ]
//	token68     = 1*( ALPHA / DIGIT / "-" / "." / "_" / "~" / "+" / "/" ) *"="
//
// The emitted Descriptor's Value is the lowercased scheme, additionally
// mirrored under Params["scheme"] so downstream code can look credentials
// up by scheme without re-reading Value. A bare token68 is stored under
// Params["token68"]; auth-params are stored under their lowercased name.
//
// RFC 7235's grammar is locally ambiguous: both the credentials list and
// the auth-param list use "," as a separator, so after a comma it is not
// structurally obvious whether a bare `name=value` continues the current
// scheme's auth-param list or starts a new scheme. This parser resolves
// it the way real-world implementations do: a token immediately followed
// by "=" continues the current scheme's parameters; a token with nothing
// (or only more "=" signs, or a following comma) after it starts a new
// scheme, because a bare identifier can never be a valid auth-param
// without a value.
func ParseCredentials(raw string) ([]Descriptor, error) {
	outer, err := lexOuter(raw)
	if err != nil {
		return nil, err
	}
	p := &credParser{lexemes: fineLex(outer, ",=")}
	return p.parseList()
}

type credParser struct {
	lexemes []lexeme
	pos     int
}

func (p *credParser) atEnd() bool { return p.pos >= len(p.lexemes) }

func (p *credParser) peek(offset int) (lexeme, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.lexemes) {
		return lexeme{}, false
	}
	return p.lexemes[i], true
}

func (p *credParser) isComma(offset int) bool {
	lx, ok := p.peek(offset)
	return ok && lx.kind == lexDelim && lx.delim == ','
}

func (p *credParser) parseList() ([]Descriptor, error) {
	var result []Descriptor

	for {
		for p.isComma(0) {
			p.pos++ // skip empty list elements permitted by "#"
		}
		if p.atEnd() {
			break
		}

		desc, err := p.parseScheme()
		if err != nil {
			return nil, err
		}
		result = append(result, desc)

		if p.atEnd() {
			break
		}
		if !p.isComma(0) {
			return nil, fmt.Errorf("header: expected ',' between credentials, got %s", describe(p.lexemes[p.pos]))
		}
	}

	return result, nil
}

// parseScheme consumes one `auth-scheme [ 1*SP ( token68 / #auth-param ) ]`
// starting at p.pos, leaving p.pos at the next top-level "," or the end.
func (p *credParser) parseScheme() (Descriptor, error) {
	nameTok, ok := p.peek(0)
	if !ok || nameTok.kind != lexToken {
		return Descriptor{}, fmt.Errorf("header: expected auth-scheme token")
	}
	scheme := lowerASCII(nameTok.text)
	p.pos++

	desc := Descriptor{Value: scheme, Params: map[string]string{"scheme": scheme}}

	if p.atEnd() || p.isComma(0) {
		return desc, nil // bare scheme, no token68 or params
	}

	if err := p.parseFirstComponent(&desc); err != nil {
		return Descriptor{}, err
	}

	// If the first component was an auth-param, keep consuming
	// comma-separated auth-params of the same scheme. A token68 never
	// has trailing params, so this loop only runs when the scheme chose
	// the auth-param branch.
	for desc.Params["token68"] == "" && p.isComma(0) {
		if !p.nextIsContinuingParam() {
			break
		}
		p.pos++ // consume ','
		if err := p.parseAuthParam(&desc); err != nil {
			return Descriptor{}, err
		}
	}

	return desc, nil
}

// nextIsContinuingParam reports whether the token right after the next
// "," is itself immediately followed by "=" — the signal that it
// continues the current scheme's auth-param list rather than starting a
// new scheme.
func (p *credParser) nextIsContinuingParam() bool {
	nameTok, ok := p.peek(1)
	if !ok || nameTok.kind != lexToken {
		return false
	}
	eq, ok := p.peek(2)
	return ok && eq.kind == lexDelim && eq.delim == '='
}

func (p *credParser) parseAuthParam(desc *Descriptor) error {
	nameTok, ok := p.peek(0)
	if !ok || nameTok.kind != lexToken {
		return fmt.Errorf("header: expected auth-param name")
	}
	eq, ok := p.peek(1)
	if !ok || eq.kind != lexDelim || eq.delim != '=' {
		return fmt.Errorf("header: expected '=' after auth-param name %q", nameTok.text)
	}
	valueTok, ok := p.peek(2)
	if !ok || (valueTok.kind != lexToken && valueTok.kind != lexQuoted) {
		return fmt.Errorf("header: expected a value for auth-param %q", nameTok.text)
	}
	desc.Params[lowerASCII(nameTok.text)] = valueTok.text
	p.pos += 3
	return nil
}

// parseFirstComponent decides whether the content right after the scheme
// is a token68 or the first auth-param, per the ambiguity resolution
// documented on ParseCredentials.
func (p *credParser) parseFirstComponent(desc *Descriptor) error {
	nameTok, ok := p.peek(0)
	if !ok {
		return fmt.Errorf("header: expected token68 or auth-param after scheme %q", desc.Value)
	}
	if nameTok.kind != lexToken {
		return fmt.Errorf("header: expected token68 or auth-param name, got %s", describe(nameTok))
	}

	eq, hasEq := p.peek(1)
	if !hasEq || eq.kind != lexDelim || eq.delim != '=' {
		// No '=' at all: only legal if nothing (or a ',') follows -> bare token68.
		if p.atEnd1() {
			desc.Params["token68"] = nameTok.text
			p.pos++
			return nil
		}
		return fmt.Errorf("header: malformed credentials after scheme %q", desc.Value)
	}

	valueTok, hasValue := p.peek(2)
	if hasValue && (valueTok.kind == lexToken || valueTok.kind == lexQuoted) {
		// name=value: first auth-param.
		desc.Params[lowerASCII(nameTok.text)] = valueTok.text
		p.pos += 3
		return nil
	}

	// name= followed by more '=' (or nothing): token68 with padding.
	pad := 1
	j := 2
	for {
		lx, ok := p.peek(j)
		if !ok || lx.kind != lexDelim || lx.delim != '=' {
			break
		}
		pad++
		j++
	}
	if end, ok := p.peek(j); ok && end.kind != lexDelim {
		return fmt.Errorf("header: malformed token68 after scheme %q", desc.Value)
	}
	desc.Params["token68"] = nameTok.text + strings.Repeat("=", pad)
	p.pos += j // consume name + all '=' delimiters
	return nil
}

// atEnd1 reports whether position 1 (right after the current token) is
// the end of input or a top-level comma.
func (p *credParser) atEnd1() bool {
	lx, ok := p.peek(1)
	return !ok || (lx.kind == lexDelim && lx.delim == ',')
}
