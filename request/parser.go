package request

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/suredesigns/alier-node/apierror"
	"github.com/suredesigns/alier-node/header"
	"github.com/suredesigns/alier-node/internal/safejson"
)

// DefaultMaxBodySize bounds a request body when the embedder does not
// configure one explicitly (spec.md §5's backpressure requirement).
const DefaultMaxBodySize = 10 << 20 // 10 MiB

// Parser decodes *http.Request values into Descriptors.
type Parser struct {
	// MaxBodySize caps the number of body bytes read before the parser
	// gives up with a 413. Zero means DefaultMaxBodySize.
	MaxBodySize int64
}

// NewParser builds a Parser with the given body size limit; a
// non-positive limit falls back to DefaultMaxBodySize.
func NewParser(maxBodySize int64) *Parser {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &Parser{MaxBodySize: maxBodySize}
}

// Parse consumes r fully (headers and body) and returns its Descriptor.
// Any malformed input is reported as an *apierror.Error with the status
// spec.md §7 assigns to the failure (400 for malformed headers/body,
// 413 for an oversized body).
func (p *Parser) Parse(r *http.Request) (*Descriptor, error) {
	maxBody := p.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	d := &Descriptor{
		Method:  strings.ToUpper(r.Method),
		Path:    r.URL.Path,
		RawPath: r.URL.Path,
	}

	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return nil, apierror.BadRequest("malformed query string: " + err.Error())
	}
	d.Query = make(map[string]string, len(query))
	for k, vs := range query {
		if len(vs) > 0 {
			d.Query[k] = vs[0]
		}
	}

	headers, err := parseHeaders(r.Header)
	if err != nil {
		return nil, apierror.BadRequest(err.Error())
	}
	d.Headers = headers

	body, err := p.readBody(r, headers, maxBody)
	if err != nil {
		return nil, err
	}
	d.Body = body

	return d, nil
}

// parseHeaders runs every header field through the grammar parser,
// joining repeated header lines with ", " first per RFC 7230 §3.2.2
// before splitting them back out into a Descriptor list (spec.md §4.4
// step 2).
func parseHeaders(h http.Header) (map[string][]header.Descriptor, error) {
	out := make(map[string][]header.Descriptor, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		joined := strings.Join(values, ", ")
		descs, err := header.Parse(lower, joined)
		if err != nil {
			return nil, err
		}
		out[lower] = descs
	}
	return out, nil
}

// readBody buffers the body (enforcing Content-Length and MaxBodySize)
// and decodes it per the first Content-Type descriptor.
func (p *Parser) readBody(r *http.Request, headers map[string][]header.Descriptor, maxBody int64) (any, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	limited := io.LimitReader(r.Body, maxBody+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, apierror.BadRequest("failed to read request body: " + err.Error())
	}
	if int64(len(data)) > maxBody {
		return nil, apierror.New(413, "request body exceeds the configured maximum size")
	}
	if r.ContentLength >= 0 && int64(len(data)) != r.ContentLength {
		return nil, apierror.BadRequest("content-length mismatch")
	}
	if len(data) == 0 {
		return nil, nil
	}

	ctDescs := headers["content-type"]
	if len(ctDescs) == 0 {
		return data, nil
	}
	ct := ctDescs[0]

	switch {
	case ct.Value == "multipart/form-data":
		boundary := ct.Params["boundary"]
		return decodeMultipart(data, boundary)
	case ct.Value == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, apierror.BadRequest("malformed urlencoded body: " + err.Error())
		}
		m := make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				m[k] = vs[0]
			}
		}
		return m, nil
	case ct.Value == "application/json":
		v, err := safejson.Unmarshal(data)
		if err != nil {
			return nil, apierror.BadRequest("malformed JSON body: " + err.Error())
		}
		return v, nil
	case strings.HasPrefix(ct.Value, "text/"):
		return decodeText(data, ct.Params["charset"])
	default:
		return data, nil
	}
}

// decodeText decodes data using the declared charset (falling back to
// UTF-8 on failure), both in "fatal" mode: an undecodable byte sequence
// is an error, not a best-effort substitution, per spec.md §4.4.
func decodeText(data []byte, charset string) (string, error) {
	if charset == "" {
		charset = "utf-8"
	}
	if s, err := decodeCharset(data, charset); err == nil {
		return s, nil
	}
	if strings.EqualFold(charset, "utf-8") {
		return "", apierror.BadRequest("invalid utf-8 in text body")
	}
	s, err := decodeCharset(data, "utf-8")
	if err != nil {
		return "", apierror.BadRequest("could not decode text body with charset " + charset + " or utf-8 fallback")
	}
	return s, nil
}

func decodeCharset(data []byte, charset string) (string, error) {
	if !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
		// Any other declared charset is treated as an immediate miss so
		// the UTF-8 fallback path in decodeText runs; the core ships no
		// legacy-encoding table.
		return "", mime.ErrInvalidMediaParameter
	}
	if !utf8.Valid(data) {
		return "", mime.ErrInvalidMediaParameter
	}
	return string(data), nil
}
