// Package auth implements the AuthProtocol capability of spec.md §4.6:
// a named HTTP authentication scheme that verifies a request's
// Authorization header and can render its own WWW-Authenticate
// challenge. The core ships one concrete implementation, Digest, plus
// Basic as a supplemental scheme built on the pack's go-http-auth
// primitives (see DESIGN.md for why Digest is hand-rolled instead).
package auth

import (
	"context"
	"net/http"

	"github.com/suredesigns/alier-node/header"
)

// VerifyResult is an AuthProtocol's structured verdict (spec.md §3).
// When Ok is false and Scheme is empty, the caller is declaring "no
// scheme matched" and the router must emit the union of every
// registered protocol's challenge.
type VerifyResult struct {
	Ok     bool
	Scheme string
	Status int // zero means "let the router pick the default (401)"
	Reason map[string]string
}

// Protocol is the capability a WebEntity registers per scheme name.
type Protocol interface {
	// Scheme is the lowercased auth-scheme this protocol answers to
	// (e.g. "digest", "basic"), matched against the Authorization
	// header's scheme token.
	Scheme() string

	// Verify inspects the Authorization header already parsed into
	// authDesc (nil if the header was absent or unparseable) and
	// reports whether the request is authenticated.
	Verify(ctx context.Context, r *http.Request, authDesc *header.Descriptor) (VerifyResult, error)

	// GetChallenge renders this protocol's WWW-Authenticate challenge
	// value (without the leading scheme name being implied twice —
	// the full "Scheme param=..." string).
	GetChallenge(ctx context.Context) (string, error)
}
