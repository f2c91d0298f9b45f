// Package entity implements the WebEntity hierarchy of spec.md §4.5:
// an addressable endpoint carrying a path Pattern and an ordered set of
// AuthProtocol bindings. WebApi dispatches by HTTP method through a
// handler table (the REDESIGN FLAG in spec.md §9 in place of
// per-instance method overriding); WebResource serves static content
// with Accept negotiation.
package entity

import (
	"context"
	"net/http"
	"strings"

	"github.com/suredesigns/alier-node/auth"
	"github.com/suredesigns/alier-node/header"
	"github.com/suredesigns/alier-node/pattern"
)

// AuthBinding pairs a scheme name with the protocol that answers to it,
// preserving registration order (spec.md §3's "order = registration
// order").
type AuthBinding struct {
	Scheme   string
	Protocol auth.Protocol
}

// WebEntity is any addressable endpoint the router can dispatch to.
type WebEntity interface {
	Pattern() *pattern.Pattern
	SupportsMethod(method string) bool
	Verify(ctx context.Context, r *http.Request, authHeaders []header.Descriptor) (auth.VerifyResult, error)
	GetChallenges(ctx context.Context) (string, error)
}

// Base implements the auth-verification behaviour shared by WebApi and
// WebResource: "verify returns ok when no protocols are registered;
// otherwise read the first authorization descriptor, choose the
// protocol whose scheme matches, and delegate" (spec.md §4.5).
type Base struct {
	PatternValue *pattern.Pattern
	Auths        []AuthBinding
}

func (b *Base) Pattern() *pattern.Pattern { return b.PatternValue }

// Verify implements the WebEntity capability shared by every variant.
func (b *Base) Verify(ctx context.Context, r *http.Request, authHeaders []header.Descriptor) (auth.VerifyResult, error) {
	if len(b.Auths) == 0 {
		return auth.VerifyResult{Ok: true}, nil
	}

	var desc *header.Descriptor
	if len(authHeaders) > 0 {
		desc = &authHeaders[0]
	}

	if desc != nil {
		for _, binding := range b.Auths {
			if strings.EqualFold(binding.Scheme, desc.Value) {
				return binding.Protocol.Verify(ctx, r, desc)
			}
		}
	}

	// No header, or a scheme none of the registered protocols answer
	// to: "no scheme matched", the router emits the union challenge.
	return auth.VerifyResult{Ok: false}, nil
}

// GetChallenges awaits every registered protocol's challenge and joins
// the non-empty ones with ", ", per spec.md §4.5.
func (b *Base) GetChallenges(ctx context.Context) (string, error) {
	var parts []string
	for _, binding := range b.Auths {
		c, err := binding.Protocol.GetChallenge(ctx)
		if err != nil {
			continue
		}
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", "), nil
}

// ChallengeForScheme returns the challenge of the single protocol
// registered under scheme, used by the router to build a
// scheme-specific WWW-Authenticate value (spec.md §4.7 step 5) when a
// VerifyResult names which protocol rejected the request.
func (b *Base) ChallengeForScheme(ctx context.Context, scheme string) (string, bool, error) {
	for _, binding := range b.Auths {
		if strings.EqualFold(binding.Scheme, scheme) {
			c, err := binding.Protocol.GetChallenge(ctx)
			return c, true, err
		}
	}
	return "", false, nil
}
