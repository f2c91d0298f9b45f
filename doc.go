/*
Package alier provides an embeddable HTTP application framework: a
path-pattern trie router, an HTTP header grammar parser, pluggable
request authentication, and a small endpoint model for building JSON
APIs and static resource handlers without pulling in a full web
framework.

# Routing

The core lookup structure is a trie over path patterns
(package pattern): literal segments, named parameters (":id"), and a
single trailing wildcard ("*"). Package router composes the trie with
request parsing, auth verification, and method dispatch into a single
http.Handler.

# Endpoints

Package entity defines WebEntity, the addressable unit the router
dispatches to. WebApi exposes a handler per HTTP method; WebResource
serves file or in-memory content with Accept-header negotiation against
a ContentTypeRegistry.

# Authentication

Package auth defines the Protocol interface implemented by Digest and
Basic. A WebEntity may bind zero or more protocols by scheme; the
router assembles the WWW-Authenticate challenge from whichever
protocol rejected the request.

# Errors

Package apierror is the single place that maps an internal failure to
an HTTP status and response body.

# Running

cmd/alier is a small example binary wiring router, entity, auth, and
the internal/alog access logger together; package config resolves its
flags and an optional YAML manifest.
*/
package alier
