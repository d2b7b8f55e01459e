// Package request assembles outgoing requests: identity headers, content
// negotiation, the compiled X-Options value and the encoded body.
package request

import (
	"net/http"
	"strconv"

	"github.com/nyris/nyris-go/internal/domain/matching/xoptions"
	"github.com/nyris/nyris-go/internal/transport/header"
	"github.com/nyris/nyris-go/internal/transport/httpx"
)

// Spec describes one request.
type Spec struct {
	Method   string
	URL      string
	Accept   string
	Language string
	Options  string // compiled X-Options, omitted when empty
	Body     Body
}

// Builder turns specs into transport requests.
type Builder struct {
	identity *header.Identity
}

// NewBuilder creates a builder signing requests with identity.
func NewBuilder(identity *header.Identity) *Builder {
	return &Builder{identity: identity}
}

// Build assembles the request. The api key is read at build time, so a key
// swapped concurrently applies to the next request built.
func (b *Builder) Build(s Spec) *httpx.Request {
	h := make(http.Header)
	b.identity.Apply(h)
	if s.Accept != "" {
		h.Set("Accept", s.Accept)
	}
	if s.Language != "" {
		h.Set("Accept-Language", s.Language)
	}
	if s.Body.ContentType != "" {
		h.Set("Content-Type", s.Body.ContentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(s.Body.Data)))
	if s.Options != "" {
		h.Set(xoptions.HeaderName, s.Options)
	}
	return &httpx.Request{
		Method: s.Method,
		URL:    s.URL,
		Header: h,
		Body:   s.Body.Data,
	}
}
