// Package endpoint resolves API endpoint URLs against a configured host.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

// Relative endpoint paths.
const (
	PathMatch         = "find/v1.1"
	PathMatchHeadered = "find/v1"
	PathMatchVector   = "find/v1/fingerprint/semantic"
	PathRegions       = "find/v2/regions"
	PathText          = "find/v1/text"
	PathNotFound      = "find/v1/manual"
	PathRecommend     = "recommend/v1"
	PathFeedback      = "feedback/v1"
)

// Builder produces absolute URLs for one host.
type Builder struct {
	base *url.URL
}

// New parses host. It must be an absolute http(s) URL.
func New(host string) (*Builder, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse host %q: %w", host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("host %q: scheme must be http or https", host)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("host %q: missing host name", host)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return &Builder{base: u}, nil
}

// Host returns the normalized base URL.
func (b *Builder) Host() string { return b.base.String() }

func (b *Builder) join(elem ...string) string {
	return b.base.JoinPath(elem...).String()
}

// Match is the image match endpoint returning offers in the body.
func (b *Builder) Match() string { return b.join(PathMatch) }

// MatchHeadered is the image match endpoint whose response carries the
// request id in the X-Matching-Request header.
func (b *Builder) MatchHeadered() string { return b.join(PathMatchHeadered) }

// MatchVector is the feature vector match endpoint.
func (b *Builder) MatchVector() string { return b.join(PathMatchVector) }

// Regions is the object proposal endpoint.
func (b *Builder) Regions() string { return b.join(PathRegions) }

// Text is the keyword search endpoint.
func (b *Builder) Text() string { return b.join(PathText) }

// NotFound marks the result of requestID as not found.
func (b *Builder) NotFound(requestID string) string {
	return b.join(PathNotFound, url.PathEscape(requestID))
}

// Recommend returns offers similar to sku.
func (b *Builder) Recommend(sku string) string {
	return b.join(PathRecommend, url.PathEscape(sku))
}

// CheckSegment rejects values that cannot stand as a single path segment.
// Dot segments are resolved when the URL is joined, so they would address
// a parent resource.
func CheckSegment(name, v string) error {
	switch v {
	case "":
		return fmt.Errorf("%s is empty", name)
	case ".", "..":
		return fmt.Errorf("%s %q is not a valid path segment", name, v)
	}
	return nil
}

// Feedback is the analytics event endpoint.
func (b *Builder) Feedback() string { return b.join(PathFeedback) }
