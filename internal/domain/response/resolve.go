package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nyris/nyris-go/internal/domain"
)

// RequestIDHeader carries the matching request id on the headered endpoint.
const RequestIDHeader = "X-Matching-Request"

// RawJSON is the unparsed response body.
type RawJSON struct {
	Body string
}

// Headered pairs the transport headers with the decoded body.
type Headered struct {
	Header http.Header
	Body   OfferResponse
}

// RequestID returns the id from X-Matching-Request.
func (h *Headered) RequestID() string { return h.Header.Get(RequestIDHeader) }

// DecodeOffers decodes an offer response. Absent containers become empty.
func DecodeOffers(body []byte) (OfferResponse, error) {
	var r OfferResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return OfferResponse{}, fmt.Errorf("%w: decode offers: %w", domain.ErrMalformedResponse, err)
	}
	r.normalize()
	return r, nil
}

// Raw wraps body unchanged. It never fails.
func Raw(body []byte) RawJSON {
	return RawJSON{Body: string(body)}
}

// DecodeHeadered decodes the body and takes the request id from the header
// when the body carries none.
func DecodeHeadered(header http.Header, body []byte) (Headered, error) {
	r, err := DecodeOffers(body)
	if err != nil {
		return Headered{}, err
	}
	if header == nil {
		header = http.Header{}
	}
	if r.RequestID == "" {
		r.RequestID = header.Get(RequestIDHeader)
	}
	return Headered{Header: header, Body: r}, nil
}
