package nyris

import (
	"context"
	"net/http"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/transport/endpoint"
	"github.com/nyris/nyris-go/internal/transport/request"
)

// Similarity looks up offers similar to a known SKU.
type Similarity struct {
	client       *Client
	outputFormat string
	language     string
}

func newSimilarity(c *Client) *Similarity {
	return &Similarity{client: c}
}

// OutputFormat overrides the Accept mime type.
func (b *Similarity) OutputFormat(mime string) *Similarity {
	b.outputFormat = mime
	return b
}

// Language overrides Accept-Language.
func (b *Similarity) Language(tag string) *Similarity {
	b.language = tag
	return b
}

// BySKU returns the offers similar to sku.
func (b *Similarity) BySKU(ctx context.Context, sku string) (OfferResponse, error) {
	return call(ctx, b.client, "similar_by_sku", b.build(sku), decodeOffers)
}

// BySKURaw returns the similar offers body unparsed.
func (b *Similarity) BySKURaw(ctx context.Context, sku string) (RawJSONResponse, error) {
	return call(ctx, b.client, "similar_by_sku_raw", b.build(sku), decodeRaw)
}

func (b *Similarity) build(sku string) func() (request.Spec, error) {
	return func() (request.Spec, error) {
		if err := endpoint.CheckSegment("sku", sku); err != nil {
			return request.Spec{}, domain.InvalidConfiguration(err.Error())
		}
		return request.Spec{
			Method:   http.MethodGet,
			URL:      b.client.endpoints.Recommend(sku),
			Accept:   b.client.accept(b.outputFormat) + "; charset=UTF-8",
			Language: b.client.acceptLanguage(b.language),
		}, nil
	}
}
