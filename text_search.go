package nyris

import (
	"context"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/domain/matching/option"
	"github.com/nyris/nyris-go/internal/domain/matching/xoptions"
	"github.com/nyris/nyris-go/internal/transport/request"
)

// TextSearch runs keyword searches against the offer catalog. Only regroup
// and the result limit apply to text searches.
type TextSearch struct {
	client       *Client
	opts         MatchOptions
	outputFormat string
	language     string
}

func newTextSearch(c *Client) *TextSearch {
	return &TextSearch{client: c, opts: option.Defaults()}
}

// Regroup configures result regrouping.
func (b *TextSearch) Regroup(configure func(*RegroupOption)) *TextSearch {
	configure(&b.opts.Regroup)
	return b
}

// Limit sets the maximum number of offers, 1 to 100.
func (b *TextSearch) Limit(n int) *TextSearch {
	b.opts.Limit = n
	return b
}

// OutputFormat overrides the Accept mime type.
func (b *TextSearch) OutputFormat(mime string) *TextSearch {
	b.outputFormat = mime
	return b
}

// Language overrides Accept-Language.
func (b *TextSearch) Language(tag string) *TextSearch {
	b.language = tag
	return b
}

// Search sends the keywords and decodes the offers.
func (b *TextSearch) Search(ctx context.Context, keywords string) (OfferResponse, error) {
	return call(ctx, b.client, "text_search", b.build(keywords), decodeOffers)
}

// SearchRaw sends the keywords and returns the body unparsed.
func (b *TextSearch) SearchRaw(ctx context.Context, keywords string) (RawJSONResponse, error) {
	return call(ctx, b.client, "text_search_raw", b.build(keywords), decodeRaw)
}

func (b *TextSearch) build(keywords string) func() (request.Spec, error) {
	return func() (request.Spec, error) {
		if keywords == "" {
			return request.Spec{}, domain.InvalidConfiguration("keywords are empty")
		}
		header, err := xoptions.CompileText(b.opts)
		if err != nil {
			return request.Spec{}, err
		}

		spec := post(b.client.endpoints.Text(), request.Text(keywords))
		spec.Accept = b.client.accept(b.outputFormat)
		spec.Language = b.client.acceptLanguage(b.language)
		spec.Options = header

		b.opts.Reset()
		return spec, nil
	}
}
