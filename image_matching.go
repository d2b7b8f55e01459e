package nyris

import (
	"context"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/domain/matching/filter"
	"github.com/nyris/nyris-go/internal/domain/matching/option"
	"github.com/nyris/nyris-go/internal/domain/matching/xoptions"
	"github.com/nyris/nyris-go/internal/domain/response"
	"github.com/nyris/nyris-go/internal/transport/httpx"
	"github.com/nyris/nyris-go/internal/transport/request"
)

// ImageMatching configures and runs one image or vector match.
//
//	offers, err := client.ImageMatching().
//	    Similarity(func(o *nyris.SimilarityOption) {
//	        o.Enabled = true
//	        o.Limit = 5
//	    }).
//	    Limit(10).
//	    Match(ctx, jpeg)
//
// Options and filters return to their defaults after every request sent,
// so a reused builder starts over. OutputFormat and Language stick.
type ImageMatching struct {
	client       *Client
	opts         MatchOptions
	filters      filter.List
	outputFormat string
	language     string
}

func newImageMatching(c *Client) *ImageMatching {
	return &ImageMatching{client: c, opts: option.Defaults()}
}

// Exact configures the exact matching stage.
func (b *ImageMatching) Exact(configure func(*ExactOption)) *ImageMatching {
	configure(&b.opts.Exact)
	return b
}

// Similarity configures the similarity stage.
func (b *ImageMatching) Similarity(configure func(*SimilarityOption)) *ImageMatching {
	configure(&b.opts.Similarity)
	return b
}

// OCR configures the text recognition stage.
func (b *ImageMatching) OCR(configure func(*OCROption)) *ImageMatching {
	configure(&b.opts.OCR)
	return b
}

// Regroup configures result regrouping.
func (b *ImageMatching) Regroup(configure func(*RegroupOption)) *ImageMatching {
	configure(&b.opts.Regroup)
	return b
}

// Recommendation configures recommendation mode.
func (b *ImageMatching) Recommendation(configure func(*RecommendationOption)) *ImageMatching {
	configure(&b.opts.Recommendation)
	return b
}

// CategoryPrediction configures category prediction.
func (b *ImageMatching) CategoryPrediction(configure func(*CategoryPredictionOption)) *ImageMatching {
	configure(&b.opts.CategoryPrediction)
	return b
}

// Options edits the whole option set at once.
func (b *ImageMatching) Options(configure func(*MatchOptions)) *ImageMatching {
	configure(&b.opts)
	return b
}

// Limit sets the maximum number of offers, 1 to 100.
func (b *ImageMatching) Limit(n int) *ImageMatching {
	b.opts.Limit = n
	return b
}

// Filter appends a filter. Filters are sent by MatchFiltered only.
func (b *ImageMatching) Filter(filterType string, values ...string) *ImageMatching {
	b.filters.Add(filterType, values...)
	return b
}

// OutputFormat overrides the Accept mime type.
func (b *ImageMatching) OutputFormat(mime string) *ImageMatching {
	b.outputFormat = mime
	return b
}

// Language overrides Accept-Language.
func (b *ImageMatching) Language(tag string) *ImageMatching {
	b.language = tag
	return b
}

// Match sends image bytes and decodes the offers.
func (b *ImageMatching) Match(ctx context.Context, image []byte) (OfferResponse, error) {
	return call(ctx, b.client, "match",
		b.image(b.client.endpoints.Match(), image),
		decodeOffers)
}

// MatchRaw sends image bytes and returns the body unparsed.
func (b *ImageMatching) MatchRaw(ctx context.Context, image []byte) (RawJSONResponse, error) {
	return call(ctx, b.client, "match_raw",
		b.image(b.client.endpoints.Match(), image),
		decodeRaw)
}

// MatchWithHeaders sends image bytes and returns the offers together with
// the response headers. The request id comes from X-Matching-Request.
func (b *ImageMatching) MatchWithHeaders(ctx context.Context, image []byte) (HeaderedResponse, error) {
	return call(ctx, b.client, "match_headered",
		b.image(b.client.endpoints.MatchHeadered(), image),
		decodeHeadered)
}

// MatchVector sends a feature vector and decodes the offers.
func (b *ImageMatching) MatchVector(ctx context.Context, vector []float32) (OfferResponse, error) {
	return call(ctx, b.client, "match_vector", b.vector(vector), decodeOffers)
}

// MatchVectorRaw sends a feature vector and returns the body unparsed.
func (b *ImageMatching) MatchVectorRaw(ctx context.Context, vector []float32) (RawJSONResponse, error) {
	return call(ctx, b.client, "match_vector_raw", b.vector(vector), decodeRaw)
}

// MatchVectorWithHeaders sends a feature vector and returns the offers
// together with the response headers.
func (b *ImageMatching) MatchVectorWithHeaders(ctx context.Context, vector []float32) (HeaderedResponse, error) {
	return call(ctx, b.client, "match_vector_headered", b.vector(vector), decodeHeadered)
}

// MatchFiltered sends the image as multipart form data with the configured
// filters and decodes the offers.
func (b *ImageMatching) MatchFiltered(ctx context.Context, image []byte) (OfferResponse, error) {
	return call(ctx, b.client, "match_filtered", b.multipart(image), decodeOffers)
}

// MatchFilteredRaw is MatchFiltered returning the body unparsed.
func (b *ImageMatching) MatchFilteredRaw(ctx context.Context, image []byte) (RawJSONResponse, error) {
	return call(ctx, b.client, "match_filtered_raw", b.multipart(image), decodeRaw)
}

func (b *ImageMatching) image(url string, image []byte) func() (request.Spec, error) {
	return b.build(url, xoptions.Image, false, func() (request.Body, error) {
		if len(image) == 0 {
			return request.Body{}, domain.InvalidConfiguration("image is empty")
		}
		return request.Image(image), nil
	})
}

func (b *ImageMatching) vector(v []float32) func() (request.Spec, error) {
	return b.build(b.client.endpoints.MatchVector(), xoptions.Vector, false, func() (request.Body, error) {
		if len(v) == 0 {
			return request.Body{}, domain.InvalidConfiguration("vector is empty")
		}
		return request.Vector(v)
	})
}

func (b *ImageMatching) multipart(image []byte) func() (request.Spec, error) {
	return b.build(b.client.endpoints.Match(), xoptions.Image, true, func() (request.Body, error) {
		if len(image) == 0 {
			return request.Body{}, domain.InvalidConfiguration("image is empty")
		}
		if err := b.filters.Validate(); err != nil {
			return request.Body{}, err
		}
		return request.Multipart(image, b.filters)
	})
}

// build validates and compiles the options, encodes the body and resets the
// builder. Nothing is reset when any step fails.
func (b *ImageMatching) build(
	url string, profile xoptions.Profile, filtered bool,
	body func() (request.Body, error),
) func() (request.Spec, error) {
	return func() (request.Spec, error) {
		if !filtered && b.filters.Len() > 0 {
			return request.Spec{}, domain.InvalidConfiguration("filters are only sent by MatchFiltered")
		}
		header, err := profile.Compile(b.opts)
		if err != nil {
			return request.Spec{}, err
		}
		payload, err := body()
		if err != nil {
			return request.Spec{}, err
		}

		spec := post(url, payload)
		spec.Accept = b.client.accept(b.outputFormat)
		spec.Language = b.client.acceptLanguage(b.language)
		spec.Options = header

		b.opts.Reset()
		b.filters.Reset()
		return spec, nil
	}
}

func decodeOffers(resp *httpx.Response) (OfferResponse, error) {
	return response.DecodeOffers(resp.Body)
}

func decodeRaw(resp *httpx.Response) (RawJSONResponse, error) {
	return response.Raw(resp.Body), nil
}

func decodeHeadered(resp *httpx.Response) (HeaderedResponse, error) {
	return response.DecodeHeadered(resp.Header, resp.Body)
}
