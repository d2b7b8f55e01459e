// Package nyris provides a Go client for the nyris visual search API.
//
// A Client is created once per api key and hands out a fresh builder per
// call. Builders configure the matching pipeline, which is compiled into the
// X-Options request header:
//
//	client, _ := nyris.New(apiKey)
//	defer client.Close()
//
//	offers, err := client.ImageMatching().
//	    Exact(func(o *nyris.ExactOption) { o.Enabled = true }).
//	    Similarity(func(o *nyris.SimilarityOption) {
//	        o.Enabled = true
//	        o.Threshold = 0.8
//	    }).
//	    Limit(10).
//	    Match(ctx, jpeg)
//
// Every option starts disabled. A call with nothing configured sends no
// X-Options header and the API runs its default pipeline.
//
// # Result shapes
//
// Each endpoint has one operation per result shape: Match decodes offers,
// MatchRaw returns the body as is, MatchWithHeaders also returns the
// response headers.
//
// # Errors
//
// Invalid option combinations fail with ErrInvalidConfiguration before any
// request is sent. Network failures and non-2xx responses left after the
// retry budget fail with ErrTransportFailure; the latter as *StatusError.
package nyris
