package nyris

import (
	"context"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/domain/feedback"
	"github.com/nyris/nyris-go/internal/domain/response"
	"github.com/nyris/nyris-go/internal/transport/endpoint"
	"github.com/nyris/nyris-go/internal/transport/httpx"
	"github.com/nyris/nyris-go/internal/transport/request"
)

// Regions proposes object regions in an image.
type Regions struct {
	client *Client
}

// Detect returns the detected objects of image.
func (s *Regions) Detect(ctx context.Context, image []byte) (ObjectList, error) {
	return call(ctx, s.client, "detect_regions",
		func() (request.Spec, error) {
			if len(image) == 0 {
				return request.Spec{}, domain.InvalidConfiguration("image is empty")
			}
			return post(s.client.endpoints.Regions(), request.Image(image)), nil
		},
		func(resp *httpx.Response) (ObjectList, error) {
			return response.DecodeObjects(resp.Body)
		})
}

// Feedback reports analytics events.
type Feedback struct {
	client *Client
}

// Send reports ev. Events of unknown kinds fail with ErrUnsupportedEventKind
// before any request is made.
func (s *Feedback) Send(ctx context.Context, ev Event) error {
	_, err := call(ctx, s.client, "send_feedback",
		func() (request.Spec, error) {
			rec, err := feedback.Map(ev)
			if err != nil {
				return request.Spec{}, err
			}
			body, err := request.JSON(rec)
			if err != nil {
				return request.Spec{}, err
			}
			return post(s.client.endpoints.Feedback(), body), nil
		},
		discard)
	return err
}

// NotFound flags a match request whose results missed the object, queueing
// it for manual matching.
type NotFound struct {
	client *Client
}

// Mark flags requestID.
func (s *NotFound) Mark(ctx context.Context, requestID string) error {
	_, err := call(ctx, s.client, "mark_not_found",
		func() (request.Spec, error) {
			if err := endpoint.CheckSegment("request id", requestID); err != nil {
				return request.Spec{}, domain.InvalidConfiguration(err.Error())
			}
			return post(s.client.endpoints.NotFound(requestID), request.Empty()), nil
		},
		discard)
	return err
}
