package nyris

import (
	"fmt"

	"github.com/nyris/nyris-go/internal/config"
	"github.com/nyris/nyris-go/internal/domain/feedback"
	"github.com/nyris/nyris-go/internal/domain/matching/option"
	"github.com/nyris/nyris-go/internal/domain/response"
)

// Config is the file-based client configuration, see LoadConfig.
type Config = config.Config

// Matching options.
type (
	// MatchOptions is the full option state of one matching call.
	MatchOptions             = option.Set
	ExactOption              = option.Exact
	SimilarityOption         = option.Similarity
	OCROption                = option.OCR
	RegroupOption            = option.Regroup
	RecommendationOption     = option.Recommendation
	CategoryPredictionOption = option.CategoryPrediction
)

// Unset marks a numeric option parameter as not configured.
const Unset = option.Unset

// Results.
type (
	OfferResponse    = response.OfferResponse
	Offer            = response.Offer
	Links            = response.Links
	RawJSONResponse  = response.RawJSON
	HeaderedResponse = response.Headered
	ObjectList       = response.ObjectList
	DetectedObject   = response.DetectedObject
	Region           = response.Region
)

// Feedback events.
type (
	Event           = feedback.Event
	EventMeta       = feedback.Meta
	ClickEvent      = feedback.Click
	ConversionEvent = feedback.Conversion
	FeedbackEvent   = feedback.Feedback
	RegionEvent     = feedback.Region
)

// NewClickEvent reports opened offers at result positions.
func NewClickEvent(requestID, sessionID string, positions []int, productIDs []string) ClickEvent {
	return feedback.NewClick(requestID, sessionID, positions, productIDs)
}

// NewConversionEvent reports bought offers at result positions.
func NewConversionEvent(requestID, sessionID string, positions []int, productIDs []string) ConversionEvent {
	return feedback.NewConversion(requestID, sessionID, positions, productIDs)
}

// NewFeedbackEvent reports whether a result was useful.
func NewFeedbackEvent(requestID, sessionID string, success bool, comment string) FeedbackEvent {
	return feedback.NewFeedback(requestID, sessionID, success, comment)
}

// NewRegionEvent reports the selected region of interest, relative to the
// image size. Values outside [0,1] fail with ErrInvalidConfiguration.
func NewRegionEvent(requestID, sessionID string, left, top, width, height float32) (RegionEvent, error) {
	r, err := feedback.NewRegion(requestID, sessionID, left, top, width, height)
	if err != nil {
		return RegionEvent{}, fmt.Errorf("nyris: %w", err)
	}
	return r, nil
}
