package feedback

import (
	"fmt"
	"time"

	"github.com/nyris/nyris-go/internal/domain"
)

// TimestampLayout is the wire format of Request.Timestamp (UTC, milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Kind is the wire event discriminator.
type Kind string

// Event kinds.
const (
	KindClick      Kind = "click"
	KindConversion Kind = "conversion"
	KindFeedback   Kind = "feedback"
	KindRegion     Kind = "region"
)

// Request is the feedback wire record.
type Request struct {
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
	Event     Kind   `json:"event"`
	Data      any    `json:"data"`
}

// PositionsData is the payload of click and conversion events.
type PositionsData struct {
	Positions  []int    `json:"positions"`
	ProductIDs []string `json:"product_ids"`
}

// FeedbackData is the payload of feedback events.
type FeedbackData struct {
	Success bool   `json:"success"`
	Comment string `json:"comment"`
}

// Rect is a relative rectangle.
type Rect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// RegionData is the payload of region events.
type RegionData struct {
	Rect Rect `json:"rect"`
}

// Map converts ev to its wire record. Events without a mapping fail with
// domain.ErrUnsupportedEventKind.
func Map(ev Event) (Request, error) {
	var (
		kind Kind
		data any
	)
	switch e := ev.(type) {
	case Click:
		kind, data = KindClick, positions(e.Positions, e.ProductIDs)
	case *Click:
		return mapPtr(e)
	case Conversion:
		kind, data = KindConversion, positions(e.Positions, e.ProductIDs)
	case *Conversion:
		return mapPtr(e)
	case Feedback:
		kind, data = KindFeedback, FeedbackData{Success: e.Success, Comment: e.Comment}
	case *Feedback:
		return mapPtr(e)
	case Region:
		if err := e.Validate(); err != nil {
			return Request{}, err
		}
		kind, data = KindRegion, RegionData{Rect: Rect{X: e.Left, Y: e.Top, W: e.Width, H: e.Height}}
	case *Region:
		return mapPtr(e)
	default:
		return Request{}, fmt.Errorf("%w: %T", domain.ErrUnsupportedEventKind, ev)
	}

	m := ev.EventMeta()
	return Request{
		RequestID: m.RequestID,
		SessionID: m.SessionID,
		Timestamp: FormatTimestamp(m.Timestamp),
		Event:     kind,
		Data:      data,
	}, nil
}

func mapPtr[T Click | Conversion | Feedback | Region](e *T) (Request, error) {
	if e == nil {
		return Request{}, fmt.Errorf("%w: nil %T", domain.ErrUnsupportedEventKind, e)
	}
	return Map(any(*e).(Event))
}

func positions(pos []int, ids []string) PositionsData {
	if pos == nil {
		pos = []int{}
	}
	if ids == nil {
		ids = []string{}
	}
	return PositionsData{Positions: pos, ProductIDs: ids}
}

// FormatTimestamp renders t in UTC with millisecond precision. The zero time
// renders as the empty string.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}
