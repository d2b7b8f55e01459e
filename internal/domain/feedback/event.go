// Package feedback models the analytics events reported after a search and
// maps them to the feedback wire format.
package feedback

import (
	"fmt"
	"time"

	"github.com/nyris/nyris-go/internal/domain"
)

// Meta is shared by every event.
type Meta struct {
	RequestID string
	SessionID string
	Timestamp time.Time
}

// EventMeta returns m. Embedding Meta makes a type an Event.
func (m Meta) EventMeta() Meta { return m }

// Event is a feedback event. Click, Conversion, Feedback and Region have a
// wire mapping; any other implementation is rejected by Map.
type Event interface {
	EventMeta() Meta
}

func newMeta(requestID, sessionID string) Meta {
	return Meta{RequestID: requestID, SessionID: sessionID, Timestamp: time.Now()}
}

// Click reports that the user opened offers at the given result positions.
type Click struct {
	Meta
	Positions  []int
	ProductIDs []string
}

// NewClick creates a click event stamped with the current time.
func NewClick(requestID, sessionID string, positions []int, productIDs []string) Click {
	return Click{Meta: newMeta(requestID, sessionID), Positions: positions, ProductIDs: productIDs}
}

// Conversion reports that the user bought offers at the given positions.
type Conversion struct {
	Meta
	Positions  []int
	ProductIDs []string
}

// NewConversion creates a conversion event stamped with the current time.
func NewConversion(requestID, sessionID string, positions []int, productIDs []string) Conversion {
	return Conversion{Meta: newMeta(requestID, sessionID), Positions: positions, ProductIDs: productIDs}
}

// Feedback reports whether the result was useful.
type Feedback struct {
	Meta
	Success bool
	Comment string
}

// NewFeedback creates a feedback event stamped with the current time.
func NewFeedback(requestID, sessionID string, success bool, comment string) Feedback {
	return Feedback{Meta: newMeta(requestID, sessionID), Success: success, Comment: comment}
}

// Region reports the region of interest the user selected. All values are
// relative to the image size, in [0,1].
type Region struct {
	Meta
	Left   float32
	Top    float32
	Width  float32
	Height float32
}

// NewRegion creates a region event. Values outside [0,1] are rejected.
func NewRegion(requestID, sessionID string, left, top, width, height float32) (Region, error) {
	r := Region{
		Meta: newMeta(requestID, sessionID),
		Left: left, Top: top, Width: width, Height: height,
	}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Validate checks that every coordinate is in [0,1].
func (r Region) Validate() error {
	for _, v := range []struct {
		name string
		val  float32
	}{
		{"left", r.Left}, {"top", r.Top}, {"width", r.Width}, {"height", r.Height},
	} {
		if v.val < 0 || v.val > 1 {
			return domain.InvalidConfiguration(fmt.Sprintf("region %s must be between 0 and 1, got %v", v.name, v.val))
		}
	}
	return nil
}
