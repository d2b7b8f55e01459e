package response

import (
	"encoding/json"
	"fmt"

	"github.com/nyris/nyris-go/internal/domain"
)

// Region is a bounding box in image coordinates.
type Region struct {
	Left   float32 `json:"left"`
	Top    float32 `json:"top"`
	Right  float32 `json:"right"`
	Bottom float32 `json:"bottom"`
}

// Width returns Right - Left.
func (r Region) Width() float32 { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Region) Height() float32 { return r.Bottom - r.Top }

// DetectedObject is one object proposal.
type DetectedObject struct {
	Confidence float32 `json:"confidence"`
	Region     Region  `json:"region"`
}

// ObjectList is the object proposal result.
type ObjectList struct {
	Regions []DetectedObject `json:"regions"`
}

// DecodeObjects decodes an object proposal response.
func DecodeObjects(body []byte) (ObjectList, error) {
	var l ObjectList
	if err := json.Unmarshal(body, &l); err != nil {
		return ObjectList{}, fmt.Errorf("%w: decode regions: %w", domain.ErrMalformedResponse, err)
	}
	if l.Regions == nil {
		l.Regions = []DetectedObject{}
	}
	return l, nil
}
