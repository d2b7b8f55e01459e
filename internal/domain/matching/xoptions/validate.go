package xoptions

import (
	"fmt"
	"math"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/domain/matching/option"
)

// Profile holds the precondition messages of one matching capability.
// Capabilities keep their own wording; they are not unified.
type Profile struct {
	Name           string
	Recommendation string
	Regroup        string
}

// Matching profiles.
var (
	// Image covers byte-array and multipart image matching.
	Image = Profile{
		Name:           "image",
		Recommendation: "recommendation requires exact, similarity, or ocr",
		Regroup:        "regroup requires exact, similarity, or ocr",
	}
	// Vector covers feature-vector matching.
	Vector = Profile{
		Name:           "vector",
		Recommendation: "recommendation requires exact or similarity",
		Regroup:        "regroup requires exact, similarity, or ocr",
	}
)

// Validate checks cross-option preconditions and the parameter ranges of
// enabled stages. Parameters of disabled stages are never sent.
func (p Profile) Validate(s option.Set) error {
	if s.Recommendation.Enabled && !s.AnyStage() {
		return domain.InvalidConfiguration(p.Recommendation)
	}
	if s.Regroup.Enabled && !s.AnyStage() {
		return domain.InvalidConfiguration(p.Regroup)
	}
	if s.Similarity.Enabled {
		if err := validateStageLimit("similarity.limit", s.Similarity.Limit); err != nil {
			return err
		}
		if err := validateThreshold("similarity.threshold", s.Similarity.Threshold); err != nil {
			return err
		}
	}
	if err := validateRegroup(s.Regroup); err != nil {
		return err
	}
	if s.CategoryPrediction.Enabled {
		if err := validateStageLimit("category-prediction.limit", s.CategoryPrediction.Limit); err != nil {
			return err
		}
		if err := validateThreshold("category-prediction.threshold", s.CategoryPrediction.Threshold); err != nil {
			return err
		}
	}
	return validateLimit(s.Limit)
}

// Compile validates s and builds the header value.
func (p Profile) Compile(s option.Set) (string, error) {
	if err := p.Validate(s); err != nil {
		return "", err
	}
	return Build(s), nil
}

func validateRegroup(r option.Regroup) error {
	if !r.Enabled {
		return nil
	}
	return validateThreshold("regroup.threshold", r.Threshold)
}

func validateThreshold(name string, v float32) error {
	if v == option.Unset {
		return nil
	}
	if math.IsNaN(float64(v)) || v < 0 || v > 1 {
		return domain.InvalidConfiguration(fmt.Sprintf("%s must be between 0 and 1, got %v", name, v))
	}
	return nil
}

func validateStageLimit(name string, v int) error {
	if v == option.Unset {
		return nil
	}
	if v < option.MinLimit || v > option.MaxLimit {
		return domain.InvalidConfiguration(fmt.Sprintf(
			"%s must be between %d and %d, got %d", name, option.MinLimit, option.MaxLimit, v,
		))
	}
	return nil
}

func validateLimit(v int) error {
	if v < option.MinLimit || v > option.MaxLimit {
		return domain.InvalidConfiguration(fmt.Sprintf(
			"limit must be between %d and %d, got %d", option.MinLimit, option.MaxLimit, v,
		))
	}
	return nil
}
