// Package option holds the typed, resettable toggles and parameters of the
// matching stages.
//
// Every option starts disabled with unset parameters. An empty option set
// compiles to no X-Options header at all, which lets the server run its
// default pipeline (exact, similarity and ocr). Enabling a stage here narrows
// the pipeline to the stages that are enabled.
package option

// Unset marks a numeric parameter the caller did not configure.
const Unset = -1

// Limit bounds.
const (
	// DefaultLimit doubles as the "not configured" sentinel for Set.Limit:
	// an explicit limit of 20 is indistinguishable from no limit and is never
	// sent. Latent defect kept for wire compatibility.
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

// Option is the capability shared by all matching options.
type Option interface {
	IsEnabled() bool
	Reset()
}

// Exact toggles the exact-match stage.
type Exact struct {
	Enabled bool
}

// IsEnabled reports whether the stage runs.
func (o *Exact) IsEnabled() bool { return o.Enabled }

// Reset restores the default (disabled).
func (o *Exact) Reset() { *o = Exact{} }

// Similarity toggles the similarity stage and carries its parameters.
type Similarity struct {
	Enabled   bool
	Threshold float32 // [0,1] or Unset
	Limit     int     // [1,100] or Unset
}

// NewSimilarity returns the default similarity option.
func NewSimilarity() Similarity {
	return Similarity{Threshold: Unset, Limit: Unset}
}

// IsEnabled reports whether the stage runs.
func (o *Similarity) IsEnabled() bool { return o.Enabled }

// Reset restores the default (disabled, parameters unset).
func (o *Similarity) Reset() { *o = NewSimilarity() }

// HasThreshold reports whether a threshold was configured.
func (o *Similarity) HasThreshold() bool { return o.Threshold != Unset }

// HasLimit reports whether a limit was configured.
func (o *Similarity) HasLimit() bool { return o.Limit != Unset }

// OCR toggles the text-recognition stage.
type OCR struct {
	Enabled bool
}

// IsEnabled reports whether the stage runs.
func (o *OCR) IsEnabled() bool { return o.Enabled }

// Reset restores the default (disabled).
func (o *OCR) Reset() { *o = OCR{} }

// Regroup toggles merging of near-duplicate offers above a score threshold.
type Regroup struct {
	Enabled   bool
	Threshold float32 // [0,1] or Unset
}

// NewRegroup returns the default regroup option.
func NewRegroup() Regroup {
	return Regroup{Threshold: Unset}
}

// IsEnabled reports whether regrouping runs.
func (o *Regroup) IsEnabled() bool { return o.Enabled }

// Reset restores the default (disabled, threshold unset).
func (o *Regroup) Reset() { *o = NewRegroup() }

// HasThreshold reports whether a threshold was configured.
func (o *Regroup) HasThreshold() bool { return o.Threshold != Unset }

// Recommendation toggles related-offer suggestions.
type Recommendation struct {
	Enabled bool
}

// IsEnabled reports whether recommendations are requested.
func (o *Recommendation) IsEnabled() bool { return o.Enabled }

// Reset restores the default (disabled).
func (o *Recommendation) Reset() { *o = Recommendation{} }

// CategoryPrediction toggles category prediction and carries its parameters.
type CategoryPrediction struct {
	Enabled   bool
	Threshold float32 // [0,1] or Unset
	Limit     int     // [1,100] or Unset
}

// NewCategoryPrediction returns the default category prediction option.
func NewCategoryPrediction() CategoryPrediction {
	return CategoryPrediction{Threshold: Unset, Limit: Unset}
}

// IsEnabled reports whether category prediction runs.
func (o *CategoryPrediction) IsEnabled() bool { return o.Enabled }

// Reset restores the default (disabled, parameters unset).
func (o *CategoryPrediction) Reset() { *o = NewCategoryPrediction() }

// HasThreshold reports whether a threshold was configured.
func (o *CategoryPrediction) HasThreshold() bool { return o.Threshold != Unset }

// HasLimit reports whether a limit was configured.
func (o *CategoryPrediction) HasLimit() bool { return o.Limit != Unset }

// Set is the complete option state consulted by one request.
// It is a plain value: copying it snapshots the configuration.
// The zero value is not the default state; start from Defaults.
type Set struct {
	Exact              Exact
	Similarity         Similarity
	OCR                OCR
	Regroup            Regroup
	Recommendation     Recommendation
	CategoryPrediction CategoryPrediction
	Limit              int
}

// Defaults returns a Set with every option at its declared default.
func Defaults() Set {
	return Set{
		Similarity:         NewSimilarity(),
		Regroup:            NewRegroup(),
		CategoryPrediction: NewCategoryPrediction(),
		Limit:              DefaultLimit,
	}
}

// Options lists the options of the set in compile order.
func (s *Set) Options() []Option {
	return []Option{
		&s.Exact,
		&s.Similarity,
		&s.OCR,
		&s.Regroup,
		&s.Recommendation,
		&s.CategoryPrediction,
	}
}

// Reset restores every option and the limit to their defaults.
func (s *Set) Reset() {
	for _, o := range s.Options() {
		o.Reset()
	}
	s.Limit = DefaultLimit
}

// AnyStage reports whether at least one of exact, similarity or ocr is enabled.
func (s *Set) AnyStage() bool {
	return s.Exact.Enabled || s.Similarity.Enabled || s.OCR.Enabled
}

// HasLimit reports whether the result limit differs from the sentinel default.
func (s *Set) HasLimit() bool { return s.Limit != DefaultLimit }
