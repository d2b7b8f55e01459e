// Package xoptions compiles matching options into the X-Options request
// header and parses it back.
//
// The header is a space-separated token string. The first enabled stage
// among exact, similarity and ocr starts the string unprefixed, every later
// feature is appended with a " +" prefix and parameters follow as
// "name.param=value" tokens. Token order is part of the wire contract.
package xoptions

import (
	"strconv"
	"strings"

	"github.com/nyris/nyris-go/internal/domain/matching/option"
)

// HeaderName is the request header carrying the compiled options.
const HeaderName = "X-Options"

// Token names.
const (
	tokExact              = "exact"
	tokSimilarity         = "similarity"
	tokOCR                = "ocr"
	tokRegroup            = "regroup"
	tokRecommendations    = "recommendations"
	tokCategoryPrediction = "category-prediction"
	paramLimit            = "limit"
	paramThreshold        = "threshold"
)

// Compile validates s against the image profile and builds the header value.
// An empty string means the header must be omitted.
func Compile(s option.Set) (string, error) {
	return Image.Compile(s)
}

// Build renders s without validation. Same input, same output.
func Build(s option.Set) string {
	var b strings.Builder

	stage := func(name string) {
		if b.Len() == 0 {
			b.WriteString(name)
			return
		}
		b.WriteString(" +")
		b.WriteString(name)
	}

	if s.Exact.Enabled && b.Len() == 0 {
		b.WriteString(tokExact)
	}
	if s.Similarity.Enabled {
		stage(tokSimilarity)
	}
	if s.OCR.Enabled {
		stage(tokOCR)
	}
	if s.Similarity.Enabled && s.Similarity.HasLimit() {
		param(&b, tokSimilarity, paramLimit, strconv.Itoa(s.Similarity.Limit))
	}
	if s.Similarity.Enabled && s.Similarity.HasThreshold() {
		param(&b, tokSimilarity, paramThreshold, FormatFloat(s.Similarity.Threshold))
	}
	if s.Regroup.Enabled {
		b.WriteString(" +" + tokRegroup)
	}
	if s.Regroup.Enabled && s.Regroup.HasThreshold() {
		param(&b, tokRegroup, paramThreshold, FormatFloat(s.Regroup.Threshold))
	}
	if s.HasLimit() {
		b.WriteString(" " + paramLimit + "=" + strconv.Itoa(s.Limit))
	}
	if s.Recommendation.Enabled {
		b.WriteString(" +" + tokRecommendations)
	}
	if s.CategoryPrediction.Enabled {
		b.WriteString(" +" + tokCategoryPrediction)
		if s.CategoryPrediction.HasLimit() {
			param(&b, tokCategoryPrediction, paramLimit, strconv.Itoa(s.CategoryPrediction.Limit))
		}
		if s.CategoryPrediction.HasThreshold() {
			param(&b, tokCategoryPrediction, paramThreshold, FormatFloat(s.CategoryPrediction.Threshold))
		}
	}
	return b.String()
}

// CompileText validates and builds the header for the text search endpoint,
// which only understands regroup and limit. Regroup starts the string
// unprefixed there.
func CompileText(s option.Set) (string, error) {
	if err := validateRegroup(s.Regroup); err != nil {
		return "", err
	}
	if err := validateLimit(s.Limit); err != nil {
		return "", err
	}

	var b strings.Builder
	if s.Regroup.Enabled {
		b.WriteString(tokRegroup)
		if s.Regroup.HasThreshold() {
			param(&b, tokRegroup, paramThreshold, FormatFloat(s.Regroup.Threshold))
		}
	}
	if s.HasLimit() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(paramLimit + "=" + strconv.Itoa(s.Limit))
	}
	return b.String(), nil
}

func param(b *strings.Builder, feature, name, value string) {
	b.WriteByte(' ')
	b.WriteString(feature)
	b.WriteByte('.')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
}

// FormatFloat renders f in the shortest form that round-trips as float32,
// keeping a trailing ".0" on integral values (1 -> "1.0").
func FormatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
