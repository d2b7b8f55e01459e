package xoptions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/domain/matching/option"
)

// Parse reads a header value produced by Build or CompileText back into an
// option set. An empty value yields Defaults. Token order is not checked.
func Parse(header string) (option.Set, error) {
	s := option.Defaults()
	for tok := range strings.FieldsSeq(header) {
		if name, value, ok := strings.Cut(tok, "="); ok {
			if err := parseParam(&s, name, value); err != nil {
				return option.Defaults(), err
			}
			continue
		}
		switch strings.TrimPrefix(tok, "+") {
		case tokExact:
			s.Exact.Enabled = true
		case tokSimilarity:
			s.Similarity.Enabled = true
		case tokOCR:
			s.OCR.Enabled = true
		case tokRegroup:
			s.Regroup.Enabled = true
		case tokRecommendations:
			s.Recommendation.Enabled = true
		case tokCategoryPrediction:
			s.CategoryPrediction.Enabled = true
		default:
			return option.Defaults(), domain.InvalidConfiguration(fmt.Sprintf("unknown option %q", tok))
		}
	}
	return s, nil
}

func parseParam(s *option.Set, name, value string) error {
	switch name {
	case paramLimit:
		n, err := parseInt(name, value)
		s.Limit = n
		return err
	case tokSimilarity + "." + paramLimit:
		n, err := parseInt(name, value)
		s.Similarity.Limit = n
		return err
	case tokSimilarity + "." + paramThreshold:
		f, err := parseFloat(name, value)
		s.Similarity.Threshold = f
		return err
	case tokRegroup + "." + paramThreshold:
		f, err := parseFloat(name, value)
		s.Regroup.Threshold = f
		return err
	case tokCategoryPrediction + "." + paramLimit:
		n, err := parseInt(name, value)
		s.CategoryPrediction.Limit = n
		return err
	case tokCategoryPrediction + "." + paramThreshold:
		f, err := parseFloat(name, value)
		s.CategoryPrediction.Threshold = f
		return err
	}
	return domain.InvalidConfiguration(fmt.Sprintf("unknown parameter %q", name))
}

func parseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.InvalidConfiguration(fmt.Sprintf("%s: %q is not an integer", name, value))
	}
	return n, nil
}

func parseFloat(name, value string) (float32, error) {
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, domain.InvalidConfiguration(fmt.Sprintf("%s: %q is not a number", name, value))
	}
	return float32(f), nil
}
