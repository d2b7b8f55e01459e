package option

import "testing"

func TestDefaults(t *testing.T) {
	s := Defaults()

	for i, o := range s.Options() {
		if o.IsEnabled() {
			t.Errorf("option %d enabled by default", i)
		}
	}
	if s.Similarity.HasLimit() || s.Similarity.HasThreshold() {
		t.Errorf("similarity params set by default: %+v", s.Similarity)
	}
	if s.Regroup.HasThreshold() {
		t.Errorf("regroup threshold set by default: %v", s.Regroup.Threshold)
	}
	if s.CategoryPrediction.HasLimit() || s.CategoryPrediction.HasThreshold() {
		t.Errorf("category prediction params set by default: %+v", s.CategoryPrediction)
	}
	if s.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want %d", s.Limit, DefaultLimit)
	}
	if s.HasLimit() {
		t.Error("HasLimit() = true for default limit")
	}
	if s.AnyStage() {
		t.Error("AnyStage() = true for defaults")
	}
}

func TestSet_Reset(t *testing.T) {
	s := Defaults()
	s.Exact.Enabled = true
	s.Similarity = Similarity{Enabled: true, Threshold: 0.5, Limit: 10}
	s.OCR.Enabled = true
	s.Regroup = Regroup{Enabled: true, Threshold: 0.9}
	s.Recommendation.Enabled = true
	s.CategoryPrediction = CategoryPrediction{Enabled: true, Threshold: 0.1, Limit: 3}
	s.Limit = 50

	s.Reset()

	if s != Defaults() {
		t.Errorf("after Reset() = %+v, want %+v", s, Defaults())
	}
}

func TestOptions_ResetIndividually(t *testing.T) {
	sim := Similarity{Enabled: true, Threshold: 0.3, Limit: 4}
	sim.Reset()
	if sim != NewSimilarity() {
		t.Errorf("similarity after Reset() = %+v", sim)
	}

	rg := Regroup{Enabled: true, Threshold: 0.3}
	rg.Reset()
	if rg != NewRegroup() {
		t.Errorf("regroup after Reset() = %+v", rg)
	}

	cp := CategoryPrediction{Enabled: true, Threshold: 0.3, Limit: 4}
	cp.Reset()
	if cp != NewCategoryPrediction() {
		t.Errorf("category prediction after Reset() = %+v", cp)
	}

	ex := Exact{Enabled: true}
	ex.Reset()
	if ex.IsEnabled() {
		t.Error("exact still enabled after Reset()")
	}
}

func TestOptions_MutationIsIsolated(t *testing.T) {
	s := Defaults()
	s.Recommendation.Enabled = true

	if s.Exact.Enabled || s.Similarity.Enabled || s.OCR.Enabled {
		t.Error("enabling recommendation changed a stage")
	}
}

func TestSet_AnyStage(t *testing.T) {
	tests := []struct {
		name            string
		exact, sim, ocr bool
		want            bool
	}{
		{"none", false, false, false, false},
		{"exact", true, false, false, true},
		{"similarity", false, true, false, true},
		{"ocr", false, false, true, true},
		{"all", true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			s.Exact.Enabled = tt.exact
			s.Similarity.Enabled = tt.sim
			s.OCR.Enabled = tt.ocr
			if got := s.AnyStage(); got != tt.want {
				t.Errorf("AnyStage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSet_SnapshotIsIndependent(t *testing.T) {
	s := Defaults()
	s.Similarity.Enabled = true

	snap := s
	s.Reset()

	if !snap.Similarity.Enabled {
		t.Error("snapshot was affected by Reset()")
	}
}
