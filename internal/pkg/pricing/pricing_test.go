package pricing

import (
	"errors"
	"testing"
)

func TestDefaultCosts(t *testing.T) {
	table := Default()

	cases := []struct {
		feature string
		want    int
	}{
		{FeatureVideo, 5},
		{FeatureGame, 10},
	}
	for _, tc := range cases {
		got, err := table.CostOf(tc.feature)
		if err != nil {
			t.Fatalf("CostOf(%s): unexpected error: %v", tc.feature, err)
		}
		if got != tc.want {
			t.Fatalf("CostOf(%s) = %d, want %d", tc.feature, got, tc.want)
		}
	}
}

func TestUnknownFeature(t *testing.T) {
	_, err := Default().CostOf("image")
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
}

func TestOverridesAndFallbacks(t *testing.T) {
	table := NewTable(7, 20)
	if cost, _ := table.CostOf(FeatureVideo); cost != 7 {
		t.Fatalf("expected video cost 7, got %d", cost)
	}
	if cost, _ := table.CostOf(FeatureGame); cost != 20 {
		t.Fatalf("expected game cost 20, got %d", cost)
	}

	// Non-positive overrides fall back to defaults
	table = NewTable(0, -3)
	if cost, _ := table.CostOf(FeatureVideo); cost != 5 {
		t.Fatalf("expected default video cost 5, got %d", cost)
	}
	if cost, _ := table.CostOf(FeatureGame); cost != 10 {
		t.Fatalf("expected default game cost 10, got %d", cost)
	}
}

func TestFeatures(t *testing.T) {
	features := Default().Features()
	if len(features) != 2 || features[0] != FeatureGame || features[1] != FeatureVideo {
		t.Fatalf("unexpected feature list: %v", features)
	}
}
