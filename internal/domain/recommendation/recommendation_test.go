package recommendation

import "testing"

func TestNew_RoundsSimilarity(t *testing.T) {
	r := New(7, "Titular", "tecnologia", 0.123456, "prev...")
	if r.Similarity() != 0.1235 {
		t.Errorf("Similarity() = %v, want 0.1235", r.Similarity())
	}
	if r.ID() != 7 || r.Title() != "Titular" || r.Category() != "tecnologia" || r.Preview() != "prev..." {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{0.99996, 1},
		{0.00004, 0},
		{0.33333, 0.3333},
		{0.66667, 0.6667},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
