package jagriti

import "testing"

func TestMatchText(t *testing.T) {
	candidates := []string{
		"KARNATAKA NORTH",
		"KARNATAKA",
		"MAHARASHTRA",
		"TAMIL NADU",
	}

	tests := []struct {
		name      string
		needle    string
		wantIndex int
		wantOK    bool
	}{
		{"exact_case_insensitive", "karnataka", 1, true},
		{"exact_beats_substring", "KARNATAKA", 1, true},
		{"needle_in_candidate", "maharash", 2, true},
		{"candidate_in_needle", "TAMIL NADU STATE COMMISSION", 3, true},
		{"substring_first_in_source_order", "KARNAT", 0, true},
		{"padded_exact", "  karnataka  ", 1, true},
		{"miss", "KERALA", 0, false},
		{"empty_needle", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := matchText(tt.needle, candidates)
			if ok != tt.wantOK {
				t.Fatalf("matchText(%q) ok = %v, want %v", tt.needle, ok, tt.wantOK)
			}
			if ok && idx != tt.wantIndex {
				t.Errorf("matchText(%q) index = %d, want %d", tt.needle, idx, tt.wantIndex)
			}
		})
	}
}

func TestMatchTextEmptyCandidates(t *testing.T) {
	if _, ok := matchText("anything", nil); ok {
		t.Error("matchText against no candidates = match, want miss")
	}
}
