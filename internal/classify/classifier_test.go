package classify

import "testing"

func TestClassify(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		mode string
		want QuestionType
	}{
		{
			name: "pure coding question",
			text: "Write a function that reverses a linked list in O(n) time using recursion.",
			mode: "technical-screening",
			want: TypeCoding,
		},
		{
			name: "pure design question",
			text: "Design a URL shortener that scales to 100 million users with caching and sharding.",
			mode: "technical-screening",
			want: TypeDesign,
		},
		{
			name: "coding overcomes design bias",
			// Four distinct coding signals against the +2 system-design bias
			text: "Given an array, implement quicksort; return the pivot index. Time complexity? Watch the nested loops.",
			mode: "system-design",
			want: TypeCoding,
		},
		{
			name: "dsa bias pushes ambiguous text to coding",
			text: "How would you handle a queue here?",
			mode: "dsa",
			want: TypeCoding,
		},
		{
			name: "no signals at all defaults to design on tie",
			text: "tell me about your weekend",
			mode: "technical-screening",
			want: TypeDesign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, tt.mode)
			if got.Type != tt.want {
				t.Errorf("Classify(%q, %q) = %v (coding=%d design=%d), want %v",
					tt.text, tt.mode, got.Type, got.CodingHits, got.DesignHits, tt.want)
			}
		})
	}
}

func TestClassifyTieGoesToDesign(t *testing.T) {
	c := New()

	// One distinct signal per family, no biasing mode: an exact tie.
	text := "implement caching"
	got := c.Classify(text, "technical-screening")
	if got.CodingHits != got.DesignHits {
		t.Fatalf("fixture is not a tie: coding=%d design=%d", got.CodingHits, got.DesignHits)
	}
	if got.Type != TypeDesign {
		t.Errorf("tie resolved to %v, want design", got.Type)
	}
}

func TestClassifyDistinctHitsNotRawMatches(t *testing.T) {
	c := New()

	// Many matches of a single coding signal vs. two distinct design signals
	text := "return return return return; design a database"
	got := c.Classify(text, "technical-screening")
	if got.CodingHits != 1 {
		t.Errorf("coding hits = %d, want 1 (distinct signals, not matches)", got.CodingHits)
	}
	if got.DesignHits != 2 {
		t.Errorf("design hits = %d, want 2", got.DesignHits)
	}
	if got.Type != TypeDesign {
		t.Errorf("type = %v, want design", got.Type)
	}
}

func TestClassifyEmptyTextShortCircuits(t *testing.T) {
	c := New()

	tests := []struct {
		mode string
		want QuestionType
	}{
		{"system-design", TypeDesign},
		{"dsa", TypeCoding},
		{"technical-screening", TypeCoding},
		{"", TypeCoding},
	}

	for _, tt := range tests {
		got := c.Classify("", tt.mode)
		if got.Type != tt.want {
			t.Errorf("Classify(\"\", %q) = %v, want %v", tt.mode, got.Type, tt.want)
		}
		if got.CodingHits != 0 || got.DesignHits != 0 {
			t.Errorf("empty text must not run patterns, got coding=%d design=%d", got.CodingHits, got.DesignHits)
		}
	}
}
