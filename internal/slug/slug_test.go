package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "Hello World", "hello-world"},
		{"trim whitespace", "  Hello World  ", "hello-world"},
		{"multiple spaces", "hello    world", "hello-world"},
		{"already a slug", "hello-world", "hello-world"},

		// Stopword removal
		{"leading article", "The Art of Testing", "art-testing"},
		{"connectives", "Tips for Working with Go", "tips-working-go"},
		{"all stopwords", "the and of", ""},
		{"stopword inside word kept", "Toronto Theater", "toronto-theater"},

		// Symbol replacements
		{"ampersand", "Tips & Tricks", "tips-and-tricks"},
		{"at sign", "Dinner @ Eight", "dinner-at-eight"},
		{"replacement word survives", "Art of Go & SQL", "art-go-and-sql"},
		{"percent", "Save 50% Today", "save-50-percent-today"},
		{"plus", "C++ Basics", "c-plus-plus-basics"},
		{"equals", "Speed = Distance / Time", "speed-equals-distance-time"},

		// Unicode handling
		{"accents stripped", "Caffè Über Alles", "caffe-uber-alles"},
		{"emoji removed", "🚀 Launch Day", "launch-day"},
		{"cjk removed", "日本語 Post", "post"},

		// Edge cases
		{"empty", "", ""},
		{"only punctuation", "!!!???", ""},
		{"numbers kept", "Top 10 Posts", "top-10-posts"},
		{"hyphens collapsed", "a -- b", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input, MaxLength)
			if got != tt.expected {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGenerate_TruncatesOnWordBoundary(t *testing.T) {
	got := Generate("one two three four five six seven eight nine ten eleven twelve", 30)
	if len(got) > 30 {
		t.Fatalf("slug %q exceeds max length: %d", got, len(got))
	}
	// Must not end mid-word.
	if got != "one-two-three-four-five-six" {
		t.Errorf("Generate truncated to %q, want %q", got, "one-two-three-four-five-six")
	}
}

func TestGenerate_FirstWordLongerThanLimit(t *testing.T) {
	got := Generate("supercalifragilisticexpialidocious", 10)
	if got != "supercalif" {
		t.Errorf("Generate = %q, want %q", got, "supercalif")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("The Quick Brown Fox", MaxLength)
	b := Generate("The Quick Brown Fox", MaxLength)
	if a != b {
		t.Errorf("Generate is not deterministic: %q != %q", a, b)
	}
}
