package text

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The quick, brown FOX! jumps-over 2 dogs.")
	want := []string{"the", "quick", "brown", "fox", "jumps", "over", "2", "dogs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenize_Empty(t *testing.T) {
	for _, in := range []string{"", "  ...  !!! "} {
		if got := Tokenize(in); len(got) != 0 {
			t.Errorf("Tokenize(%q) = %q, want empty", in, got)
		}
	}
}

func TestCandidateWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"dedup and short words", "A fox, a Fox and another FOX; x y zz", []string{"fox", "and", "another", "zz"}},
		{"unicode", "Café café naïve ñ", []string{"café", "naïve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CandidateWords(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CandidateWords = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCandidateWords_Deterministic(t *testing.T) {
	doc := "The quick brown fox jumps over the lazy dog"
	first := CandidateWords(doc)
	for i := 0; i < 5; i++ {
		if got := CandidateWords(doc); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Fox \n"); got != "fox" {
		t.Errorf("Normalize = %q", got)
	}
	if got := Normalize("   "); got != "" {
		t.Errorf("Normalize(blank) = %q", got)
	}
}

func TestLemma(t *testing.T) {
	if err := LemmatizerErr(); err != nil {
		t.Fatalf("english dictionary: %v", err)
	}
	tests := map[string]string{
		"foxes":   "fox",
		"mice":    "mouse",
		"gardens": "garden",
		"fox":     "fox",
		"zzyzx42": "zzyzx42",
	}
	for in, want := range tests {
		if got := Lemma(in); got != want {
			t.Errorf("Lemma(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPreprocess(t *testing.T) {
	got := Preprocess("The foxes are in the gardens, and the fox sleeps.")
	want := []string{"fox", "garden", "fox", "sleep"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}
	if got := Preprocess(""); len(got) != 0 {
		t.Errorf("Preprocess(\"\") = %q", got)
	}
}

func TestCountExact(t *testing.T) {
	doc := "Fox, fox-hole and foxes. FOX!"
	tests := map[string]int{"fox": 3, "": 0, " Foxes ": 1}
	for term, want := range tests {
		if got := CountExact(doc, term); got != want {
			t.Errorf("CountExact(%q) = %d, want %d", term, got, want)
		}
	}
}
