package assistant

import (
	"strings"
	"testing"
)

func TestOfflineDeterminism(t *testing.T) {
	r := NewOfflineResponder()
	query := "where can I download the pdf notes for physics?"

	first := r.Answer(query)
	for i := 0; i < 50; i++ {
		if got := r.Answer(query); got != first {
			t.Fatalf("iteration %d returned a different answer", i)
		}
	}
	if first == "" {
		t.Fatal("empty answer")
	}
}

func TestOfflineKeywordScoring(t *testing.T) {
	r := NewOfflineResponder()

	got := r.Answer("how do I download the notes pdf file")
	if !strings.Contains(got, "PDF") {
		t.Errorf("download query answered %q", got)
	}

	got = r.Answer("when is the exam date and schedule")
	if !strings.Contains(got, "Exam schedules") {
		t.Errorf("exam query answered %q", got)
	}
}

func TestOfflineRequiredWords(t *testing.T) {
	r := NewOfflineResponder()

	// "schedule" and "date" alone hit the exam rule's keywords, but the
	// required word "exam" is missing, so the rule must score zero.
	got := r.Answer("schedule date")
	if strings.Contains(got, "Exam schedules") {
		t.Errorf("exam rule fired without its required word: %q", got)
	}
}

func TestOfflineThresholdFallback(t *testing.T) {
	r := NewOfflineResponder()

	got := r.Answer("zxqv blorp")
	if got != r.fallback["en"] {
		t.Errorf("gibberish answered %q, want fallback", got)
	}

	// A single weak keyword hit stays below the threshold.
	got = r.Answer("email")
	if got != r.fallback["en"] {
		t.Errorf("single keyword cleared the threshold: %q", got)
	}
}

func TestOfflineScriptDetection(t *testing.T) {
	r := NewOfflineResponder()

	got := r.Answer("परीक्षा की तारीख क्या है")
	if !strings.Contains(got, "परीक्षा") {
		t.Errorf("devanagari query answered %q, want hindi response", got)
	}

	// Gibberish in Devanagari falls back in Hindi, not English.
	got = r.Answer("कखगघङ")
	if got != r.fallback["hi"] {
		t.Errorf("devanagari fallback = %q", got)
	}
}

func TestOfflineCaseInsensitive(t *testing.T) {
	r := NewOfflineResponder()

	lower := r.Answer("download pdf notes")
	upper := r.Answer("DOWNLOAD PDF NOTES")
	if lower != upper {
		t.Error("scoring must be case-insensitive")
	}
}
