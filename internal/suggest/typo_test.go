package suggest

import (
	"context"
	"testing"

	"github.com/dshills/keybridge/internal/dict"
)

func TestTypoProviderCorrectsCommonTypo(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), nil)

	p.Observe("teh")
	c := p.AutoCommitCandidate()
	if c == nil {
		t.Fatal("expected a candidate for 'teh'")
	}
	if c.Text != "the" {
		t.Errorf("expected correction 'the', got %q", c.Text)
	}
	if c.Confidence != typoConfidence {
		t.Errorf("expected confidence %v, got %v", typoConfidence, c.Confidence)
	}
	if !c.IsEligibleForAutoCommit {
		t.Error("expected the candidate to be auto-commit eligible")
	}
	if c.Source != SourceTypo {
		t.Errorf("expected source %q, got %q", SourceTypo, c.Source)
	}
}

func TestTypoProviderPreservesCase(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), nil)

	p.Observe("Teh")
	if c := p.AutoCommitCandidate(); c == nil || c.Text != "The" {
		t.Errorf("expected 'The', got %+v", c)
	}

	p.Observe("TEH")
	if c := p.AutoCommitCandidate(); c == nil || c.Text != "THE" {
		t.Errorf("expected 'THE', got %+v", c)
	}

	p.Observe("im")
	if c := p.AutoCommitCandidate(); c == nil || c.Text != "I'm" {
		t.Errorf("expected \"I'm\", got %+v", c)
	}
}

func TestTypoProviderKnownWordNoCandidate(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), nil)

	p.Observe("the")
	if c := p.AutoCommitCandidate(); c != nil {
		t.Errorf("expected no candidate for a listed word, got %+v", c)
	}

	p.Observe("")
	if c := p.AutoCommitCandidate(); c != nil {
		t.Errorf("expected no candidate for the empty word, got %+v", c)
	}
}

func TestTypoProviderUserDictionaryFuzzy(t *testing.T) {
	store := dict.NewMemStore()
	store.Insert(dict.Entry{Word: "keybridge", Locale: "en", Frequency: 163})

	p := NewTypoProvider(dict.NewStaticDict(), store)
	p.SetLocale("en")
	if err := p.RefreshUserWords(context.Background()); err != nil {
		t.Fatalf("RefreshUserWords failed: %v", err)
	}

	p.Observe("keybrige")
	c := p.AutoCommitCandidate()
	if c == nil {
		t.Fatal("expected a fuzzy user-dictionary candidate")
	}
	if c.Text != "keybridge" {
		t.Errorf("expected 'keybridge', got %q", c.Text)
	}
	if c.Source != SourceUserDictionary {
		t.Errorf("expected source %q, got %q", SourceUserDictionary, c.Source)
	}
	if c.Confidence < userFuzzyBase || c.Confidence > userFuzzyBase+userFuzzySpan {
		t.Errorf("confidence %v outside user fuzzy range", c.Confidence)
	}

	// The exact word itself needs no correcting.
	p.Observe("keybridge")
	if c := p.AutoCommitCandidate(); c != nil {
		t.Errorf("expected no candidate for an exact user word, got %+v", c)
	}
}

func TestTypoProviderStaticFuzzyStaysBelowGate(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), nil)

	p.Observe("hte")
	c := p.AutoCommitCandidate()
	if c == nil {
		t.Fatal("expected a fuzzy candidate for 'hte'")
	}
	if c.Text != "the" {
		t.Errorf("expected 'the', got %q", c.Text)
	}
	if c.Confidence > staticFuzzyBase+staticFuzzySpan {
		t.Errorf("confidence %v above the fuzzy ceiling", c.Confidence)
	}
	if c.Confidence > 0.9 {
		t.Errorf("static fuzzy confidence %v must not clear the auto-commit gate", c.Confidence)
	}
}

func TestTypoProviderRevertDemotes(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), nil)

	p.Observe("teh")
	c := p.AutoCommitCandidate()
	if c == nil {
		t.Fatal("expected a candidate before the revert")
	}

	p.NotifyCandidateReverted(*c)
	if c := p.AutoCommitCandidate(); c != nil {
		t.Errorf("expected no candidate after a revert, got %+v", c)
	}
}

func TestTypoProviderNoMatch(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), nil)

	p.Observe("zzzzqqq")
	if c := p.AutoCommitCandidate(); c != nil {
		t.Errorf("expected no candidate, got %+v", c)
	}
}

func TestRefreshUserWordsCancelled(t *testing.T) {
	p := NewTypoProvider(dict.NewStaticDict(), dict.NewMemStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.RefreshUserWords(ctx); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"the", "the", false},
		{"teh", "the", true},
		{"cat", "car", true},
		{"helo", "hello", true},
		{"helllo", "hello", true},
		{"hte", "the", true},
		{"dog", "cat", false},
		{"word", "wordly", false},
		{"", "", false},
		{"a", "ab", true},
	}
	for _, tt := range tests {
		if got := withinOneEdit(tt.a, tt.b); got != tt.want {
			t.Errorf("withinOneEdit(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
