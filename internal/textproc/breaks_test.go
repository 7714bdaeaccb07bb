package textproc

import "testing"

func TestMeasureLastUChars(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want int
	}{
		{"ascii single", "hello", 1, 1},
		{"ascii several", "hello", 3, 3},
		{"more than available", "hi", 5, 2},
		{"empty text", "", 3, 0},
		{"zero count", "hello", 0, 0},
		{"combining mark counts with base", "café", 1, 2},
		{"emoji zwj sequence is one cluster", "a\U0001F469‍\U0001F4BB", 1, 3},
		{"flag is one cluster", "x\U0001F1EB\U0001F1F7", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureLastUChars(tt.text, tt.n); got != tt.want {
				t.Errorf("MeasureLastUChars(%q, %d) = %d, want %d", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestMeasureNextUChars(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want int
	}{
		{"ascii", "hello", 2, 2},
		{"combining mark", "éx", 1, 2},
		{"more than available", "ab", 4, 2},
		{"empty", "", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureNextUChars(tt.text, tt.n); got != tt.want {
				t.Errorf("MeasureNextUChars(%q, %d) = %d, want %d", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestMeasureLastUWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want int
	}{
		{"single word", "hello", 1, 5},
		{"word plus trailing space", "hello world ", 1, 6},
		{"two words", "one two three", 2, 9},
		{"only whitespace", "   ", 1, 3},
		{"punctuation is its own word", "end.", 1, 1},
		{"empty", "", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureLastUWords(tt.text, tt.n); got != tt.want {
				t.Errorf("MeasureLastUWords(%q, %d) = %d, want %d", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestMeasureNextUWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want int
	}{
		{"single word", "hello", 1, 5},
		{"leading space plus word", " world", 1, 6},
		{"two words", "one two three", 2, 7},
		{"empty", "", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureNextUWords(tt.text, tt.n); got != tt.want {
				t.Errorf("MeasureNextUWords(%q, %d) = %d, want %d", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestWordDeleteRoundTrip(t *testing.T) {
	// Deleting the measured span must leave the preceding word intact.
	text := "the quick brown "
	n := MeasureLastUWords(text, 1)
	if n != 6 {
		t.Fatalf("MeasureLastUWords = %d, want 6", n)
	}
	remaining := []rune(text)
	remaining = remaining[:len(remaining)-n]
	if got := string(remaining); got != "the quick " {
		t.Errorf("after delete: %q, want %q", got, "the quick ")
	}
}
