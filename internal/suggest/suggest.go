// Package suggest defines the suggestion-provider contract consumed by the
// keyboard manager: candidate words with confidence scores, and the
// notifications a provider receives when its candidates are applied or
// reverted.
package suggest

import "fmt"

// Source identifiers for well-known candidate origins.
const (
	// SourceTypo marks candidates produced by the built-in typo provider.
	SourceTypo = "typo"

	// SourceUserDictionary marks candidates sourced purely from the user's
	// personal dictionary. These are excluded from the automatic commit
	// path even when otherwise eligible.
	SourceUserDictionary = "user-dictionary"
)

// Candidate is a suggested replacement for the word being typed.
type Candidate struct {
	// Text is the replacement text, cased exactly as it should be committed.
	Text string

	// Confidence is the provider's score in [0, 1].
	Confidence float64

	// IsEligibleForAutoCommit reports whether the provider considers this
	// candidate safe to apply without explicit user selection.
	IsEligibleForAutoCommit bool

	// Source identifies the originating provider.
	Source string
}

// String returns a short description, e.g. `"updated" (0.93, typo)`.
func (c Candidate) String() string {
	return fmt.Sprintf("%q (%.2f, %s)", c.Text, c.Confidence, c.Source)
}

// Provider produces candidates for the word at the cursor and is notified
// when one of its candidates is reverted by the user.
type Provider interface {
	// AutoCommitCandidate returns the best candidate for automatic commit,
	// or nil when the provider has nothing to offer for the current word.
	AutoCommitCandidate() *Candidate

	// NotifyCandidateReverted tells the provider that a previously committed
	// candidate was undone by the user (not merely deleted). Providers use
	// this to demote the correction.
	NotifyCandidateReverted(c Candidate)
}

// WordObserver is an optional Provider upgrade. Providers that cannot watch
// the field themselves implement it to receive the word just finished, right
// before AutoCommitCandidate is queried.
type WordObserver interface {
	// Observe records the word the next AutoCommitCandidate call scores.
	Observe(word string)
}
