// Package key defines the key event model for the virtual keyboard surface.
//
// A Key identifies which key was touched; an Event carries the key, the
// character it produces (for KeyRune), and the event phase. The keyboard
// manager consumes Events and never sees raw platform input directly.
package key
