// Package remote serves the host channel over a websocket, so a text field
// in another process (a browser textarea, a companion app) can act as the
// focused editor. Edits travel field-ward as JSON frames; the field echoes
// content updates back, which the bridge publishes to the update hub. The
// network round trip is the delayed-echo protocol made literal.
package remote
