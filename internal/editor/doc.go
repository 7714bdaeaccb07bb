// Package editor maintains the authoritative model of a focused host text
// field: its selection, composing region, and the pending auto-space and
// phantom-space formatting that must survive the host's delayed edit echo.
//
// The Instance is the orchestrator. It owns the three state machines
// (AutoSpaceState, PhantomSpaceState, MassSelection), issues primitive
// edits over a Connection, and reconciles the snapshots the host echoes
// back. All mutation is expected from one dispatch goroutine; the state
// machines are atomic because echo callbacks race in from elsewhere.
package editor
