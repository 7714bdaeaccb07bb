// Package host carries the update side of the host channel: the hub that
// fans content updates out to subscribers, and MemoryField, the reference
// text field used by tests and the playground.
//
// The editor issues edits through editor.Connection and never waits for
// them; hosts answer by publishing Updates here. An update may arrive zero,
// one, or (on coalescing or duplicating hosts) several times per edit, at
// any time. MemoryField's echo modes reproduce each of those schedules
// deterministically.
package host
