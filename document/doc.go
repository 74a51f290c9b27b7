// Package document holds the observable document tree: tracks, processor
// lanes, processors, parameters, the I/O rack, view state and connections.
// It mirrors the shape of shaban/macaudio's flat Channel/Connection model
// but generalizes it to a slot-ordered, per-track lane hierarchy with a
// typed event bus instead of ad hoc callback fields.
//
// Nothing in this package talks to the live audio graph; it only tracks
// the document's shape and notifies listeners when it changes. The graph
// package mirrors these events into a running engine.
package document
