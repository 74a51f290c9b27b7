// Package action implements the action/undo engine (§4.3): every
// user-observable document change is an Action with Perform/Undo,
// composable into ordered composites, with an UndoManager owning the
// commit history.
//
// Generalizes the teacher's DispatcherOperation/DispatcherResult
// request-response pattern (dispatcher.go) from a fixed enum of topology
// operations into a generic reversible-unit interface. Where the teacher
// serialized mutations through a channel-based dispatch loop, actions run
// synchronously on the document's owning goroutine — undo/redo must be
// immediate, not queued (§5).
package action
