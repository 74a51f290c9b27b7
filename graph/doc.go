// Package graph implements the Graph Coordinator (§4.4): it observes
// document.Document's Bus and mirrors Processor/Connection changes into
// the live audio graph through engine/queue.Dispatcher's single-writer
// handoff, owns the pause/resume batching used during interactive drags,
// the drag state machine, and the adaptive parameter-flush timer.
//
// Node instantiation itself (the plugin manager's Create/Destroy) is a
// ports.PluginManager concern; the Coordinator only owns topology
// (Attach/Connect/DisconnectNodeInput) and parameter value delivery.
package graph
