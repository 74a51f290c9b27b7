// Package wrapper binds a document.Processor to its live audio-graph
// node: creating the plugin instance through a ports.PluginManager,
// registering the resulting node pointer with a graph.Coordinator, and
// keeping parameter values flowing in both directions.
//
// Generalizes the teacher's avaudio/unit.Effect (CreateEffect/SetParameter/
// GetParameter) from a single hardcoded channel-strip slot to an arbitrary
// document Processor, and plays the role the teacher's per-channel-type
// BaseChannel embedding used to play before the channel-strip hierarchy
// was replaced by the tracks/lanes/slots model.
package wrapper
