package connection

import "github.com/shaban/trackgraph/document"

// Delta is one add or remove the recompute pass wants applied. The action
// engine (action.NewUpdateAllDefaultConnections) is the only caller that
// actually mutates the document with these — this package only computes
// what should change.
type Delta struct {
	Add    *document.Connection // nil if this is a removal
	Remove document.ConnectionKey
	IsRemove bool
}

// RecomputeOptions controls the promotion policy described in §4.2's
// "Taxonomy & promotion": when a default connection would be displaced,
// MakeInvalidDefaultsIntoCustom controls whether it is re-added as custom
// (surviving future topology changes) or simply dropped.
type RecomputeOptions struct {
	MakeInvalidDefaultsIntoCustom bool
	UpdateExternalInputs          bool
}

// RecomputeDefaults derives the correct default-connection set for every
// processor in the document (deterministic order: tracks left-to-right,
// slots ascending, per §4.3) and returns the deltas needed to reconcile
// the current Connections against it. Only non-custom connections are
// ever removed or replaced; custom connections are left untouched unless
// opts promotes a specific invalidated default into a custom one.
func (e *Engine) RecomputeDefaults(opts RecomputeOptions) []Delta {
	var deltas []Delta
	wanted := make(map[document.ConnectionKey]document.Connection)
	var order []document.ConnectionKey

	for _, p := range e.Doc.AllProcessors() {
		if !p.AllowDefaultConnections {
			continue
		}
		for _, ct := range []ConnType{Audio, MIDI} {
			if !producesType(p, ct) {
				continue
			}
			// A source that already has an outgoing custom connection of
			// this type owns its own routing for it; no default is
			// derived, and the loop below tears down any stale default
			// outgoing edge of the same type since it won't appear in
			// wanted. Mirrors the original's updateDefaultConnectionsForProcessor
			// short-circuit.
			if e.hasOutgoingCustom(p.NodeID, ct) {
				continue
			}
			dst, ok := e.DeriveDefaultDestination(p, ct)
			if !ok {
				continue
			}
			for _, pair := range DefaultChannelPairs(ct) {
				c := document.Connection{
					Source:      document.NodePort{Node: p.NodeID, Channel: pair[0]},
					Destination: document.NodePort{Node: dst.NodeID, Channel: pair[1]},
					IsCustom:    false,
				}
				if _, exists := e.Doc.FindConnection(c.Key()); exists {
					// Already in place: wanted, and kept by the pass below.
					wanted[c.Key()] = c
					continue
				}
				ok, _ := e.CanConnect(c.Source, c.Destination)
				if !ok {
					// Not addable (channels or a cycle), so it is omitted.
					continue
				}
				wanted[c.Key()] = c
				order = append(order, c.Key())
			}
		}
	}

	// Remove existing non-custom connections no longer wanted.
	for _, c := range e.Doc.Connections {
		if c.IsCustom {
			continue
		}
		if _, stillWanted := wanted[c.Key()]; stillWanted {
			delete(wanted, c.Key()) // already present, no delta needed
			continue
		}
		if opts.MakeInvalidDefaultsIntoCustom {
			promoted := *c
			promoted.IsCustom = true
			deltas = append(deltas, Delta{IsRemove: true, Remove: c.Key()})
			deltas = append(deltas, Delta{Add: &promoted})
		} else {
			deltas = append(deltas, Delta{IsRemove: true, Remove: c.Key()})
		}
	}

	// Add newly-wanted defaults.
	for _, k := range order {
		if c, ok := wanted[k]; ok {
			deltas = append(deltas, Delta{Add: &c})
		}
	}

	return deltas
}

// hasOutgoingCustom reports whether node has any custom outgoing
// connection of connType, regardless of channel.
func (e *Engine) hasOutgoingCustom(node document.NodeID, connType ConnType) bool {
	for _, c := range e.Doc.Connections {
		if !c.IsCustom || c.Source.Node != node {
			continue
		}
		if c.Source.IsMIDI() != (connType == MIDI) {
			continue
		}
		return true
	}
	return false
}

// ExternalInputDefault picks the single active default path for an
// external input processor (audio-input, or one per MIDI-input device):
// the upper-right-most processor in the grid that transitively flows into
// the focused processor, evaluated per connection type over current
// Connections (§4.2 "External-input defaults").
func (e *Engine) ExternalInputDefault(connType ConnType) (*document.Processor, bool) {
	d := e.Doc
	focusedTrackIdx := d.View.FocusedTrackIndex
	focusedSlot := d.View.FocusedProcessorSlot

	nonMaster := d.NonMasterTracks()
	if focusedTrackIdx < 0 || focusedTrackIdx >= len(nonMaster) || focusedSlot < 0 {
		return nil, false
	}
	focusedTrack := nonMaster[focusedTrackIdx]
	focused, ok := focusedTrack.Lane.ProcessorAt(focusedSlot)
	if !ok {
		return nil, false
	}

	// Scan tracks right-to-left, top-to-bottom (upper-right-most first)
	// for the first processor that transitively reaches focused.
	for i := len(nonMaster) - 1; i >= 0; i-- {
		for _, p := range nonMaster[i].Lane.Processors() {
			if e.transitivelyFlowsInto(p.NodeID, focused.NodeID, connType) {
				return p, true
			}
		}
	}
	return nil, false
}

func (e *Engine) transitivelyFlowsInto(from, to document.NodeID, connType ConnType) bool {
	return e.hasPath(from, to, connType)
}
