package connection

import (
	"errors"

	"github.com/shaban/trackgraph/document"
)

// ErrInvalidConnection is returned by Engine.CanConnect and is the cause
// reported through §7's InvalidConnection error kind: bad channels, a
// cycle, or a duplicate.
var ErrInvalidConnection = errors.New("connection: invalid")

// ConnType distinguishes which adjacency graph a connection participates
// in; audio and MIDI cycles are checked independently (invariant 6: "no
// cycle ... on either audio or MIDI edges").
type ConnType int

const (
	Audio ConnType = iota
	MIDI
)

// Engine derives and validates connections against a document. It holds
// no state of its own beyond the document reference — generalizes the
// teacher's flat Connection{SourceChannel,TargetChannel} routing logic
// (channels.go, engine/channel's mixer→bus→master topology) from a fixed
// 3-tier graph to arbitrary node adjacency over an arbitrary number of
// tracks and lanes.
type Engine struct {
	Doc *document.Document
}

func New(doc *document.Document) *Engine { return &Engine{Doc: doc} }

func producesType(p *document.Processor, t ConnType) bool {
	if t == MIDI {
		return p.ProducesMIDI
	}
	return p.ProducesAudio()
}

func acceptsType(p *document.Processor, t ConnType) bool {
	if t == MIDI {
		return p.AcceptsMIDI
	}
	return p.AcceptsAudio()
}

// roleOf classifies p for the derivation algorithm (§4.2), replacing a
// subclass hierarchy with a computed predicate per SPEC_FULL.md §9.
func (e *Engine) roleOf(p *document.Processor) document.ProcessorRole {
	d := e.Doc
	for _, t := range d.Tracks {
		if t.InputProcessor == p {
			return document.RoleTrackInput
		}
		if t.OutputProcessor == p {
			return document.RoleTrackOutput
		}
	}
	for _, ip := range d.Input.Processors {
		if ip == p {
			if ip.ProducesMIDI {
				return document.RoleMIDIInput
			}
			return document.RoleSystemAudioInput
		}
	}
	for _, op := range d.Output.Processors {
		if op == p {
			if op.AcceptsMIDI {
				return document.RoleMIDIOutput
			}
			return document.RoleSystemAudioOutput
		}
	}
	return document.RoleGeneric
}

// trackOf returns the track owning p's lane, or nil if p is not lane-owned.
func (e *Engine) trackOf(p *document.Processor) *document.Track {
	if p.Lane() == nil {
		return nil
	}
	return p.Lane().Track()
}

// DeriveDefaultDestination implements §4.2's 6-step algorithm for a
// source processor S producing connType. Returns the chosen destination
// processor and true, or (nil, false) when S has no eligible destination
// (e.g. S is already the master track's output processor).
func (e *Engine) DeriveDefaultDestination(s *document.Processor, connType ConnType) (*document.Processor, bool) {
	if !producesType(s, connType) {
		return nil, false
	}
	d := e.Doc
	role := e.roleOf(s)
	track := e.trackOf(s)
	if track == nil && (role == document.RoleTrackInput || role == document.RoleTrackOutput) {
		// Track I/O processors are not lane-owned; find the track holding them.
		for _, t := range d.Tracks {
			if t.InputProcessor == s || t.OutputProcessor == s {
				track = t
				break
			}
		}
	}

	// Step 1: track-output processor routes to master's input, unless S
	// is already on the master track.
	if role == document.RoleTrackOutput {
		if track != nil && track.IsMaster {
			return nil, false
		}
		if d.MasterTrack.InputProcessor != nil {
			return d.MasterTrack.InputProcessor, true
		}
		return e.fallThroughFromTrack(track, connType)
	}

	// Step 2: track-input processor connects to the first same-lane
	// processor below it that accepts connType. The track input sits above
	// every lane slot, so the scan starts before slot 0.
	if role == document.RoleTrackInput {
		if track != nil {
			if dst, ok := firstAccepting(track.Lane.Processors(), -1, connType); ok {
				return dst, true
			}
		}
		return e.fallThroughFromTrack(track, connType)
	}

	// Step 3: generic processor — scan sibling lanes left-to-right,
	// starting at S's own lane, for the first accepting processor
	// strictly below S's slot.
	if track != nil {
		nonMaster := d.NonMasterTracks()
		startIdx := 0
		for i, t := range nonMaster {
			if t.ID == track.ID {
				startIdx = i
				break
			}
		}
		for i := startIdx; i < len(nonMaster); i++ {
			if dst, ok := firstAccepting(nonMaster[i].Lane.Processors(), s.Slot, connType); ok {
				return dst, true
			}
		}
	}
	return e.fallThroughFromTrack(track, connType)
}

// firstAccepting returns the first processor in procs (already ordered by
// slot ascending) whose slot is > afterSlot and which accepts connType.
func firstAccepting(procs []*document.Processor, afterSlot int, connType ConnType) (*document.Processor, bool) {
	for _, p := range procs {
		if p.Slot > afterSlot && acceptsType(p, connType) {
			return p, true
		}
	}
	return nil, false
}

// fallThroughFromTrack implements steps 4-6: the track's own output
// processor, then the first accepting master-track processor, then the
// system output processor.
func (e *Engine) fallThroughFromTrack(track *document.Track, connType ConnType) (*document.Processor, bool) {
	d := e.Doc

	// Step 4.
	if track != nil && !track.IsMaster && track.OutputProcessor != nil {
		return track.OutputProcessor, true
	}

	// Step 5.
	if dst, ok := firstAccepting(d.MasterTrack.Lane.Processors(), -1, connType); ok {
		return dst, true
	}

	// Step 6.
	for _, op := range d.Output.Processors {
		if acceptsType(op, connType) {
			return op, true
		}
	}
	return nil, false
}

// DefaultChannelPairs returns the (source, destination) channel pairs the
// default channel mapping produces for connType: audio maps {0,1}->{0,1}
// 1:1; MIDI is a single sentinel-channel pair.
func DefaultChannelPairs(connType ConnType) [][2]document.Channel {
	if connType == MIDI {
		return [][2]document.Channel{{document.MIDIChannel, document.MIDIChannel}}
	}
	return [][2]document.Channel{{0, 0}, {1, 1}}
}

// CanConnect validates a candidate connection per §4.2's can_connect:
// both endpoints exist and are distinct, MIDI-ness matches, channels are
// in range and the capability is advertised, no duplicate exists, and
// adding the edge would not close a cycle.
func (e *Engine) CanConnect(src, dst document.NodePort) (bool, error) {
	d := e.Doc
	if src.Node == dst.Node {
		return false, ErrInvalidConnection
	}
	srcProc, ok := d.ProcessorByNodeID(src.Node)
	if !ok {
		return false, ErrInvalidConnection
	}
	dstProc, ok := d.ProcessorByNodeID(dst.Node)
	if !ok {
		return false, ErrInvalidConnection
	}
	if src.IsMIDI() != dst.IsMIDI() {
		return false, ErrInvalidConnection
	}

	var connType ConnType
	if src.IsMIDI() {
		connType = MIDI
		if !srcProc.ProducesMIDI || !dstProc.AcceptsMIDI {
			return false, ErrInvalidConnection
		}
	} else {
		connType = Audio
		if int(src.Channel) < 0 || int(src.Channel) >= srcProc.NumOutputChannels {
			return false, ErrInvalidConnection
		}
		if int(dst.Channel) < 0 || int(dst.Channel) >= dstProc.NumInputChannels {
			return false, ErrInvalidConnection
		}
	}

	if _, exists := d.FindConnection(document.ConnectionKey{Source: src, Destination: dst}); exists {
		return false, ErrInvalidConnection
	}

	if e.hasPath(dst.Node, src.Node, connType) {
		return false, ErrInvalidConnection
	}
	return true, nil
}

// hasPath runs a depth-first search from start over connType's adjacency,
// reporting whether target is reachable (invariant 6's cycle check).
func (e *Engine) hasPath(start, target document.NodeID, connType ConnType) bool {
	visited := make(map[document.NodeID]bool)
	var visit func(document.NodeID) bool
	visit = func(n document.NodeID) bool {
		if n == target {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, c := range e.Doc.Connections {
			if c.Source.Node != n {
				continue
			}
			if c.Source.IsMIDI() != (connType == MIDI) {
				continue
			}
			if visit(c.Destination.Node) {
				return true
			}
		}
		return false
	}
	return visit(start)
}
