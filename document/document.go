package document

import (
	"fmt"

	"github.com/google/uuid"
)

// Recorder is the undo-manager hook mutations accept per §4.1: "Mutations
// accept an optional undo-manager reference; when provided, the mutation
// is recorded as an atomic reverse operation." Defined here rather than
// imported from package action to avoid a cycle — action.Transaction
// implements Recorder.
type Recorder interface {
	Record(undo func())
}

// Document is the root of the observable tree: every Track (including the
// master track), the system I/O rack, view state and the flat connection
// set. All mutation goes through its methods, which emit Bus events and,
// when a Recorder is supplied, record the exact inverse.
type Document struct {
	Tracks      []*Track
	MasterTrack *Track
	Input       *IOSection
	Output      *IOSection
	View        *View
	Connections []*Connection

	Bus *Bus

	ids        nodeIDAllocator
	nodeIndex  map[NodeID]*Processor
	trackIndex map[TrackID]*Track
}

// New creates an empty document: one master track, empty I/O sections,
// default view state.
func New() *Document {
	d := &Document{
		Input:      newIOSection(),
		Output:     newIOSection(),
		View:       newView(),
		Bus:        NewBus(),
		nodeIndex:  make(map[NodeID]*Processor),
		trackIndex: make(map[TrackID]*Track),
	}
	d.MasterTrack = newTrack(uuid.New(), "Master", true)
	d.trackIndex[d.MasterTrack.ID] = d.MasterTrack
	d.Tracks = append(d.Tracks, d.MasterTrack)
	return d
}

// AllocateNodeID hands out the next live-graph handle. Called by the
// action engine when instantiating a new Processor.
func (d *Document) AllocateNodeID() NodeID { return d.ids.allocate() }

// AdvanceNodeIDAllocator ensures every future AllocateNodeID call returns
// an id past id. Used by persistence after loading a saved document, so
// restored NodeIDs are never handed out again (invariant 2).
func (d *Document) AdvanceNodeIDAllocator(id NodeID) { d.ids.advanceTo(id) }

// TrackByID looks up a track by its uuid.
func (d *Document) TrackByID(id TrackID) (*Track, bool) {
	t, ok := d.trackIndex[id]
	return t, ok
}

// NonMasterTracks returns every track except the master track, in order.
func (d *Document) NonMasterTracks() []*Track {
	out := make([]*Track, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		if !t.IsMaster {
			out = append(out, t)
		}
	}
	return out
}

// ProcessorByNodeID finds a processor anywhere in the document: track
// lanes, track I/O processors, or the system I/O sections.
func (d *Document) ProcessorByNodeID(id NodeID) (*Processor, bool) {
	p, ok := d.nodeIndex[id]
	return p, ok
}

// AllProcessors returns every processor in the document in the
// deterministic order §4.2's UpdateAllDefaultConnections relies on:
// tracks left-to-right (master last), slots ascending, with each track's
// input processor before its lane and its output processor after.
func (d *Document) AllProcessors() []*Processor {
	var out []*Processor
	for _, t := range d.NonMasterTracks() {
		out = append(out, t.trackProcessorsInOrder()...)
	}
	out = append(out, d.MasterTrack.trackProcessorsInOrder()...)
	out = append(out, d.Input.Processors...)
	out = append(out, d.Output.Processors...)
	return out
}

func (t *Track) trackProcessorsInOrder() []*Processor {
	var out []*Processor
	if t.InputProcessor != nil {
		out = append(out, t.InputProcessor)
	}
	out = append(out, t.Lane.Processors()...)
	if t.OutputProcessor != nil {
		out = append(out, t.OutputProcessor)
	}
	return out
}

// --- Track mutations ---------------------------------------------------

// InsertTrack inserts t at index among non-master tracks (master always
// stays last in Tracks). Emits ChildAdded.
func (d *Document) InsertTrack(index int, t *Track, rec Recorder) error {
	nonMaster := d.NonMasterTracks()
	if index < 0 || index > len(nonMaster) {
		index = len(nonMaster)
	}
	// Tracks slice keeps non-master tracks first, master last.
	rebuilt := make([]*Track, 0, len(nonMaster)+2)
	rebuilt = append(rebuilt, nonMaster[:index]...)
	rebuilt = append(rebuilt, t)
	rebuilt = append(rebuilt, nonMaster[index:]...)
	rebuilt = append(rebuilt, d.MasterTrack)
	d.Tracks = rebuilt

	d.trackIndex[t.ID] = t
	if t.InputProcessor != nil {
		d.indexProcessor(t.InputProcessor)
	}
	if t.OutputProcessor != nil {
		d.indexProcessor(t.OutputProcessor)
	}
	for _, p := range t.Lane.Processors() {
		d.indexProcessor(p)
	}

	d.Bus.Emit(Event{Kind: ChildAdded, Parent: DocumentRef(), Child: TrackRef(t.ID), NewIndex: index})

	if rec != nil {
		rec.Record(func() { _ = d.RemoveTrack(t, nil) })
	}
	return nil
}

// RemoveTrack removes t. Callers (action.DeleteTrack) are responsible for
// having already removed its contained processors/connections; this only
// detaches the track node itself.
func (d *Document) RemoveTrack(t *Track, rec Recorder) error {
	index := -1
	nonMaster := d.NonMasterTracks()
	for i, tr := range nonMaster {
		if tr.ID == t.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return fmt.Errorf("%w: track %s", ErrNotFound, t.ID)
	}
	nonMaster = append(nonMaster[:index], nonMaster[index+1:]...)
	d.Tracks = append(append([]*Track{}, nonMaster...), d.MasterTrack)
	delete(d.trackIndex, t.ID)

	d.Bus.Emit(Event{Kind: ChildRemoved, Parent: DocumentRef(), Child: TrackRef(t.ID), OldIndex: index})

	if rec != nil {
		rec.Record(func() { _ = d.InsertTrack(index, t, nil) })
	}
	return nil
}

// --- Processor mutations -----------------------------------------------

func (d *Document) indexProcessor(p *Processor) { d.nodeIndex[p.NodeID] = p }
func (d *Document) unindexProcessor(p *Processor) { delete(d.nodeIndex, p.NodeID) }

// InsertProcessor places p at slot in lane. Fails if the slot is occupied
// (invariant 1).
func (d *Document) InsertProcessor(lane *ProcessorLane, p *Processor, slot int, rec Recorder) error {
	if _, occupied := lane.processors[slot]; occupied {
		return fmt.Errorf("%w: slot %d in track %s", ErrSlotOccupied, slot, lane.track.ID)
	}
	p.Slot = slot
	p.lane = lane
	lane.processors[slot] = p
	d.indexProcessor(p)

	d.Bus.Emit(Event{Kind: ChildAdded, Parent: LaneRef(lane.track.ID), Child: ProcessorRef(p.NodeID), NewIndex: slot})

	if rec != nil {
		rec.Record(func() { _ = d.RemoveProcessor(p, nil) })
	}
	return nil
}

// RemoveProcessor detaches p from its lane (or I/O section) entirely.
// Callers are responsible for having already removed its connections
// (action.DeleteProcessor composes DisconnectProcessor first).
func (d *Document) RemoveProcessor(p *Processor, rec Recorder) error {
	if p.lane == nil {
		return d.removeIOProcessor(p, rec)
	}
	lane := p.lane
	slot := p.Slot
	if _, ok := lane.processors[slot]; !ok {
		return fmt.Errorf("%w: processor %d not in its lane", ErrInvariantViolation, p.NodeID)
	}
	delete(lane.processors, slot)
	d.unindexProcessor(p)

	d.Bus.Emit(Event{Kind: ChildRemoved, Parent: LaneRef(lane.track.ID), Child: ProcessorRef(p.NodeID), OldIndex: slot})

	if rec != nil {
		rec.Record(func() {
			p.lane = lane
			_ = d.InsertProcessor(lane, p, slot, nil)
		})
	}
	return nil
}

func (d *Document) removeIOProcessor(p *Processor, rec Recorder) error {
	section := d.Input
	idx := indexOfProcessor(section.Processors, p)
	if idx == -1 {
		section = d.Output
		idx = indexOfProcessor(section.Processors, p)
	}
	if idx == -1 {
		return fmt.Errorf("%w: processor %d not in document", ErrNotFound, p.NodeID)
	}
	section.Processors = append(section.Processors[:idx], section.Processors[idx+1:]...)
	d.unindexProcessor(p)
	d.Bus.Emit(Event{Kind: ChildRemoved, Parent: IOSectionRef(), Child: ProcessorRef(p.NodeID), OldIndex: idx})
	if rec != nil {
		rec.Record(func() {
			section.Processors = append(section.Processors, p)
			d.indexProcessor(p)
		})
	}
	return nil
}

func indexOfProcessor(list []*Processor, p *Processor) int {
	for i, x := range list {
		if x == p {
			return i
		}
	}
	return -1
}

// AttachTrackIO assigns t's track-level input/output processors and
// indexes their NodeIDs. Either may be nil. Track I/O processors are not
// part of the lane's slot space; they are created once by action.CreateTrack
// and live for the track's lifetime.
func (d *Document) AttachTrackIO(t *Track, input, output *Processor) {
	if input != nil {
		t.InputProcessor = input
		d.indexProcessor(input)
	}
	if output != nil {
		t.OutputProcessor = output
		d.indexProcessor(output)
	}
}

// AddIOProcessor appends p to the Input or Output section.
func (d *Document) AddIOProcessor(toInput bool, p *Processor, rec Recorder) {
	section := d.Output
	if toInput {
		section = d.Input
	}
	section.Processors = append(section.Processors, p)
	d.indexProcessor(p)
	d.Bus.Emit(Event{Kind: ChildAdded, Parent: IOSectionRef(), Child: ProcessorRef(p.NodeID), NewIndex: len(section.Processors) - 1})
	if rec != nil {
		rec.Record(func() { _ = d.removeIOProcessor(p, nil) })
	}
}

// ReparentProcessor moves p from its current lane to toLane at toSlot,
// emitting child_reparented. Node identity (NodeID) never changes (§4.3:
// InsertProcessor "does NOT change node identity").
func (d *Document) ReparentProcessor(p *Processor, toLane *ProcessorLane, toSlot int, rec Recorder) error {
	if _, occupied := toLane.processors[toSlot]; occupied {
		return fmt.Errorf("%w: slot %d in track %s", ErrSlotOccupied, toSlot, toLane.track.ID)
	}
	fromLane := p.lane
	fromSlot := p.Slot

	if fromLane != nil {
		delete(fromLane.processors, fromSlot)
	}
	p.lane = toLane
	p.Slot = toSlot
	toLane.processors[toSlot] = p

	var oldParent Ref
	if fromLane != nil {
		oldParent = LaneRef(fromLane.track.ID)
	}
	d.Bus.Emit(Event{
		Kind:      ChildReparented,
		Child:     ProcessorRef(p.NodeID),
		OldParent: oldParent,
		NewParent: LaneRef(toLane.track.ID),
	})

	if rec != nil {
		rec.Record(func() {
			if fromLane != nil {
				_ = d.ReparentProcessor(p, fromLane, fromSlot, nil)
			}
		})
	}
	return nil
}

// SetBypassed sets p.Bypassed, emitting property_changed.
func (d *Document) SetBypassed(p *Processor, v bool, rec Recorder) {
	old := p.Bypassed
	if old == v {
		return
	}
	p.Bypassed = v
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: ProcessorRef(p.NodeID), Property: "bypassed"})
	if rec != nil {
		rec.Record(func() { d.SetBypassed(p, old, nil) })
	}
}

// SetAllowDefaultConnections sets p.AllowDefaultConnections, emitting
// property_changed; this is a recompute trigger (§4.2).
func (d *Document) SetAllowDefaultConnections(p *Processor, v bool, rec Recorder) {
	old := p.AllowDefaultConnections
	if old == v {
		return
	}
	p.AllowDefaultConnections = v
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: ProcessorRef(p.NodeID), Property: "allow_default_connections"})
	if rec != nil {
		rec.Record(func() { d.SetAllowDefaultConnections(p, old, nil) })
	}
}

// SetProcessorWindowState is a non-undoable direct mutation: window
// position is view state, not document history (restored from
// original_source/'s ProcessorEditor behavior — see SPEC_FULL.md §9).
func (d *Document) SetProcessorWindowState(p *Processor, x, y int, windowType string) {
	p.WindowX, p.WindowY, p.WindowType = x, y, windowType
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: ProcessorRef(p.NodeID), Property: "window_state"})
}

// --- Connection mutations -----------------------------------------------

// AddConnection appends c to the connection set, emitting ChildAdded
// targeted at the connection's Ref.
func (d *Document) AddConnection(c Connection, rec Recorder) {
	conn := c
	d.Connections = append(d.Connections, &conn)
	d.Bus.Emit(Event{Kind: ChildAdded, Parent: DocumentRef(), Child: ConnectionRef(conn.Key())})
	if rec != nil {
		rec.Record(func() { d.RemoveConnection(conn.Key(), nil) })
	}
}

// RemoveConnection deletes the connection matching key, if present.
func (d *Document) RemoveConnection(key ConnectionKey, rec Recorder) bool {
	for i, c := range d.Connections {
		if c.Key() == key {
			removed := *c
			d.Connections = append(d.Connections[:i], d.Connections[i+1:]...)
			d.Bus.Emit(Event{Kind: ChildRemoved, Parent: DocumentRef(), Child: ConnectionRef(key), OldIndex: i})
			if rec != nil {
				rec.Record(func() { d.AddConnection(removed, nil) })
			}
			return true
		}
	}
	return false
}

// FindConnection returns the connection matching key, if any.
func (d *Document) FindConnection(key ConnectionKey) (*Connection, bool) {
	for _, c := range d.Connections {
		if c.Key() == key {
			return c, true
		}
	}
	return nil, false
}

// ConnectionsFrom returns every connection whose source is port.
func (d *Document) ConnectionsFrom(port NodePort) []*Connection {
	var out []*Connection
	for _, c := range d.Connections {
		if c.Source == port {
			out = append(out, c)
		}
	}
	return out
}

// ConnectionsInvolving returns every connection touching node, either end.
func (d *Document) ConnectionsInvolving(node NodeID) []*Connection {
	var out []*Connection
	for _, c := range d.Connections {
		if c.Source.Node == node || c.Destination.Node == node {
			out = append(out, c)
		}
	}
	return out
}

// --- Selection / focus ---------------------------------------------------

// SetTrackSelected sets t.Selected, emitting property_changed.
func (d *Document) SetTrackSelected(t *Track, v bool, rec Recorder) {
	old := t.Selected
	if old == v {
		return
	}
	t.Selected = v
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: TrackRef(t.ID), Property: "selected"})
	if rec != nil {
		rec.Record(func() { d.SetTrackSelected(t, old, nil) })
	}
}

// SetSlotMask sets lane.SelectedSlotsMask, emitting property_changed.
// Invariant 8 (bits beyond slot count are zero) is the caller's
// responsibility to uphold before calling this.
func (d *Document) SetSlotMask(lane *ProcessorLane, mask uint64, rec Recorder) {
	old := lane.SelectedSlotsMask
	if old == mask {
		return
	}
	lane.SelectedSlotsMask = mask
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: LaneRef(lane.track.ID), Property: "selected_slots_mask"})
	if rec != nil {
		rec.Record(func() { d.SetSlotMask(lane, old, nil) })
	}
}

// SetFocus sets View.FocusedTrackIndex/FocusedProcessorSlot, emitting
// property_changed. slot of -1 means "track focused, no slot" (invariant 7).
func (d *Document) SetFocus(trackIndex, slot int, rec Recorder) {
	oldTrack, oldSlot := d.View.FocusedTrackIndex, d.View.FocusedProcessorSlot
	if oldTrack == trackIndex && oldSlot == slot {
		return
	}
	d.View.FocusedTrackIndex = trackIndex
	d.View.FocusedProcessorSlot = slot
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: ViewRef(), Property: "focus"})
	if rec != nil {
		rec.Record(func() { d.SetFocus(oldTrack, oldSlot, nil) })
	}
}

// SetViewOffsets sets the auto-scroll window offsets directly. Not
// recorded on any Recorder: scroll position is presentation state, not
// document history.
func (d *Document) SetViewOffsets(trackOffset, slotOffset, masterSlotOffset int) {
	d.View.GridViewTrackOffset = trackOffset
	d.View.GridViewSlotOffset = slotOffset
	d.View.MasterViewSlotOffset = masterSlotOffset
	d.Bus.Emit(Event{Kind: PropertyChanged, Node: ViewRef(), Property: "view_offsets"})
}
