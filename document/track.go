package document

// Track is a vertical container of processors. Exactly one non-master
// lane is owned per current design (§3); the master track's lane renders
// horizontally but is the same model.
type Track struct {
	ID       TrackID
	Name     string
	Colour   string
	IsMaster bool
	Selected bool

	Lane *ProcessorLane

	// InputProcessor / OutputProcessor are the track-level I/O processors
	// the connection engine's default-destination algorithm treats
	// specially (RoleTrackInput / RoleTrackOutput).
	InputProcessor  *Processor
	OutputProcessor *Processor
}

func newTrack(id TrackID, name string, isMaster bool) *Track {
	t := &Track{ID: id, Name: name, IsMaster: isMaster}
	t.Lane = newLane(t)
	return t
}

// NewTrack constructs a detached, freshly-laned Track. Callers attach it
// to a Document via Document.InsertTrack; this is also the constructor
// action.CreateTrack uses to build the node before inserting it.
func NewTrack(id TrackID, name string, isMaster bool) *Track {
	return newTrack(id, name, isMaster)
}

// BuiltinBalanceProcessorID marks a track's auto-inserted pan/balance
// stage, restored from original_source/Source/processors/BalanceProcessor.h
// (see SPEC_FULL.md §9). CreateTrack inserts the balance processor it is
// given at slot 0 of the new track's lane; given none, the lane starts empty.
const BuiltinBalanceProcessorID = "builtin.balance"

// IOSection holds the system-facing rack of audio/MIDI device processors
// (§3's Input / Output entities): zero or more Processors, each carrying
// a DeviceName identifying the backing hardware or named MIDI device.
type IOSection struct {
	Processors []*Processor
}

func newIOSection() *IOSection { return &IOSection{} }

// ProcessorByNodeID scans the section for a processor with the given id.
func (s *IOSection) ProcessorByNodeID(id NodeID) (*Processor, bool) {
	for _, p := range s.Processors {
		if p.NodeID == id {
			return p, true
		}
	}
	return nil, false
}
