package action

import (
	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
)

// CopiedProcessor is one entry of a copy buffer: the source processor's
// shape (not its live node, which duplicate/paste never shares) and its
// slot/track offsets relative to the buffer's anchor.
type CopiedProcessor struct {
	TrackOffset int
	SlotOffset  int
	Build       func(doc *document.Document) *document.Processor
}

// NewInsert builds the action for §4.3's Insert(duplicate, copied_state,
// to_trackslot): recreates the buffered processors at to plus each one's
// offset, shifting indices to avoid collisions (duplicate) or making room
// for them (paste), then recomputes default connections. Uses the same
// temporary-perform protocol as MoveSelectedItems to discover the
// resulting connection layout before returning the committed composite.
func NewInsert(doc *document.Document, conn *connection.Engine, buffer []CopiedProcessor, to TrackSlot, isDuplicate bool) (Action, error) {
	nonMaster := doc.NonMasterTracks()
	var children []Action
	var newSlots []SlotRef

	for _, cp := range buffer {
		trackIdx := to.TrackIndex + cp.TrackOffset
		if trackIdx < 0 || trackIdx >= len(nonMaster) {
			continue
		}
		track := nonMaster[trackIdx]
		slot := to.Slot + cp.SlotOffset
		if isDuplicate {
			slot = firstFreeSlotAtOrAfter(track.Lane, slot)
		} else {
			children = append(children, shiftSlotsFrom(doc, track.Lane, slot)...)
		}
		build := cp.Build
		targetLane := track.Lane
		targetSlot := slot
		children = append(children, NewPrimitive("insert_copied_processor", func(tx *Transaction) error {
			p := build(doc)
			return doc.InsertProcessor(targetLane, p, targetSlot, tx)
		}))
		newSlots = append(newSlots, SlotRef{Track: track, Slot: slot})
	}

	performed := make([]Action, 0, len(children))
	for _, c := range children {
		if err := c.Perform(); err != nil {
			for i := len(performed) - 1; i >= 0; i-- {
				performed[i].Undo()
			}
			return nil, err
		}
		performed = append(performed, c)
	}
	recompute := NewUpdateAllDefaultConnections(doc, conn)
	if err := recompute.Perform(); err != nil {
		for i := len(performed) - 1; i >= 0; i-- {
			performed[i].Undo()
		}
		return nil, err
	}
	recompute.Undo()
	for i := len(performed) - 1; i >= 0; i-- {
		performed[i].Undo()
	}

	all := append(append([]Action{}, children...), NewSelect(doc, newSlots), recompute)
	return NewComposite("insert", all...), nil
}

// firstFreeSlotAtOrAfter walks forward from slot until it finds an
// unoccupied one, shifting a duplicate's landing spot past collisions
// rather than displacing existing processors.
func firstFreeSlotAtOrAfter(lane *document.ProcessorLane, slot int) int {
	for {
		if _, occupied := lane.ProcessorAt(slot); !occupied {
			return slot
		}
		slot++
	}
}

// shiftSlotsFrom builds one reparent action per processor at or after
// slot, moving each down by one to make room for a pasted processor
// landing at slot. Processors are shifted highest-slot-first so no
// intermediate state collides.
func shiftSlotsFrom(doc *document.Document, lane *document.ProcessorLane, slot int) []Action {
	procs := lane.Processors()
	var shifts []Action
	for i := len(procs) - 1; i >= 0; i-- {
		p := procs[i]
		if p.Slot < slot {
			continue
		}
		proc := p
		newSlot := proc.Slot + 1
		shifts = append(shifts, NewPrimitive("shift_processor_for_paste", func(tx *Transaction) error {
			return doc.ReparentProcessor(proc, lane, newSlot, tx)
		}))
	}
	return shifts
}
