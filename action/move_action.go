package action

import (
	"fmt"

	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
)

// TrackSlot names a (track index among non-master tracks, slot) cell in
// the grid, the coordinate system drag gestures operate in.
type TrackSlot struct {
	TrackIndex int
	Slot       int
}

// selectedGroup is one originating track's contiguous span of selected
// slots, used by the delta-clipping phases.
type selectedGroup struct {
	trackIndex int
	track      *document.Track
	firstSlot  int
	lastSlot   int
}

func collectSelectedGroups(doc *document.Document) []selectedGroup {
	var groups []selectedGroup
	for i, t := range doc.NonMasterTracks() {
		slots := t.Lane.SelectedSlots()
		if len(slots) == 0 {
			continue
		}
		groups = append(groups, selectedGroup{
			trackIndex: i,
			track:      t,
			firstSlot:  slots[0],
			lastSlot:   slots[len(slots)-1],
		})
	}
	return groups
}

// clipMoveDelta implements §4.3's three-phase move-delta limiting. It
// returns the clipped (dx, dy), or an error if the move is disallowed
// outright by the edge-case phase.
func clipMoveDelta(doc *document.Document, from, to TrackSlot, groups []selectedGroup) (int, int, error) {
	if len(groups) == 0 {
		return 0, 0, nil
	}
	nonMaster := doc.NonMasterTracks()

	masterSelected := doc.MasterTrack.Lane.SelectedSlotsMask != 0
	if masterSelected && len(groups) > 0 {
		return 0, 0, fmt.Errorf("action: move spans master and non-master tracks")
	}

	dx := to.TrackIndex - from.TrackIndex
	dy := to.Slot - from.Slot

	firstTrack, lastTrack := groups[0].trackIndex, groups[0].trackIndex
	for _, g := range groups {
		if g.trackIndex < firstTrack {
			firstTrack = g.trackIndex
		}
		if g.trackIndex > lastTrack {
			lastTrack = g.trackIndex
		}
	}
	maxTrackIdx := len(nonMaster) - 1

	// Phase 1b: a multi-track selection can't land in the master track's
	// single lane, so dragging it past the last non-master track is
	// reinterpreted as dragging past the vertical limit instead: the
	// horizontal overshoot folds into dy and dx pins at the boundary
	// (coordinates flip for master).
	if len(groups) > 1 && lastTrack+dx > maxTrackIdx {
		dy += lastTrack + dx - maxTrackIdx
		dx = maxTrackIdx - lastTrack
	}

	// Phase 2: limit dx so neither the first nor last selected track
	// leaves [0, num_non_master-1].
	if firstTrack+dx < 0 {
		dx = -firstTrack
	}
	if lastTrack+dx > maxTrackIdx {
		dx = maxTrackIdx - lastTrack
	}

	// Phase 2: limit dy per-track so every group's post-move span fits
	// within [0, max_slot_for_target_track].
	for _, g := range groups {
		targetIdx := g.trackIndex + dx
		if targetIdx < 0 || targetIdx >= len(nonMaster) {
			continue
		}
		maxSlot := nonMaster[targetIdx].Lane.MaxSlot()
		if maxSlot < 63 {
			maxSlot = 63 // an empty/sparse lane still has 64 addressable slots
		}
		if g.firstSlot+dy < 0 {
			dy = -g.firstSlot
		}
		if g.lastSlot+dy > maxSlot {
			dy = maxSlot - g.lastSlot
		}
	}

	// Phase 3: expand dy just enough that each group lands strictly below
	// the nearest non-selected processor, never exceeding the original dy.
	origDy := to.Slot - from.Slot
	for _, g := range groups {
		targetIdx := g.trackIndex + dx
		if targetIdx < 0 || targetIdx >= len(nonMaster) {
			continue
		}
		lane := nonMaster[targetIdx].Lane
		for _, p := range lane.Processors() {
			if lane.IsSlotSelected(p.Slot) {
				continue
			}
			if p.Slot >= g.firstSlot && p.Slot < g.firstSlot+dy {
				candidate := p.Slot + 1 - g.firstSlot
				if candidate > dy && candidate <= origDy {
					dy = candidate
				}
			}
		}
	}

	return dx, dy, nil
}

// NewMoveSelectedItems builds the action for a drag-drop move gesture: it
// clips the requested delta, performs the move via InsertProcessor/
// ReparentProcessor, re-selects the moved items, and recomputes default
// connections — using the temporary-perform protocol to observe the
// resulting layout before returning the final composite.
func NewMoveSelectedItems(doc *document.Document, conn *connection.Engine, from, to TrackSlot, makeInvalidDefaultsIntoCustom bool) (Action, error) {
	groups := collectSelectedGroups(doc)
	dx, dy, err := clipMoveDelta(doc, from, to, groups)
	if err != nil {
		return nil, err
	}
	if dx == 0 && dy == 0 {
		return NewComposite("move_selected_items_noop"), nil
	}

	nonMaster := doc.NonMasterTracks()
	var children []Action
	var newSlots []SlotRef

	for _, g := range groups {
		targetIdx := g.trackIndex + dx
		if targetIdx < 0 || targetIdx >= len(nonMaster) {
			continue
		}
		targetTrack := nonMaster[targetIdx]
		for _, p := range g.track.Lane.Processors() {
			if !g.track.Lane.IsSlotSelected(p.Slot) {
				continue
			}
			proc := p
			newSlot := proc.Slot + dy
			children = append(children, NewPrimitive("reparent_processor", func(tx *Transaction) error {
				return doc.ReparentProcessor(proc, targetTrack.Lane, newSlot, tx)
			}))
			newSlots = append(newSlots, SlotRef{Track: targetTrack, Slot: newSlot})
		}
	}

	// Temporary-perform: run the reparents now so the subsequent default-
	// connection recompute observes the post-move topology, then undo
	// them before returning — the composite performs them fresh when the
	// undo manager actually commits it.
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
	recompute := NewUpdateAllDefaultConnectionsWithOptions(doc, conn, makeInvalidDefaultsIntoCustom)
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
	return NewComposite("move_selected_items", all...), nil
}
