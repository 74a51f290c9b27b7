package selection

import (
	"github.com/shaban/trackgraph/action"
	"github.com/shaban/trackgraph/document"
)

// Direction is a single-step grid move.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// MoveFocus resolves dir against the notional track/slot grid (§4.5) and
// returns the action.Action that commits the new focus and
// single-processor selection. ok is false if dir has no valid target
// (e.g. Left from the first track).
func MoveFocus(doc *document.Document, dir Direction) (act action.Action, ok bool) {
	nonMaster := doc.NonMasterTracks()
	trackIdx := doc.View.FocusedTrackIndex
	slot := doc.View.FocusedProcessorSlot
	onMaster := trackIdx >= len(nonMaster)

	switch dir {
	case Left:
		if onMaster || trackIdx <= 0 {
			return nil, false
		}
		trackIdx--
	case Right:
		if onMaster {
			return nil, false
		}
		if trackIdx >= len(nonMaster)-1 {
			return nil, false
		}
		trackIdx++
	case Up:
		if onMaster {
			return nil, false
		}
		if slot <= 0 {
			return nil, false
		}
		slot--
	case Down:
		if onMaster {
			if slot >= doc.MasterTrack.Lane.MaxSlot() {
				return nil, false
			}
			slot++
		} else {
			// Crossing from the last non-master column slot onto the
			// master row is not modeled here — only intra-column moves.
			if slot >= doc.View.NumProcessorSlots-1 {
				return nil, false
			}
			slot++
		}
	}

	if slot < 0 {
		// Track-only focus: invariant 7's "focused slot -1" state, no
		// processor selection to set.
		return action.NewFocusTrack(doc, trackIdx), true
	}
	var slots []action.SlotRef
	if !onMaster && trackIdx < len(nonMaster) {
		slots = []action.SlotRef{{Track: nonMaster[trackIdx], Slot: slot}}
	} else {
		slots = []action.SlotRef{{Track: doc.MasterTrack, Slot: slot}}
	}
	return action.NewSelect(doc, slots), true
}

// AdjustViewOffsets recomputes GridViewTrackOffset/GridViewSlotOffset so
// the focused cell stays within [offset, offset+visible) per §4.5: the
// offset snaps to make the focused index the last visible one on a
// forward move, the first on a backward move, and pulls back if fewer
// than `visible` items remain beyond the current offset.
func AdjustViewOffsets(doc *document.Document) {
	nonMaster := doc.NonMasterTracks()
	trackOffset := snapOffset(doc.View.GridViewTrackOffset, doc.View.FocusedTrackIndex, len(nonMaster), visibleTrackCount)
	slotOffset := snapOffset(doc.View.GridViewSlotOffset, doc.View.FocusedProcessorSlot, doc.View.NumProcessorSlots, visibleSlotCount)
	masterOffset := doc.View.MasterViewSlotOffset
	doc.SetViewOffsets(trackOffset, slotOffset, masterOffset)
}

// visibleTrackCount/visibleSlotCount are the grid's notional viewport
// sizes; a real UI would size these from its own layout, but the core
// only needs a stable constant to keep the offset math total.
const (
	visibleTrackCount = 8
	visibleSlotCount  = 16
)

func snapOffset(offset, focused, total, visible int) int {
	if focused < 0 || total == 0 {
		return offset
	}
	if focused < offset {
		offset = focused
	} else if focused >= offset+visible {
		offset = focused - visible + 1
	}
	if total-offset < visible {
		offset = total - visible
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
