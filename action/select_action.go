package action

import "github.com/shaban/trackgraph/document"

// SlotRef names one processor slot within a track's lane, used to build
// selection masks across multiple tracks at once.
type SlotRef struct {
	Track *document.Track
	Slot  int
}

// NewSelect builds the action for select: sets exactly the given slots
// selected (clearing every other track's slot mask and whole-track
// selection) and focuses the last entry named, matching a
// single-click-or-ctrl-click selection gesture. A SlotRef with Slot == -1
// selects the whole track instead of a single processor slot, the same
// sentinel the original uses for its track-selection bitmask.
func NewSelect(doc *document.Document, slots []SlotRef) Action {
	return NewPrimitive("select", func(tx *Transaction) error {
		byTrack := make(map[*document.Track]uint64)
		wholeTrack := make(map[*document.Track]bool)
		for _, s := range slots {
			if s.Slot == -1 {
				wholeTrack[s.Track] = true
				continue
			}
			byTrack[s.Track] |= 1 << uint(s.Slot)
		}
		for t, mask := range byTrack {
			doc.SetSlotMask(t.Lane, mask, tx)
		}
		for _, t := range doc.Tracks {
			if t.Selected != wholeTrack[t] {
				doc.SetTrackSelected(t, wholeTrack[t], tx)
			}
			if _, hasSlots := byTrack[t]; hasSlots {
				continue
			}
			if t.Lane.SelectedSlotsMask != 0 {
				doc.SetSlotMask(t.Lane, 0, tx)
			}
		}
		if len(slots) > 0 {
			last := slots[len(slots)-1]
			trackIdx := indexOfTrack(doc, last.Track)
			doc.SetFocus(trackIdx, last.Slot, tx)
		}
		return nil
	})
}

// NewSelectRectangle builds the action for §9's supplemented
// select_rectangle gesture: every slot in [minSlot, maxSlot] across every
// track in [minTrackIdx, maxTrackIdx], expressed as a composed Select so
// it reuses Select's undo semantics rather than duplicating them. A
// minSlot of -1 means the rectangle started in the track-header column
// (dragging across track names, not processor slots): every track in
// range is selected as a whole, the same -1 sentinel NewSelect uses.
func NewSelectRectangle(doc *document.Document, minTrackIdx, maxTrackIdx, minSlot, maxSlot int) Action {
	return NewPrimitive("select_rectangle", func(tx *Transaction) error {
		nonMaster := doc.NonMasterTracks()
		if minTrackIdx < 0 {
			minTrackIdx = 0
		}
		if maxTrackIdx >= len(nonMaster) {
			maxTrackIdx = len(nonMaster) - 1
		}
		var slots []SlotRef
		if minSlot == -1 {
			for i := minTrackIdx; i <= maxTrackIdx; i++ {
				slots = append(slots, SlotRef{Track: nonMaster[i], Slot: -1})
			}
		} else {
			for i := minTrackIdx; i <= maxTrackIdx; i++ {
				for s := minSlot; s <= maxSlot; s++ {
					slots = append(slots, SlotRef{Track: nonMaster[i], Slot: s})
				}
			}
		}
		inner := NewSelect(doc, slots)
		if err := inner.Perform(); err != nil {
			return err
		}
		tx.Record(func() { inner.Undo() })
		return nil
	})
}

// NewFocusTrack builds the action for focusing a track with no processor
// selection (invariant 7's focused-slot -1 state): clears every lane's
// selection mask and sets focus to (trackIndex, -1).
func NewFocusTrack(doc *document.Document, trackIndex int) Action {
	return NewPrimitive("focus_track", func(tx *Transaction) error {
		for _, t := range doc.Tracks {
			if t.Lane.SelectedSlotsMask != 0 {
				doc.SetSlotMask(t.Lane, 0, tx)
			}
		}
		doc.SetFocus(trackIndex, -1, tx)
		return nil
	})
}

func indexOfTrack(doc *document.Document, t *document.Track) int {
	for i, tr := range doc.NonMasterTracks() {
		if tr == t {
			return i
		}
	}
	return -1
}
