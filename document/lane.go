package document

import "sort"

// ProcessorLane is an ordered, slot-indexed sequence of processors inside
// a track. Slots are sparse: gaps are permitted, but every occupied slot
// is unique (invariant 1).
type ProcessorLane struct {
	SelectedSlotsMask uint64

	track      *Track
	processors map[int]*Processor
}

func newLane(track *Track) *ProcessorLane {
	return &ProcessorLane{track: track, processors: make(map[int]*Processor)}
}

// Track returns the owning track.
func (l *ProcessorLane) Track() *Track { return l.track }

// ProcessorAt returns the processor at slot, if any.
func (l *ProcessorLane) ProcessorAt(slot int) (*Processor, bool) {
	p, ok := l.processors[slot]
	return p, ok
}

// Processors returns every processor in the lane ordered by slot
// ascending (invariant 1).
func (l *ProcessorLane) Processors() []*Processor {
	slots := make([]int, 0, len(l.processors))
	for s := range l.processors {
		slots = append(slots, s)
	}
	sort.Ints(slots)
	out := make([]*Processor, len(slots))
	for i, s := range slots {
		out[i] = l.processors[s]
	}
	return out
}

// Len returns the number of occupied slots.
func (l *ProcessorLane) Len() int { return len(l.processors) }

// MaxSlot returns the highest occupied slot, or -1 if the lane is empty.
func (l *ProcessorLane) MaxSlot() int {
	max := -1
	for s := range l.processors {
		if s > max {
			max = s
		}
	}
	return max
}

// Below returns the processors strictly below slot (higher slot numbers),
// ordered ascending — the same sense of "below" as the default-destination
// derivation algorithm (§4.2 step 2/3).
func (l *ProcessorLane) Below(slot int) []*Processor {
	var out []*Processor
	for _, p := range l.Processors() {
		if p.Slot > slot {
			out = append(out, p)
		}
	}
	return out
}

// SelectedSlots returns every slot index currently marked in the bitmask.
func (l *ProcessorLane) SelectedSlots() []int {
	var out []int
	for i := 0; i < 64; i++ {
		if l.SelectedSlotsMask&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// IsSlotSelected reports whether slot's bit is set.
func (l *ProcessorLane) IsSlotSelected(slot int) bool {
	if slot < 0 || slot >= 64 {
		return false
	}
	return l.SelectedSlotsMask&(1<<uint(slot)) != 0
}
