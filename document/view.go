package document

// PaneFocus distinguishes which logical pane currently owns keyboard
// focus, used by selection.Grid to decide how arrow keys resolve.
type PaneFocus int

const (
	PaneFocusGrid PaneFocus = iota
	PaneFocusMaster
	PaneFocusIO
)

// View holds the non-undoable presentation state: focus, visible-window
// offsets and slot counts. It is a single node, not a collection.
type View struct {
	FocusedTrackIndex    int
	FocusedProcessorSlot int // -1 means "track focused, no slot" (invariant 7)

	GridViewTrackOffset int
	GridViewSlotOffset  int
	MasterViewSlotOffset int

	NumProcessorSlots       int
	NumMasterProcessorSlots int

	PaneFocus PaneFocus
}

func newView() *View {
	return &View{
		FocusedProcessorSlot:    -1,
		NumProcessorSlots:       64,
		NumMasterProcessorSlots: 64,
	}
}
