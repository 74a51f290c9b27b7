package graph

import (
	"github.com/shaban/trackgraph/action"
	"github.com/shaban/trackgraph/document"
)

// dragPhase is the drag state machine's current state (§4.4).
type dragPhase int

const (
	dragIdle dragPhase = iota
	dragDraggingProcessor
)

type dragState struct {
	phase        dragPhase
	nodeID       document.NodeID
	initial      action.TrackSlot
	current      action.TrackSlot
	snapshot     []document.Connection
	makeCustom   bool
}

// BeginDrag transitions Idle->DraggingProcessor, snapshotting the current
// connection set so Update/EndDrag can restore it.
func (c *Coordinator) BeginDrag(nodeID document.NodeID, start action.TrackSlot, makeInvalidDefaultsIntoCustom bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := make([]document.Connection, len(c.Doc.Connections))
	for i, conn := range c.Doc.Connections {
		snap[i] = *conn
	}
	c.drag = dragState{
		phase:      dragDraggingProcessor,
		nodeID:     nodeID,
		initial:    start,
		current:    start,
		snapshot:   snap,
		makeCustom: makeInvalidDefaultsIntoCustom,
	}
}

// UpdateDrag moves the dragged processor to newSlot provisionally: if it
// equals the initial position, the original connection snapshot is
// restored; otherwise a provisional move is performed directly against
// the document, with no undo-manager recording (§4.4).
func (c *Coordinator) UpdateDrag(newSlot action.TrackSlot) error {
	c.mu.Lock()
	st := c.drag
	c.mu.Unlock()
	if st.phase != dragDraggingProcessor {
		return nil
	}

	if newSlot == st.initial {
		c.restoreSnapshot(st.snapshot)
		c.mu.Lock()
		c.drag.current = newSlot
		c.mu.Unlock()
		return nil
	}

	mv, err := action.NewMoveSelectedItems(c.Doc, c.Conn, st.current, newSlot, st.makeCustom)
	if err != nil {
		return err
	}
	if err := mv.Perform(); err != nil {
		return err
	}
	c.mu.Lock()
	c.drag.current = newSlot
	c.mu.Unlock()
	return nil
}

// EndDrag commits the final move: it first undoes every provisional move's
// side effects — moving the dragged processor back to its pre-drag slot,
// then restoring the original connection snapshot — and only then
// re-applies the net move from initial to current as a single undoable
// MoveSelectedItems action via mgr. Without the slot revert, the final
// move's delta would be computed against a document already sitting at
// st.current, displacing the processor a second time by the same amount.
func (c *Coordinator) EndDrag(mgr *action.UndoManager) error {
	c.mu.Lock()
	st := c.drag
	c.drag = dragState{}
	c.mu.Unlock()
	if st.phase != dragDraggingProcessor {
		return nil
	}

	c.restoreNodeSlot(st.nodeID, st.initial)
	c.restoreSnapshot(st.snapshot)

	if st.current == st.initial {
		return nil
	}
	mv, err := action.NewMoveSelectedItems(c.Doc, c.Conn, st.initial, st.current, st.makeCustom)
	if err != nil {
		return err
	}
	return mgr.Do(mv)
}

// restoreNodeSlot moves node back to slot's (track, slot) cell directly,
// without any undo recording, unwinding the physical relocation performed
// by UpdateDrag's provisional moves.
func (c *Coordinator) restoreNodeSlot(node document.NodeID, slot action.TrackSlot) {
	p, ok := c.Doc.ProcessorByNodeID(node)
	if !ok {
		return
	}
	nonMaster := c.Doc.NonMasterTracks()
	if slot.TrackIndex < 0 || slot.TrackIndex >= len(nonMaster) {
		return
	}
	if p.Lane() == nonMaster[slot.TrackIndex].Lane && p.Slot == slot.Slot {
		return
	}
	c.Doc.ReparentProcessor(p, nonMaster[slot.TrackIndex].Lane, slot.Slot, nil)
}

// restoreSnapshot replaces the live connection set with snap, without any
// undo recording — it is only ever used to unwind non-undoable
// provisional drag state.
func (c *Coordinator) restoreSnapshot(snap []document.Connection) {
	current := append([]*document.Connection{}, c.Doc.Connections...)
	for _, conn := range current {
		c.Doc.RemoveConnection(conn.Key(), nil)
	}
	for _, conn := range snap {
		c.Doc.AddConnection(conn, nil)
	}
}
