package action

import (
	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
)

// SetProcessorWindowState applies a window move/resize directly, bypassing
// the undo manager entirely: window placement is view state, not document
// history (document.Document.SetProcessorWindowState is itself
// non-undoable, per SPEC_FULL.md §9).
func SetProcessorWindowState(doc *document.Document, p *document.Processor, x, y int, windowType string) {
	doc.SetProcessorWindowState(p, x, y, windowType)
}

// NewAddMixerChannel builds the composite §9 restores from the teacher's
// channel-strip-creation flow: create a track, then move focus to the new
// track itself (slot -1) so the caller lands focused on it. No processor
// slot is selected.
func NewAddMixerChannel(doc *document.Document, index int, name string, factory TrackFactory, balance *document.Processor) Action {
	create := NewCreateTrack(doc, index, name, factory, balance)
	focusNew := NewPrimitive("focus_new_track", func(tx *Transaction) error {
		nonMaster := doc.NonMasterTracks()
		if index < 0 || index >= len(nonMaster) {
			index = len(nonMaster) - 1
		}
		if index < 0 {
			return nil
		}
		doc.SetFocus(index, -1, tx)
		return nil
	})
	return NewComposite("add_mixer_channel", create, focusNew)
}

// NewDisconnectAll builds the command-surface "disconnect all" action:
// remove every connection touching any processor in nodes, custom and
// default alike.
func NewDisconnectAll(doc *document.Document, nodes []document.NodeID) Action {
	return NewPrimitive("disconnect_all", func(tx *Transaction) error {
		for _, n := range nodes {
			for _, c := range doc.ConnectionsInvolving(n) {
				doc.RemoveConnection(c.Key(), tx)
			}
		}
		return nil
	})
}

// NewDisconnectCustom builds the command-surface "disconnect custom"
// action: remove only the custom connections touching nodes, then
// recompute defaults so the freed endpoints pick up their derived routing.
func NewDisconnectCustom(doc *document.Document, conn *connection.Engine, nodes []document.NodeID) Action {
	remove := NewPrimitive("disconnect_custom", func(tx *Transaction) error {
		for _, n := range nodes {
			for _, c := range doc.ConnectionsInvolving(n) {
				if c.IsCustom {
					doc.RemoveConnection(c.Key(), tx)
				}
			}
		}
		return nil
	})
	return NewComposite("disconnect_custom_and_recompute", remove, NewUpdateAllDefaultConnections(doc, conn))
}
