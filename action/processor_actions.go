package action

import (
	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
)

// NewDisconnectProcessor builds the primitive that removes every connection
// touching node, audio and MIDI, recording each removal separately so undo
// restores them individually (§4.3: delete_processor "first disconnects
// every edge touching it").
func NewDisconnectProcessor(doc *document.Document, node document.NodeID) Action {
	return NewPrimitive("disconnect_processor", func(tx *Transaction) error {
		for _, c := range doc.ConnectionsInvolving(node) {
			doc.RemoveConnection(c.Key(), tx)
		}
		return nil
	})
}

// NewCreateProcessor builds the action that inserts p into lane at slot,
// then (when conn is non-nil) recomputes default connections so the new
// processor picks up its derived destination per §4.2. With a nil conn
// only the insert is performed.
func NewCreateProcessor(doc *document.Document, lane *document.ProcessorLane, p *document.Processor, slot int, conn *connection.Engine) Action {
	insert := NewPrimitive("create_processor", func(tx *Transaction) error {
		return doc.InsertProcessor(lane, p, slot, tx)
	})
	if conn == nil {
		return insert
	}
	return NewComposite("create_processor_with_defaults", insert, NewUpdateAllDefaultConnections(doc, conn))
}

// NewDeleteProcessor builds the composite §4.3 describes for delete_processor:
// disconnect every edge touching the node, then remove the node itself.
func NewDeleteProcessor(doc *document.Document, p *document.Processor) Action {
	return NewComposite("delete_processor",
		NewDisconnectProcessor(doc, p.NodeID),
		NewPrimitive("remove_processor", func(tx *Transaction) error {
			return doc.RemoveProcessor(p, tx)
		}),
	)
}

// NewSetBypassed builds the undoable bypass toggle.
func NewSetBypassed(doc *document.Document, p *document.Processor, v bool) Action {
	return NewPrimitive("set_bypassed", func(tx *Transaction) error {
		doc.SetBypassed(p, v, tx)
		return nil
	})
}

// NewSetAllowDefaultConnections builds the undoable toggle, composed with a
// default-connection recompute since flipping this flag is a recompute
// trigger (§4.2).
func NewSetAllowDefaultConnections(doc *document.Document, p *document.Processor, v bool, conn *connection.Engine) Action {
	toggle := NewPrimitive("set_allow_default_connections", func(tx *Transaction) error {
		doc.SetAllowDefaultConnections(p, v, tx)
		return nil
	})
	return NewComposite("set_allow_default_connections_and_recompute", toggle, NewUpdateAllDefaultConnections(doc, conn))
}
