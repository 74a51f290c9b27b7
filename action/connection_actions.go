package action

import (
	"fmt"

	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
)

// NewCreateConnection validates src->dst with conn.CanConnect and, if
// valid, adds it as a custom connection (manual connections are always
// custom — only the recompute pass produces non-custom ones, §4.2).
func NewCreateConnection(doc *document.Document, conn *connection.Engine, src, dst document.NodePort) Action {
	return NewPrimitive("create_connection", func(tx *Transaction) error {
		ok, err := conn.CanConnect(src, dst)
		if !ok {
			return fmt.Errorf("%w", err)
		}
		doc.AddConnection(document.Connection{Source: src, Destination: dst, IsCustom: true}, tx)
		return nil
	})
}

// NewDeleteConnection removes the connection identified by key, if present.
func NewDeleteConnection(doc *document.Document, key document.ConnectionKey) Action {
	return NewPrimitive("delete_connection", func(tx *Transaction) error {
		if !doc.RemoveConnection(key, tx) {
			return fmt.Errorf("%w: connection %v", document.ErrNotFound, key)
		}
		return nil
	})
}

// NewCreateOrDeleteConnections applies a batch of connection.Delta values
// (as produced by connection.Engine.RecomputeDefaults) as one undoable
// unit: every add/remove in the batch undoes together.
func NewCreateOrDeleteConnections(doc *document.Document, deltas []connection.Delta) Action {
	return NewPrimitive("create_or_delete_connections", func(tx *Transaction) error {
		for _, d := range deltas {
			if d.IsRemove {
				doc.RemoveConnection(d.Remove, tx)
			} else if d.Add != nil {
				doc.AddConnection(*d.Add, tx)
			}
		}
		return nil
	})
}

// NewUpdateAllDefaultConnections recomputes every processor's derived
// destination and applies the resulting deltas as one undoable action.
// Invalid defaults are dropped, not promoted to custom, matching the
// ordinary (non-drag) recompute path (§4.2).
func NewUpdateAllDefaultConnections(doc *document.Document, conn *connection.Engine) Action {
	return NewUpdateAllDefaultConnectionsWithOptions(doc, conn, false)
}

// NewUpdateAllDefaultConnectionsWithOptions is NewUpdateAllDefaultConnections
// with explicit control over the invalidated-default promotion policy
// (§4.2's MakeInvalidDefaultsIntoCustom), as MoveSelectedItems needs.
func NewUpdateAllDefaultConnectionsWithOptions(doc *document.Document, conn *connection.Engine, makeInvalidDefaultsIntoCustom bool) Action {
	return NewPrimitive("update_all_default_connections", func(tx *Transaction) error {
		deltas := conn.RecomputeDefaults(connection.RecomputeOptions{MakeInvalidDefaultsIntoCustom: makeInvalidDefaultsIntoCustom})
		for _, d := range deltas {
			if d.IsRemove {
				doc.RemoveConnection(d.Remove, tx)
			} else if d.Add != nil {
				doc.AddConnection(*d.Add, tx)
			}
		}
		return nil
	})
}
