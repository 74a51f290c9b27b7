package action

import (
	"github.com/google/uuid"

	"github.com/shaban/trackgraph/document"
)

// TrackFactory builds the track-level input/output processors for a new
// track. The action package has no opinion on plugin instantiation (§6
// delegates that to the plugin manager), so callers supply it.
type TrackFactory func(doc *document.Document) (input, output *document.Processor)

// NewCreateTrack builds the action for insert_track: a new track at index,
// with track-level I/O processors attached and a builtin balance processor
// auto-inserted at lane slot 0, per SPEC_FULL.md §9's restored
// auto-insert-on-creation behavior.
func NewCreateTrack(doc *document.Document, index int, name string, factory TrackFactory, balance *document.Processor) Action {
	return NewPrimitive("create_track", func(tx *Transaction) error {
		t := document.NewTrack(uuid.New(), name, false)

		input, output := factory(doc)
		doc.AttachTrackIO(t, input, output)
		tx.Record(func() {
			// AttachTrackIO's effects are undone by RemoveTrack's own
			// unindexing of the track's I/O processors is not automatic,
			// so explicitly detach here before the track node itself
			// disappears.
			t.InputProcessor = nil
			t.OutputProcessor = nil
		})

		if err := doc.InsertTrack(index, t, tx); err != nil {
			return err
		}

		if balance != nil {
			if err := doc.InsertProcessor(t.Lane, balance, 0, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewDeleteTrack builds the composite for delete_selected applied to a
// track: disconnect and remove every processor the track contains (lane
// processors plus its I/O processors), then remove the track node itself.
func NewDeleteTrack(doc *document.Document, t *document.Track) Action {
	var children []Action
	if t.InputProcessor != nil {
		children = append(children, NewDeleteProcessor(doc, t.InputProcessor))
	}
	for _, p := range t.Lane.Processors() {
		children = append(children, NewDeleteProcessor(doc, p))
	}
	if t.OutputProcessor != nil {
		children = append(children, NewDeleteProcessor(doc, t.OutputProcessor))
	}
	children = append(children, NewPrimitive("remove_track", func(tx *Transaction) error {
		return doc.RemoveTrack(t, tx)
	}))
	return NewComposite("delete_track", children...)
}
