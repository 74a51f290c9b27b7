package action

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
)

func newFixtureProcessor(d *document.Document, name string, inCh, outCh int) *document.Processor {
	return &document.Processor{
		NodeID:                  d.AllocateNodeID(),
		ID:                      "test." + name,
		Name:                    name,
		AllowDefaultConnections: true,
		NumInputChannels:        inCh,
		NumOutputChannels:       outCh,
	}
}

// newFixtureDocument builds a document with one track (input/output +
// a gain processor at slot 0) and a master track with an input processor,
// mirroring the connection package's test studio.
func newFixtureDocument(t *testing.T) (*document.Document, *connection.Engine, *document.Track, *document.Processor) {
	t.Helper()
	d := document.New()
	tr := document.NewTrack(uuid.New(), "Track 1", false)
	require.NoError(t, d.InsertTrack(0, tr, nil))

	in := newFixtureProcessor(d, "track-in", 0, 2)
	out := newFixtureProcessor(d, "track-out", 2, 0)
	d.AttachTrackIO(tr, in, out)

	gain := newFixtureProcessor(d, "gain", 2, 2)
	require.NoError(t, d.InsertProcessor(tr.Lane, gain, 0, nil))

	masterIn := newFixtureProcessor(d, "master-in", 2, 2)
	d.AttachTrackIO(d.MasterTrack, masterIn, nil)

	return d, connection.New(d), tr, gain
}

func TestUndoManagerDoUndoRedo(t *testing.T) {
	d, _, tr, _ := newFixtureDocument(t)
	mgr := NewUndoManager()

	bypass := NewSetBypassed(d, tr.Lane.Processors()[0], true)
	require.NoError(t, mgr.Do(bypass))
	require.True(t, tr.Lane.Processors()[0].Bypassed)

	require.NoError(t, mgr.Undo())
	require.False(t, tr.Lane.Processors()[0].Bypassed)

	require.NoError(t, mgr.Redo())
	require.True(t, tr.Lane.Processors()[0].Bypassed)
}

func TestCompositeRollsBackOnPartialFailure(t *testing.T) {
	d, _, tr, gain := newFixtureDocument(t)
	other := newFixtureProcessor(d, "reverb", 2, 2)

	ok := NewPrimitive("ok", func(tx *Transaction) error {
		return d.InsertProcessor(tr.Lane, other, 1, tx)
	})
	// Fails: slot 0 already holds gain.
	collide := NewPrimitive("collide", func(tx *Transaction) error {
		dup := newFixtureProcessor(d, "dup", 2, 2)
		return d.InsertProcessor(tr.Lane, dup, 0, tx)
	})
	c := NewComposite("test_composite", ok, collide)

	err := c.Perform()
	require.Error(t, err)

	if _, occupied := tr.Lane.ProcessorAt(1); occupied {
		t.Fatalf("expected slot 1 rolled back after partial failure")
	}
	if got, ok := tr.Lane.ProcessorAt(0); !ok || got != gain {
		t.Fatalf("expected original processor untouched at slot 0")
	}
}

func TestDeleteProcessorDisconnectsFirst(t *testing.T) {
	d, conn, tr, gain := newFixtureDocument(t)

	deltas := conn.RecomputeDefaults(connection.RecomputeOptions{})
	for _, dl := range deltas {
		if dl.Add != nil {
			d.AddConnection(*dl.Add, nil)
		}
	}
	require.NotEmpty(t, d.ConnectionsInvolving(gain.NodeID))

	mgr := NewUndoManager()
	require.NoError(t, mgr.Do(NewDeleteProcessor(d, gain)))

	require.Empty(t, d.ConnectionsInvolving(gain.NodeID))
	if _, ok := tr.Lane.ProcessorAt(0); ok {
		t.Fatalf("expected processor removed")
	}

	require.NoError(t, mgr.Undo())
	if _, ok := tr.Lane.ProcessorAt(0); !ok {
		t.Fatalf("expected processor restored after undo")
	}
}

func TestCreateConnectionRejectsCycle(t *testing.T) {
	d, conn, tr, gain := newFixtureDocument(t)
	reverb := newFixtureProcessor(d, "reverb", 2, 2)
	require.NoError(t, d.InsertProcessor(tr.Lane, reverb, 1, nil))

	mgr := NewUndoManager()
	fwd := NewCreateConnection(d, conn, document.NodePort{Node: gain.NodeID, Channel: 0}, document.NodePort{Node: reverb.NodeID, Channel: 0})
	require.NoError(t, mgr.Do(fwd))

	back := NewCreateConnection(d, conn, document.NodePort{Node: reverb.NodeID, Channel: 0}, document.NodePort{Node: gain.NodeID, Channel: 0})
	require.Error(t, back.Perform())
}

func TestSelectSetsMaskAndFocus(t *testing.T) {
	d, _, tr, _ := newFixtureDocument(t)
	mgr := NewUndoManager()

	require.NoError(t, mgr.Do(NewSelect(d, []SlotRef{{Track: tr, Slot: 0}})))
	require.True(t, tr.Lane.IsSlotSelected(0))
	require.Equal(t, 0, d.View.FocusedTrackIndex)
	require.Equal(t, 0, d.View.FocusedProcessorSlot)

	require.NoError(t, mgr.Undo())
	require.False(t, tr.Lane.IsSlotSelected(0))
}
