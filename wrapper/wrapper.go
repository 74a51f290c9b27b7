package wrapper

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/shaban/trackgraph/document"
	"github.com/shaban/trackgraph/ports"
)

// NodeRegistrar is the subset of graph.Coordinator a ProcessorWrapper
// needs: binding a live node pointer to the document NodeID that names it.
// Defined here (rather than importing package graph) to avoid a cycle;
// graph.Coordinator satisfies it directly.
type NodeRegistrar interface {
	RegisterNode(id document.NodeID, ptr unsafe.Pointer) error
}

// paramEdit is one pending change, either direction, waiting to be
// flushed on the next model/audio-thread sync point.
type paramEdit struct {
	id    string
	value float32
}

// ProcessorWrapper owns the live plugin instance for a single
// document.Processor and shuttles parameter values between it and the
// document model. Document-side writes (SetParameterValue) queue an
// audio-thread push; audio-thread-originated changes (PushFromAudioThread,
// called by whatever RT callback owns automation/MIDI learn) queue a
// model-side flush, consumed by Flush per §4.4's adaptive timer.
type ProcessorWrapper struct {
	Doc       *document.Document
	Processor *document.Processor
	Instance  *ports.PluginInstance

	mu        sync.Mutex
	toAudio   []paramEdit
	fromAudio []paramEdit
}

// Create instantiates desc through mgr, registers the resulting node with
// reg under a freshly allocated NodeID, and returns the bound wrapper.
func Create(ctx context.Context, doc *document.Document, mgr ports.PluginManager, reg NodeRegistrar, desc ports.PluginDescriptor, name string, slot int, lane *document.ProcessorLane) (*ProcessorWrapper, error) {
	inst, err := mgr.Create(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("wrapper: create %q: %w", desc.PluginID, err)
	}

	p := &document.Processor{
		NodeID:                  doc.AllocateNodeID(),
		ID:                      desc.PluginID,
		Name:                    name,
		AllowDefaultConnections: true,
		NumInputChannels:        inst.NumInputChannels,
		NumOutputChannels:       inst.NumOutputChannels,
		AcceptsMIDI:             inst.AcceptsMIDI,
		ProducesMIDI:            inst.ProducesMIDI,
		PluginState:             inst.State,
		Parameters:              clonedParameters(inst.Parameters),
	}

	if err := reg.RegisterNode(p.NodeID, inst.Handle.(unsafe.Pointer)); err != nil {
		return nil, fmt.Errorf("wrapper: register node %d: %w", p.NodeID, err)
	}

	if err := doc.InsertProcessor(lane, p, slot, nil); err != nil {
		return nil, err
	}

	return &ProcessorWrapper{Doc: doc, Processor: p, Instance: inst}, nil
}

func clonedParameters(src []document.Parameter) []*document.Parameter {
	out := make([]*document.Parameter, len(src))
	for i := range src {
		v := src[i]
		out[i] = &v
	}
	return out
}

// SetParameterValue updates the document's copy of the parameter and
// queues the corresponding audio-thread push. Undo is the caller's
// concern (parameter edits are ordinarily wrapped by the action package's
// temporary-perform-free direct mutation path, since they are typically
// not undo-tracked per-sample automation).
func (w *ProcessorWrapper) SetParameterValue(id string, value float32) error {
	prm, ok := w.Processor.Parameter(id)
	if !ok {
		return fmt.Errorf("wrapper: unknown parameter %q on node %d", id, w.Processor.NodeID)
	}
	prm.Value = prm.Clamped(value)
	w.Doc.Bus.Emit(document.Event{
		Kind:     document.PropertyChanged,
		Node:     document.ParameterRef(w.Processor.NodeID, id),
		Property: "value",
	})

	w.mu.Lock()
	w.toAudio = append(w.toAudio, paramEdit{id: id, value: prm.Value})
	w.mu.Unlock()
	return nil
}

// PushFromAudioThread queues a value the live plugin reported (e.g. from
// host automation or a MIDI-learned control) to be merged into the
// document model on the next Flush.
func (w *ProcessorWrapper) PushFromAudioThread(id string, value float32) {
	w.mu.Lock()
	w.fromAudio = append(w.fromAudio, paramEdit{id: id, value: value})
	w.mu.Unlock()
}

// Flush implements graph.ParameterFlusher: it drains fromAudio into the
// document model, emitting one PropertyChanged per parameter touched, and
// reports whether anything changed.
func (w *ProcessorWrapper) Flush() bool {
	w.mu.Lock()
	pending := w.fromAudio
	w.fromAudio = nil
	w.mu.Unlock()

	if len(pending) == 0 {
		return false
	}
	for _, e := range pending {
		prm, ok := w.Processor.Parameter(e.id)
		if !ok {
			continue
		}
		prm.Value = prm.Clamped(e.value)
		w.Doc.Bus.Emit(document.Event{
			Kind:     document.PropertyChanged,
			Node:     document.ParameterRef(w.Processor.NodeID, e.id),
			Property: "value",
		})
	}
	return true
}

// DrainToAudioThread returns and clears the queued document-side edits,
// for the audio-thread-owned callback to apply to the live plugin
// instance (PluginInstance.Handle's native SetParameter call).
func (w *ProcessorWrapper) DrainToAudioThread() []paramEdit {
	w.mu.Lock()
	defer w.mu.Unlock()
	pending := w.toAudio
	w.toAudio = nil
	return pending
}
