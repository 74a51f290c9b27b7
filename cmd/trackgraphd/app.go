package main

import (
	"context"
	"fmt"

	"github.com/shaban/trackgraph/action"
	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
	"github.com/shaban/trackgraph/ports"
)

// app wires the core packages into a single in-process implementation of
// ports.CommandSurface: a cobra command maps directly to one of these
// methods, loads/saves the document around the call. Generalizes the
// teacher's dispatcher-backed command handlers (dispatcher.go, since
// deleted as superseded) from a fixed topology-op enum to the full
// tracks/lanes/slots command surface (§6).
type app struct {
	doc     *document.Document
	conn    *connection.Engine
	mgr     *action.UndoManager
	plugins ports.PluginManager

	drag struct {
		active  bool
		node    document.NodeID
		initial action.TrackSlot
	}
}

func newApp(doc *document.Document, plugins ports.PluginManager) *app {
	return &app{
		doc:     doc,
		conn:    connection.New(doc),
		mgr:     action.NewUndoManager(),
		plugins: plugins,
	}
}

func (a *app) DeleteSelected() error {
	var acts []action.Action
	for _, t := range a.doc.NonMasterTracks() {
		if t.Selected {
			acts = append(acts, action.NewDeleteTrack(a.doc, t))
			continue
		}
		for _, p := range t.Lane.Processors() {
			if t.Lane.IsSlotSelected(p.Slot) {
				acts = append(acts, action.NewDeleteProcessor(a.doc, p))
			}
		}
	}
	if len(acts) == 0 {
		return fmt.Errorf("trackgraphd: nothing selected")
	}
	return a.mgr.Do(action.NewComposite("delete_selected", acts...))
}

func (a *app) DuplicateSelected() error {
	var buffer []action.CopiedProcessor
	focusTrack := a.doc.View.FocusedTrackIndex
	for trackIdx, t := range a.doc.NonMasterTracks() {
		for _, p := range t.Lane.Processors() {
			if !t.Lane.IsSlotSelected(p.Slot) {
				continue
			}
			src := p
			buffer = append(buffer, action.CopiedProcessor{
				TrackOffset: trackIdx - focusTrack,
				SlotOffset:  0,
				Build: func(doc *document.Document) *document.Processor {
					dup := *src
					dup.NodeID = doc.AllocateNodeID()
					dup.Parameters = clonedParams(src.Parameters)
					return &dup
				},
			})
		}
	}
	if len(buffer) == 0 {
		return fmt.Errorf("trackgraphd: nothing selected to duplicate")
	}
	to := action.TrackSlot{TrackIndex: focusTrack, Slot: a.doc.View.FocusedProcessorSlot}
	act, err := action.NewInsert(a.doc, a.conn, buffer, to, true)
	if err != nil {
		return err
	}
	return a.mgr.Do(act)
}

func clonedParams(src []*document.Parameter) []*document.Parameter {
	out := make([]*document.Parameter, len(src))
	for i, p := range src {
		v := *p
		out[i] = &v
	}
	return out
}

func (a *app) InsertTrack() error {
	factory := func(doc *document.Document) (input, output *document.Processor) {
		return builtinIO(doc)
	}
	balance := &document.Processor{NodeID: a.doc.AllocateNodeID(), ID: document.BuiltinBalanceProcessorID, Name: "Balance", AllowDefaultConnections: true, NumInputChannels: 2, NumOutputChannels: 2}
	index := len(a.doc.NonMasterTracks())
	return a.mgr.Do(action.NewCreateTrack(a.doc, index, fmt.Sprintf("Track %d", index+1), factory, balance))
}

func (a *app) AddMixerChannel() error {
	factory := func(doc *document.Document) (input, output *document.Processor) {
		return builtinIO(doc)
	}
	balance := &document.Processor{NodeID: a.doc.AllocateNodeID(), ID: document.BuiltinBalanceProcessorID, Name: "Balance", AllowDefaultConnections: true, NumInputChannels: 2, NumOutputChannels: 2}
	index := len(a.doc.NonMasterTracks())
	return a.mgr.Do(action.NewAddMixerChannel(a.doc, index, fmt.Sprintf("Channel %d", index+1), factory, balance))
}

func builtinIO(doc *document.Document) (input, output *document.Processor) {
	input = &document.Processor{NodeID: doc.AllocateNodeID(), ID: "builtin.track_input", Name: "Input", AllowDefaultConnections: true, NumOutputChannels: 2}
	output = &document.Processor{NodeID: doc.AllocateNodeID(), ID: "builtin.track_output", Name: "Output", AllowDefaultConnections: true, NumInputChannels: 2}
	return input, output
}

func (a *app) CreateProcessor(desc ports.PluginDescriptor, trackIndex, slot int) error {
	nonMaster := a.doc.NonMasterTracks()
	if trackIndex < 0 || trackIndex >= len(nonMaster) {
		return fmt.Errorf("trackgraphd: track index %d out of range", trackIndex)
	}
	inst, err := a.plugins.Create(context.Background(), desc)
	if err != nil {
		return err
	}
	params := make([]*document.Parameter, len(inst.Parameters))
	for i := range inst.Parameters {
		v := inst.Parameters[i]
		params[i] = &v
	}
	p := &document.Processor{
		NodeID:                  a.doc.AllocateNodeID(),
		ID:                      desc.PluginID,
		Name:                    desc.PluginID,
		AllowDefaultConnections: true,
		NumInputChannels:        inst.NumInputChannels,
		NumOutputChannels:       inst.NumOutputChannels,
		AcceptsMIDI:             inst.AcceptsMIDI,
		ProducesMIDI:            inst.ProducesMIDI,
		PluginState:             inst.State,
		Parameters:              params,
	}
	return a.mgr.Do(action.NewCreateProcessor(a.doc, nonMaster[trackIndex].Lane, p, slot, a.conn))
}

func (a *app) ToggleBypass(node document.NodeID) error {
	p, ok := a.doc.ProcessorByNodeID(node)
	if !ok {
		return fmt.Errorf("trackgraphd: unknown node %d", node)
	}
	return a.mgr.Do(action.NewSetBypassed(a.doc, p, !p.Bypassed))
}

func (a *app) SetDefaultConnectionsAllowed(node document.NodeID, allowed bool) error {
	p, ok := a.doc.ProcessorByNodeID(node)
	if !ok {
		return fmt.Errorf("trackgraphd: unknown node %d", node)
	}
	return a.mgr.Do(action.NewSetAllowDefaultConnections(a.doc, p, allowed, a.conn))
}

func (a *app) DisconnectAll(node document.NodeID) error {
	return a.mgr.Do(action.NewDisconnectAll(a.doc, []document.NodeID{node}))
}

func (a *app) DisconnectCustom(node document.NodeID) error {
	return a.mgr.Do(action.NewDisconnectCustom(a.doc, a.conn, []document.NodeID{node}))
}

func (a *app) BeginDrag(node document.NodeID, startTrack, startSlot int) error {
	a.drag.active = true
	a.drag.node = node
	a.drag.initial = action.TrackSlot{TrackIndex: startTrack, Slot: startSlot}
	return nil
}

func (a *app) DragTo(node document.NodeID, trackIndex, slot int) error {
	if !a.drag.active || a.drag.node != node {
		return fmt.Errorf("trackgraphd: no active drag for node %d", node)
	}
	act, err := action.NewMoveSelectedItems(a.doc, a.conn, a.drag.initial, action.TrackSlot{TrackIndex: trackIndex, Slot: slot}, false)
	if err != nil {
		return err
	}
	return act.Perform()
}

func (a *app) EndDrag(node document.NodeID) error {
	a.drag.active = false
	return nil
}
