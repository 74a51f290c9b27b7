package ports

import (
	"context"

	"github.com/shaban/trackgraph/document"
)

// PluginDescriptor names a plugin to instantiate, and carries an opaque
// state blob for createCopy-style duplication (§6: "Core calls on
// processor add and on paste (duplicate via createCopy of opaque state
// blob)").
type PluginDescriptor struct {
	PluginID    string
	CopiedState string // base64, empty unless duplicating/pasting
}

// PluginInstance is the handle the plugin manager returns for a newly
// created plugin: its channel/MIDI capabilities and parameter list feed
// directly into document.Processor's matching fields, and Handle is
// opaque to the core — only the wrapper package and the concrete
// PluginManager implementation interpret it.
type PluginInstance struct {
	Handle            any
	NumInputChannels  int
	NumOutputChannels int
	AcceptsMIDI       bool
	ProducesMIDI      bool
	Parameters        []document.Parameter
	State             string // opaque base64 blob, document.Processor.PluginState
}

// PluginManager creates plugin instances from a descriptor and duplicates
// existing instances' opaque state. Provided per §6; backed by
// shaban/macaudio/plugins (AU introspection) in ports/pluginmanager_darwin.go.
type PluginManager interface {
	Create(ctx context.Context, desc PluginDescriptor) (*PluginInstance, error)
	Destroy(ctx context.Context, handle any) error
	CreateCopy(ctx context.Context, state string) (*PluginInstance, error)
}

// AudioDeviceManager enumerates I/O devices and reports current
// configuration. Provided per §6; backed by shaban/macaudio/devices.
type AudioDeviceManager interface {
	AudioDevices(ctx context.Context) ([]AudioDeviceInfo, error)
	MIDIDevices(ctx context.Context) ([]MIDIDeviceInfo, error)
	CurrentSampleRate() float64
	CurrentBlockSize() int
	EnableMIDIInput(name string, enabled bool) error
}

// AudioDeviceInfo is the trimmed view of shaban/macaudio/devices.AudioDevice
// the core needs: enough to populate an Input/Output section processor's
// DeviceName and channel counts.
type AudioDeviceInfo struct {
	Name               string
	UID                string
	Online             bool
	InputChannelCount  int
	OutputChannelCount int
}

// MIDIDeviceInfo is the trimmed view of shaban/macaudio/devices.MIDIDevice.
type MIDIDeviceInfo struct {
	Name   string
	UID    string
	Online bool
	IsIn   bool
	IsOut  bool
}

// MIDIMessage is a raw, timestamped MIDI message as delivered by the
// multiplexer to registered collectors.
type MIDIMessage struct {
	Data      []byte
	TimestampNS int64
	DeviceUID string
}

// MessageCollector receives MIDI messages from one multiplexed source.
type MessageCollector func(MIDIMessage)

// MIDIMultiplexer is the controller-surface MIDI input path named in §6:
// add_midi_input_callback / remove_midi_input_callback. It is deliberately
// separate from AudioDeviceManager's device-name-driven MIDI input
// processors — §4.4 calls this out as "bypassing the device manager for
// the dedicated controller-surface MIDI input."
type MIDIMultiplexer interface {
	AddMIDIInputCallback(deviceUID string, collector MessageCollector) (unsubscribe func(), err error)
	RemoveMIDIInputCallback(deviceUID string)
}

// CommandSurface is the consumer side of §6: the command/menu layer
// invokes these by name. cmd/trackgraphd's cobra commands call through its
// app type, which builds actions and runs them on an action.UndoManager.
type CommandSurface interface {
	DeleteSelected() error
	DuplicateSelected() error
	InsertTrack() error
	AddMixerChannel() error
	CreateProcessor(desc PluginDescriptor, trackIndex, slot int) error
	ToggleBypass(node document.NodeID) error
	SetDefaultConnectionsAllowed(node document.NodeID, allowed bool) error
	DisconnectAll(node document.NodeID) error
	DisconnectCustom(node document.NodeID) error
	BeginDrag(node document.NodeID, startTrack, startSlot int) error
	DragTo(node document.NodeID, trackIndex, slot int) error
	EndDrag(node document.NodeID) error
}
