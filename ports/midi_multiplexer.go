package ports

import (
	"fmt"
	"sync"

	"github.com/rakyll/portmidi"
	"gitlab.com/gomidi/midi/v2"
)

// Multiplexer implements MIDIMultiplexer. Named MIDI-input devices (the
// ones surfaced through AudioDeviceManager's device-name-driven Input
// processors) are listened to via gomidi/midi v2's default driver;
// the dedicated controller-surface path §4.4 calls out as "bypassing the
// device manager" goes through rakyll/portmidi directly against a fixed
// stream, so it keeps working even if the named device list changes.
// Both libraries were declared in the teacher's go.mod but never imported
// anywhere in its code; this is their home (see SPEC_FULL.md §6).
type Multiplexer struct {
	mu             sync.Mutex
	gomidiStops    map[string]func()
	controllerOpen bool
	controller     *portmidi.Stream
	controllerDone chan struct{}
}

func NewMultiplexer() *Multiplexer {
	return &Multiplexer{gomidiStops: make(map[string]func())}
}

const controllerSurfaceUID = "controller-surface"

// AddMIDIInputCallback registers collector for deviceUID. The sentinel
// uid controllerSurfaceUID routes through portmidi's default input stream
// instead of gomidi, matching the dedicated controller-surface path.
func (m *Multiplexer) AddMIDIInputCallback(deviceUID string, collector MessageCollector) (func(), error) {
	if deviceUID == controllerSurfaceUID {
		return m.addControllerSurface(collector)
	}
	return m.addNamedDevice(deviceUID, collector)
}

func (m *Multiplexer) addNamedDevice(deviceUID string, collector MessageCollector) (func(), error) {
	in, err := midi.FindInPort(deviceUID)
	if err != nil {
		return nil, fmt.Errorf("%w: MIDI input %q: %v", ErrDeviceUnavailable, deviceUID, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		collector(MIDIMessage{Data: msg.Bytes(), TimestampNS: int64(timestampms) * 1_000_000, DeviceUID: deviceUID})
	})
	if err != nil {
		return nil, fmt.Errorf("ports: listen on %q: %w", deviceUID, err)
	}
	m.mu.Lock()
	m.gomidiStops[deviceUID] = stop
	m.mu.Unlock()
	return func() { m.RemoveMIDIInputCallback(deviceUID) }, nil
}

func (m *Multiplexer) addControllerSurface(collector MessageCollector) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controllerOpen {
		return nil, fmt.Errorf("ports: controller surface input already open")
	}
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portmidi init: %v", ErrDeviceUnavailable, err)
	}
	deviceID := portmidi.DefaultInputDeviceID()
	stream, err := portmidi.NewInputStream(deviceID, 1024)
	if err != nil {
		return nil, fmt.Errorf("%w: open controller surface stream: %v", ErrDeviceUnavailable, err)
	}
	m.controller = stream
	m.controllerOpen = true
	m.controllerDone = make(chan struct{})

	go func(done chan struct{}) {
		for {
			select {
			case <-done:
				return
			case events := <-stream.Listen():
				for _, ev := range events {
					collector(MIDIMessage{
						Data:      []byte{byte(ev.Status), byte(ev.Data1), byte(ev.Data2)},
						TimestampNS: int64(ev.Timestamp) * 1_000_000,
						DeviceUID: controllerSurfaceUID,
					})
				}
			}
		}
	}(m.controllerDone)

	return func() { m.RemoveMIDIInputCallback(controllerSurfaceUID) }, nil
}

func (m *Multiplexer) RemoveMIDIInputCallback(deviceUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if deviceUID == controllerSurfaceUID {
		if m.controllerOpen {
			close(m.controllerDone)
			m.controller.Close()
			m.controllerOpen = false
		}
		return
	}
	if stop, ok := m.gomidiStops[deviceUID]; ok {
		stop()
		delete(m.gomidiStops, deviceUID)
	}
}
