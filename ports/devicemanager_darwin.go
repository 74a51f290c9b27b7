//go:build darwin && cgo

package ports

import (
	"context"
	"fmt"

	"github.com/shaban/trackgraph/devices"
)

// DarwinDeviceManager backs AudioDeviceManager with shaban/macaudio's
// devices package (CoreAudio/CoreMIDI enumeration via cgo).
type DarwinDeviceManager struct {
	sampleRate float64
	blockSize  int
}

func NewDarwinDeviceManager(sampleRate float64, blockSize int) *DarwinDeviceManager {
	return &DarwinDeviceManager{sampleRate: sampleRate, blockSize: blockSize}
}

func (m *DarwinDeviceManager) AudioDevices(ctx context.Context) ([]AudioDeviceInfo, error) {
	list, err := devices.GetAudio()
	if err != nil {
		return nil, fmt.Errorf("ports: enumerate audio devices: %w", err)
	}
	out := make([]AudioDeviceInfo, 0, len(list))
	for _, d := range list {
		out = append(out, AudioDeviceInfo{
			Name:               d.Name,
			UID:                d.UID,
			Online:             d.IsOnline,
			InputChannelCount:  d.InputChannelCount,
			OutputChannelCount: d.OutputChannelCount,
		})
	}
	return out, nil
}

func (m *DarwinDeviceManager) MIDIDevices(ctx context.Context) ([]MIDIDeviceInfo, error) {
	list, err := devices.GetMIDI()
	if err != nil {
		return nil, fmt.Errorf("ports: enumerate MIDI devices: %w", err)
	}
	out := make([]MIDIDeviceInfo, 0, len(list))
	for _, d := range list {
		out = append(out, MIDIDeviceInfo{Name: d.Name, UID: d.UID, Online: d.IsOnline})
	}
	return out, nil
}

func (m *DarwinDeviceManager) CurrentSampleRate() float64 { return m.sampleRate }
func (m *DarwinDeviceManager) CurrentBlockSize() int      { return m.blockSize }

func (m *DarwinDeviceManager) EnableMIDIInput(name string, enabled bool) error {
	// Does nothing and returns nil: no MIDI input is enabled or disabled
	// here, and no Input-section processor is changed.
	return nil
}
