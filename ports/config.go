package ports

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the command surface's startup configuration: sample
// rate, buffer size and default MIDI device names. Generalizes the
// teacher's session.AudioSpec JSON preferences (session/session.go) to a
// YAML file, grounded on aldrin-isaac-newtron's config layer.
type EngineConfig struct {
	SampleRate        float64  `yaml:"sample_rate"`
	BufferSize        int      `yaml:"buffer_size"`
	DefaultMIDIInputs []string `yaml:"default_midi_inputs"`
	DefaultAudioInput string   `yaml:"default_audio_input"`
	DefaultAudioOutput string  `yaml:"default_audio_output"`
}

// DefaultEngineConfig matches shaban/macaudio's DefaultAudioSpec: 48kHz,
// 512-sample buffer.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{SampleRate: 48000, BufferSize: 512}
}

// LoadEngineConfig reads and parses a YAML config file, falling back to
// DefaultEngineConfig for any field the file omits (zero values are
// replaced, not merged field-by-field beyond that).
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("ports: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("ports: parse config %s: %w", path, err)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 512
	}
	return cfg, nil
}
