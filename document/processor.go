package document

// ProcessorRole distinguishes how a Processor participates in the default
// connection derivation algorithm (§4.2). It is not stored on Processor;
// Document computes it from context (which section/track owns the node),
// per the design note replacing subclass hierarchies with computed
// predicates over I/O counts and MIDI flags.
type ProcessorRole int

const (
	RoleGeneric ProcessorRole = iota
	RoleTrackInput
	RoleTrackOutput
	RoleSystemAudioInput
	RoleSystemAudioOutput
	RoleMIDIInput
	RoleMIDIOutput
)

// Processor is a single node in a lane or I/O section: an audio or MIDI
// processing unit with parameters and channel counts. Whether it behaves
// as a producer, an effect, or both is a computed predicate (ProducesAudio
// / AcceptsAudio / ProducesMIDI / AcceptsMIDI), not a subclass — see design
// note in SPEC_FULL.md §9.
type Processor struct {
	NodeID NodeID
	ID     string // plugin identifier, e.g. an Audio Unit component id
	Name   string
	Slot   int

	Bypassed                bool
	AllowDefaultConnections bool

	NumInputChannels  int
	NumOutputChannels int
	AcceptsMIDI       bool
	ProducesMIDI      bool

	// PluginState is an opaque base64 blob the plugin manager produced;
	// the document never interprets it (§6).
	PluginState string

	// DeviceName identifies the backing hardware/MIDI device for I/O
	// section processors; empty for ordinary effect/producer processors.
	DeviceName string

	WindowX    int
	WindowY    int
	WindowType string

	Parameters []*Parameter

	lane *ProcessorLane // nil for I/O-section processors
}

// ProducesAudio reports whether this processor has audio outputs.
func (p *Processor) ProducesAudio() bool { return p.NumOutputChannels > 0 }

// AcceptsAudio reports whether this processor has audio inputs.
func (p *Processor) AcceptsAudio() bool { return p.NumInputChannels > 0 }

// Lane returns the containing lane, or nil if p lives in an I/O section.
func (p *Processor) Lane() *ProcessorLane { return p.lane }

// Parameter looks up a parameter by id.
func (p *Processor) Parameter(id string) (*Parameter, bool) {
	for _, prm := range p.Parameters {
		if prm.ID == id {
			return prm, true
		}
	}
	return nil, false
}
