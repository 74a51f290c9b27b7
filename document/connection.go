package document

// Channel is an integer channel index on a processor. MIDIChannel is the
// sentinel value denoting a MIDI edge rather than an audio one (§3).
type Channel int

// MIDIChannel is the sentinel channel value for MIDI connections.
const MIDIChannel Channel = -1

// NodePort names one endpoint of a Connection.
type NodePort struct {
	Node    NodeID
	Channel Channel
}

// IsMIDI reports whether this port represents a MIDI edge.
func (p NodePort) IsMIDI() bool { return p.Channel == MIDIChannel }

// ConnectionKey is the comparable identity of a Connection, used as a map
// key and as the Ref payload for per-connection event subscriptions.
type ConnectionKey struct {
	Source      NodePort
	Destination NodePort
}

// Connection is a directed edge between two processor channels. Generalizes
// the teacher's flat Connection{SourceChannel, TargetChannel, SourceBus,
// TargetBus string/int} (channels.go) to typed NodePort endpoints carrying
// an IsCustom flag instead of living only as a side channel of serialized
// state.
type Connection struct {
	Source      NodePort
	Destination NodePort
	IsCustom    bool
}

// Key returns the comparable identity of this connection.
func (c Connection) Key() ConnectionKey {
	return ConnectionKey{Source: c.Source, Destination: c.Destination}
}

// SameType reports whether both ports are MIDI or both are audio.
func (c Connection) SameType() bool {
	return c.Source.IsMIDI() == c.Destination.IsMIDI()
}
