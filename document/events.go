package document

import "sync"

// EventKind enumerates the fine-grained change notifications the tree
// guarantees, matching §4.1: property_changed, child_added, child_removed,
// child_order_changed, child_reparented.
type EventKind int

const (
	PropertyChanged EventKind = iota
	ChildAdded
	ChildRemoved
	ChildOrderChanged
	ChildReparented
)

// Event is the single typed payload every listener receives. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	// PropertyChanged
	Node     Ref
	Property string

	// ChildAdded / ChildRemoved
	Parent   Ref
	Child    Ref
	OldIndex int
	NewIndex int

	// ChildReparented
	OldParent Ref
	NewParent Ref
}

// Listener observes one Event. Listeners must not panic; the bus does not
// recover them (§7: "Model listeners must not throw").
type Listener func(Event)

// Bus is a synchronous typed pub/sub broker. Handlers are invoked in
// registration order on the calling goroutine — there is no queueing or
// fan-out thread, matching the single-threaded document model in §5.
// Grounded on the teacher's callback-registration style for device and
// session change notification (DeviceMonitor's onAudioDeviceAdded family,
// Session.OnDeviceChange), generalized from ad hoc struct fields to a
// typed event sum with a real subscriber registry.
type Bus struct {
	mu        sync.Mutex
	byRef     map[Ref][]Listener
	byKind    map[RefKind][]Listener
	seq       int
}

func NewBus() *Bus {
	return &Bus{
		byRef:  make(map[Ref][]Listener),
		byKind: make(map[RefKind][]Listener),
	}
}

// Subscribe registers fn for events targeting exactly ref. The returned
// func removes the subscription.
func (b *Bus) Subscribe(ref Ref, fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byRef[ref] = append(b.byRef[ref], fn)
	idx := len(b.byRef[ref]) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.byRef[ref]
		if idx < len(list) {
			list[idx] = nil
		}
	}
}

// SubscribeKind registers fn for every event whose primary node (Node for
// property_changed, Child for child_added/removed, Child for reparented)
// has the given Kind.
func (b *Bus) SubscribeKind(kind RefKind, fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byKind[kind] = append(b.byKind[kind], fn)
	idx := len(b.byKind[kind]) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.byKind[kind]
		if idx < len(list) {
			list[idx] = nil
		}
	}
}

// Emit dispatches ev synchronously to every matching listener, by-ref
// listeners first, then by-kind listeners, in registration order.
func (b *Bus) Emit(ev Event) {
	target := ev.primaryRef()

	b.mu.Lock()
	refListeners := append([]Listener(nil), b.byRef[target]...)
	kindListeners := append([]Listener(nil), b.byKind[target.Kind]...)
	b.mu.Unlock()

	for _, fn := range refListeners {
		if fn != nil {
			fn(ev)
		}
	}
	for _, fn := range kindListeners {
		if fn != nil {
			fn(ev)
		}
	}
}

func (e Event) primaryRef() Ref {
	switch e.Kind {
	case PropertyChanged:
		return e.Node
	case ChildAdded, ChildRemoved:
		return e.Child
	case ChildOrderChanged:
		return e.Parent
	case ChildReparented:
		return e.Child
	default:
		return Ref{}
	}
}
