package graph

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/document"
	"github.com/shaban/trackgraph/engine/queue"
	"github.com/shaban/trackgraph/ports"
)

// pendingDelta is one entry of the pause/resume batching buffer: an add
// or remove of a single Connection, held while the graph is paused during
// an interactive drag.
type pendingDelta struct {
	isRemove bool
	conn     document.Connection
}

// Coordinator mirrors a document.Document into a live audio graph through
// a queue.Dispatcher, owning pause/resume batching and the drag state
// machine described in §4.4. Generalizes the teacher's DeviceMonitor
// callback-driven sync loop (device_monitor.go, since deleted as
// superseded) from device hot-plug events to arbitrary document mutation
// events.
type Coordinator struct {
	Doc     *document.Document
	Conn    *connection.Engine
	Plugins ports.PluginManager
	Disp    *queue.Dispatcher

	mu       sync.Mutex
	nodePtrs map[document.NodeID]unsafe.Pointer

	paused  bool
	pending []pendingDelta

	drag dragState
}

func NewCoordinator(doc *document.Document, conn *connection.Engine, plugins ports.PluginManager, disp *queue.Dispatcher) *Coordinator {
	c := &Coordinator{
		Doc:      doc,
		Conn:     conn,
		Plugins:  plugins,
		Disp:     disp,
		nodePtrs: make(map[document.NodeID]unsafe.Pointer),
	}
	c.subscribe()
	return c
}

func (c *Coordinator) subscribe() {
	bus := c.Doc.Bus
	bus.SubscribeKind(document.RefKindProcessor, func(ev document.Event) {
		switch ev.Kind {
		case document.ChildAdded:
			c.onProcessorAdded(ev.Child.NodeID)
		case document.ChildRemoved:
			c.onProcessorRemoved(ev.Child.NodeID)
		case document.PropertyChanged:
			if ev.Property == "bypassed" {
				c.onBypassChanged(ev.Node.NodeID)
			}
		}
	})
	bus.SubscribeKind(document.RefKindConnection, func(ev document.Event) {
		switch ev.Kind {
		case document.ChildAdded:
			c.onConnectionAdded(ev.Child.ConnKey)
		case document.ChildRemoved:
			c.onConnectionRemoved(ev.Child.ConnKey)
		}
	})
}

// RegisterNode binds an already-instantiated live node pointer to a
// document NodeID. The plugin manager/wrapper layer calls this after
// PluginManager.Create succeeds; the Coordinator itself never creates
// plugin instances (§6: that is ports.PluginManager's job).
func (c *Coordinator) RegisterNode(id document.NodeID, ptr unsafe.Pointer) error {
	c.mu.Lock()
	c.nodePtrs[id] = ptr
	c.mu.Unlock()
	return c.Disp.Attach(ptr)
}

func (c *Coordinator) onProcessorAdded(id document.NodeID) {
	// Node instantiation happens one layer up (wrapper package), which
	// calls RegisterNode once the plugin instance and node_id exist; this
	// hook exists so future bookkeeping (MIDI callback wiring) has a
	// single place to live.
	_ = id
}

func (c *Coordinator) onProcessorRemoved(id document.NodeID) {
	c.mu.Lock()
	ptr, ok := c.nodePtrs[id]
	delete(c.nodePtrs, id)
	c.mu.Unlock()
	if !ok {
		return
	}
	_ = c.Disp.RunSync(func(ctx context.Context) error { return c.Disp.Eng.Detach(ptr) })
}

func (c *Coordinator) onBypassChanged(id document.NodeID) {
	// Bypass is delivered to the wrapper as a parameter-like flush, not a
	// topology change; the Coordinator's concern here is only ensuring
	// the node's connections reflect its current bypass state, which the
	// connection recompute pass already handles via AllowDefaultConnections.
	_ = id
}

func (c *Coordinator) nodePort(port document.NodePort) (unsafe.Pointer, int, error) {
	c.mu.Lock()
	ptr, ok := c.nodePtrs[port.Node]
	c.mu.Unlock()
	if !ok {
		return nil, 0, fmt.Errorf("graph: no live node for %d", port.Node)
	}
	return ptr, int(port.Channel), nil
}

func (c *Coordinator) onConnectionAdded(key document.ConnectionKey) {
	conn, ok := c.Doc.FindConnection(key)
	if !ok {
		return
	}
	if c.paused {
		c.mu.Lock()
		c.pending = append(c.pending, pendingDelta{conn: *conn})
		c.mu.Unlock()
		return
	}
	c.applyConnect(*conn)
}

func (c *Coordinator) onConnectionRemoved(key document.ConnectionKey) {
	if c.paused {
		c.mu.Lock()
		c.pending = append(c.pending, pendingDelta{isRemove: true, conn: document.Connection{Source: key.Source, Destination: key.Destination}})
		c.mu.Unlock()
		return
	}
	c.applyDisconnect(key)
}

func (c *Coordinator) applyConnect(conn document.Connection) {
	srcPtr, srcBus, err := c.nodePort(conn.Source)
	if err != nil {
		return
	}
	dstPtr, dstBus, err := c.nodePort(conn.Destination)
	if err != nil {
		return
	}
	_ = c.Disp.Connect(srcPtr, dstPtr, srcBus, dstBus)
}

func (c *Coordinator) applyDisconnect(key document.ConnectionKey) {
	dstPtr, dstBus, err := c.nodePort(key.Destination)
	if err != nil {
		return
	}
	_ = c.Disp.DisconnectNodeInput(dstPtr, dstBus)
}

// PauseGraphUpdates suspends live-graph mutation; document mutations keep
// flowing and are buffered (§4.4's pause/resume batching).
func (c *Coordinator) PauseGraphUpdates() {
	c.mu.Lock()
	c.paused = true
	c.pending = nil
	c.mu.Unlock()
}

// ResumeGraphUpdatesAndApplyDiffSincePause coalesces the pending buffer
// (cancelling add-then-remove pairs on the same connection, preserving
// remaining order) and applies what remains to the live graph in order.
// Each delta is applied as its own dispatcher operation; the batch is not
// applied as one atomic step.
func (c *Coordinator) ResumeGraphUpdatesAndApplyDiffSincePause() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.paused = false
	c.mu.Unlock()

	coalesced := coalescePending(pending)
	for _, d := range coalesced {
		if d.isRemove {
			c.applyDisconnect(document.ConnectionKey{Source: d.conn.Source, Destination: d.conn.Destination})
		} else {
			c.applyConnect(d.conn)
		}
	}
}

// coalescePending cancels add-then-remove (or remove-then-add) pairs for
// the same connection key, preserving the relative order of whatever
// survives.
func coalescePending(in []pendingDelta) []pendingDelta {
	counts := make(map[document.ConnectionKey]int)
	for _, d := range in {
		key := document.ConnectionKey{Source: d.conn.Source, Destination: d.conn.Destination}
		if d.isRemove {
			counts[key]--
		} else {
			counts[key]++
		}
	}
	seen := make(map[document.ConnectionKey]bool)
	var out []pendingDelta
	for _, d := range in {
		key := document.ConnectionKey{Source: d.conn.Source, Destination: d.conn.Destination}
		if seen[key] {
			continue
		}
		net := counts[key]
		if net == 0 {
			seen[key] = true
			continue
		}
		seen[key] = true
		out = append(out, pendingDelta{isRemove: net < 0, conn: d.conn})
	}
	return out
}
