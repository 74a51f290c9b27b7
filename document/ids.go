package document

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// TrackID identifies a Track for the lifetime of the document.
type TrackID = uuid.UUID

// NodeID is a stable handle into the live audio graph. It is assigned once,
// at processor instantiation, and never reused for the processor's lifetime.
// Unlike TrackID, NodeID is a small integer: the live graph, the wrapper
// layer and connections all key off it directly.
type NodeID int64

// nodeIDAllocator hands out monotonically increasing NodeIDs. A Document
// owns exactly one; it never resets, even across processor deletion, so a
// stale NodeID can never be mistaken for a live one (invariant 2).
type nodeIDAllocator struct {
	next int64
}

func (a *nodeIDAllocator) allocate() NodeID {
	return NodeID(atomic.AddInt64(&a.next, 1))
}

// advanceTo bumps the allocator so the next allocate() is guaranteed past
// id, without ever moving it backward.
func (a *nodeIDAllocator) advanceTo(id NodeID) {
	for {
		cur := atomic.LoadInt64(&a.next)
		if int64(id) <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&a.next, cur, int64(id)) {
			return
		}
	}
}

// RefKind distinguishes the entity a Ref points at, for type-wide event
// subscriptions (see Bus.SubscribeKind).
type RefKind int

const (
	RefKindTrack RefKind = iota
	RefKindLane
	RefKindProcessor
	RefKindParameter
	RefKindConnection
	RefKindView
	RefKindIOSection
	RefKindDocument
)

func (k RefKind) String() string {
	switch k {
	case RefKindTrack:
		return "track"
	case RefKindLane:
		return "lane"
	case RefKindProcessor:
		return "processor"
	case RefKindParameter:
		return "parameter"
	case RefKindConnection:
		return "connection"
	case RefKindView:
		return "view"
	case RefKindIOSection:
		return "io_section"
	default:
		return "unknown"
	}
}

// Ref names a single node in the tree for event dispatch and for undoable
// action bookkeeping. Exactly the fields relevant to Kind are meaningful;
// the rest are zero.
type Ref struct {
	Kind      RefKind
	TrackID   TrackID
	NodeID    NodeID
	ParamID   string
	ConnKey   ConnectionKey
}

func TrackRef(id TrackID) Ref { return Ref{Kind: RefKindTrack, TrackID: id} }
func LaneRef(trackID TrackID) Ref { return Ref{Kind: RefKindLane, TrackID: trackID} }
func ProcessorRef(id NodeID) Ref { return Ref{Kind: RefKindProcessor, NodeID: id} }
func ParameterRef(node NodeID, id string) Ref {
	return Ref{Kind: RefKindParameter, NodeID: node, ParamID: id}
}
func ConnectionRef(k ConnectionKey) Ref { return Ref{Kind: RefKindConnection, ConnKey: k} }
func ViewRef() Ref                      { return Ref{Kind: RefKindView} }
func IOSectionRef() Ref                 { return Ref{Kind: RefKindIOSection} }
func DocumentRef() Ref                  { return Ref{Kind: RefKindDocument} }
