// Package selection implements §4.5's grid-relative navigation: moving
// focus and selection across the track/slot grid with arrow keys, and
// keeping the view's auto-scroll offsets in sync with the focused cell.
//
// It holds no state of its own; it reads document.Document's current
// Tracks/View and returns action.Action values the caller commits through
// an action.UndoManager (navigation that changes selection is undoable;
// view-offset scrolling is not, per document.Document.SetViewOffsets).
package selection
