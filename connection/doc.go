// Package connection implements the connection engine (§4.2): deriving
// default connections as the document's topology changes, validating
// candidate connections (channel matching, cycle avoidance), and the
// custom-vs-default taxonomy.
//
// It operates purely on a *document.Document; it never touches the live
// graph — this package only computes deltas; the document emits Connection
// add/remove events when they are applied, and the graph package listens to
// those and mirrors them into the running engine.
package connection
