// Package persistence saves and loads a document.Document as XML.
//
// Generalizes the teacher's Serializer (serializer.go, since deleted as
// superseded: its EngineState/SaveToJSON/LoadFromJSON round-trip pattern
// is kept, but the typed-tree load/save shape is rebuilt for the
// tracks/lanes/slots model instead of the flat channel-state).
//
// XML (stdlib encoding/xml) rather than a pack library is deliberate: no
// example repo in the retrieved corpus imports a document-tree
// serialization library, and a session file is read rarely enough that
// stdlib's reflection-based encoder's overhead does not matter. See
// DESIGN.md.
package persistence
