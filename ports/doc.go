// Package ports declares the external collaborator interfaces named in
// spec §6 — audio device manager, plugin manager, MIDI input multiplexer
// and command surface (persistence lives in package persistence) — plus the macOS-grounded
// implementations backing them in this repository: shaban/macaudio's
// devices and plugins packages, gomidi/midi and rakyll/portmidi for MIDI,
// and cobra for the command surface (see cmd/trackgraphd).
//
// Everything in this package is a provided or consumed boundary (§6): the
// core (document/connection/action/graph) depends only on the interfaces
// here, never on the concrete darwin-only implementations directly.
package ports
