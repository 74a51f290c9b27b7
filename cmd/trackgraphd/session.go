package main

import (
	"os"
	"strconv"

	"github.com/shaban/trackgraph/document"
	"github.com/shaban/trackgraph/persistence"
	"github.com/shaban/trackgraph/ports"
)

// withSession loads the document at sessionPath (or starts a fresh one if
// the file doesn't exist yet), runs fn against an app bound to it, and
// saves the result back. Each invocation of trackgraphd is one edit; the
// undo history doesn't survive the process, mirroring §6's command-surface
// boundary rather than the in-process UndoManager's own lifetime.
func withSession(fn func(a *app) error) error {
	doc, err := loadOrNew(sessionPath)
	if err != nil {
		return err
	}

	a := newApp(doc, ports.NewDarwinPluginManager())
	if err := fn(a); err != nil {
		return err
	}

	return persistence.SaveToFile(doc, sessionPath)
}

func loadOrNew(path string) (*document.Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WithField("path", path).Info("starting new session")
		return document.New(), nil
	}
	return persistence.LoadFromFile(path)
}

func parseNodeID(s string) (document.NodeID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	return document.NodeID(n), err
}
