package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	avengine "github.com/shaban/trackgraph/avaudio/engine"
	"github.com/shaban/trackgraph/connection"
	"github.com/shaban/trackgraph/engine/queue"
	enginespec "github.com/shaban/trackgraph/engine/spec"
	"github.com/shaban/trackgraph/graph"
	"github.com/shaban/trackgraph/persistence"
	"github.com/shaban/trackgraph/ports"
	"github.com/shaban/trackgraph/session"
)

var configPath string

// newServeCmd starts the long-running graph coordinator: it boots a real
// AVAudioEngine, loads the session document once, attaches a
// graph.Coordinator and a parameter flush timer, and saves the document
// when interrupted. The document's existing connections are not replayed
// into the engine at startup, and the session file is not watched or
// reloaded while it runs. Distinct from every other
// subcommand, which perform one edit and exit.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live audio graph for the loaded session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "engine config YAML (defaults to 48kHz/512 samples)")
	return cmd
}

func runServe() error {
	engineCfg := ports.DefaultEngineConfig()
	if configPath != "" {
		var err error
		engineCfg, err = ports.LoadEngineConfig(configPath)
		if err != nil {
			return err
		}
	}

	audioSpec := session.AudioSpec{
		PreferredSampleRate: engineCfg.SampleRate,
		LatencyHint:         session.LatencyMedium,
		BufferSize:          engineCfg.BufferSize,
	}
	resolved := enginespec.Resolve(audioSpec)

	eng, err := avengine.New(resolved)
	if err != nil {
		return fmt.Errorf("start audio engine: %w", err)
	}
	defer eng.Destroy()

	disp := queue.NewDispatcher(eng, nil)
	disp.Start()
	defer disp.Close()

	doc, err := loadOrNew(sessionPath)
	if err != nil {
		return err
	}
	conn := connection.New(doc)
	coord := graph.NewCoordinator(doc, conn, ports.NewDarwinPluginManager(), disp)
	flush := graph.NewFlushTimer()
	flush.Start()
	defer flush.Stop()

	log.WithFields(map[string]any{
		"sample_rate": resolved.SampleRate,
		"buffer_size": resolved.BufferSize,
		"tracks":      len(doc.NonMasterTracks()),
	}).Info("graph coordinator running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down, saving session")
	coord.PauseGraphUpdates()
	return persistence.SaveToFile(doc, sessionPath)
}
