// trackgraphd — a command-line driver for the track/processor document
// model: one invocation loads a session file, performs a single
// undoable operation against it through ports.CommandSurface, and saves
// the result back. Styled on newtlab's single-binary, per-subcommand
// cobra layout (cmd_status.go, cmd_deploy.go).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	sessionPath string
	log         = logrus.WithField("component", "trackgraphd")
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "trackgraphd",
	Short:             "Drive a track/processor session document from the command line",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `trackgraphd loads a session document, performs one undoable edit,
and saves it back.

  trackgraphd insert-track -s session.xml
  trackgraphd toggle-bypass -s session.xml --node 7
  trackgraphd delete-selected -s session.xml`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sessionPath, "session", "s", "session.xml", "path to the session document")

	rootCmd.AddCommand(
		newInsertTrackCmd(),
		newAddMixerChannelCmd(),
		newDeleteSelectedCmd(),
		newDuplicateSelectedCmd(),
		newCreateProcessorCmd(),
		newToggleBypassCmd(),
		newSetDefaultConnectionsAllowedCmd(),
		newDisconnectAllCmd(),
		newDisconnectCustomCmd(),
		newServeCmd(),
	)
}
