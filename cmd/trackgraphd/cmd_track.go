package main

import "github.com/spf13/cobra"

func newInsertTrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert-track",
		Short: "Append a new track with an auto-inserted balance processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(a *app) error { return a.InsertTrack() })
		},
	}
}

func newAddMixerChannelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-mixer-channel",
		Short: "Append a new mixer channel and focus it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(a *app) error { return a.AddMixerChannel() })
		},
	}
}

func newDeleteSelectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-selected",
		Short: "Delete every selected track and processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(a *app) error { return a.DeleteSelected() })
		},
	}
}

func newDuplicateSelectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate-selected",
		Short: "Duplicate every selected processor next to the focused cell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(a *app) error { return a.DuplicateSelected() })
		},
	}
}
