package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaban/trackgraph/ports"
)

var (
	createProcessorPluginID string
	createProcessorTrack    int
	createProcessorSlot     int
)

func newCreateProcessorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-processor",
		Short: "Instantiate a plugin and place it at a track/slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if createProcessorPluginID == "" {
				return fmt.Errorf("--plugin is required")
			}
			desc := ports.PluginDescriptor{PluginID: createProcessorPluginID}
			return withSession(func(a *app) error {
				return a.CreateProcessor(desc, createProcessorTrack, createProcessorSlot)
			})
		},
	}
	cmd.Flags().StringVar(&createProcessorPluginID, "plugin", "", "plugin identifier (e.g. an Audio Unit component id)")
	cmd.Flags().IntVar(&createProcessorTrack, "track", 0, "target track index")
	cmd.Flags().IntVar(&createProcessorSlot, "slot", 0, "target slot")
	return cmd
}

var toggleBypassNode string

func newToggleBypassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle-bypass",
		Short: "Flip a processor's bypassed flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNodeID(toggleBypassNode)
			if err != nil {
				return fmt.Errorf("--node: %w", err)
			}
			return withSession(func(a *app) error { return a.ToggleBypass(node) })
		},
	}
	cmd.Flags().StringVar(&toggleBypassNode, "node", "", "processor NodeID")
	return cmd
}

var (
	setDefaultConnAllowedNode    string
	setDefaultConnAllowedEnabled bool
)

func newSetDefaultConnectionsAllowedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-default-connections-allowed",
		Short: "Enable or disable default-connection derivation for a processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNodeID(setDefaultConnAllowedNode)
			if err != nil {
				return fmt.Errorf("--node: %w", err)
			}
			return withSession(func(a *app) error {
				return a.SetDefaultConnectionsAllowed(node, setDefaultConnAllowedEnabled)
			})
		},
	}
	cmd.Flags().StringVar(&setDefaultConnAllowedNode, "node", "", "processor NodeID")
	cmd.Flags().BoolVar(&setDefaultConnAllowedEnabled, "allowed", true, "whether default connections are derived for this node")
	return cmd
}

var disconnectAllNode string

func newDisconnectAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect-all",
		Short: "Remove every connection touching a processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNodeID(disconnectAllNode)
			if err != nil {
				return fmt.Errorf("--node: %w", err)
			}
			return withSession(func(a *app) error { return a.DisconnectAll(node) })
		},
	}
	cmd.Flags().StringVar(&disconnectAllNode, "node", "", "processor NodeID")
	return cmd
}

var disconnectCustomNode string

func newDisconnectCustomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect-custom",
		Short: "Remove a processor's custom connections and recompute its defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNodeID(disconnectCustomNode)
			if err != nil {
				return fmt.Errorf("--node: %w", err)
			}
			return withSession(func(a *app) error { return a.DisconnectCustom(node) })
		},
	}
	cmd.Flags().StringVar(&disconnectCustomNode, "node", "", "processor NodeID")
	return cmd
}
