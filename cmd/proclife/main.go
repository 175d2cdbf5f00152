package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// ClientFlags holds flags for commands that talk to a running daemon.
type ClientFlags struct {
	APIUrl   string
	PID      int32
	Priority int
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	clientFlags := &ClientFlags{}

	root := &cobra.Command{
		Use:   "proclife",
		Short: "Importance-based process lifecycle manager",
		Long: `Proclife observes processes, scores their importance from live signals,
maps scores onto Android-style lifecycle states and enforces each state
through cgroups and OOM kill priorities. Under memory pressure it evicts
idle cached processes.

Run with no arguments to attach to all existing processes:
  proclife

Launch and manage a single process:
  proclife launch foreground firefox
  proclife launch background sleep 100

Adjust a tracked process from outside:
  proclife priority --pid 1234 --value -10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(globalFlags.ConfigPath, "", nil)
		},
	}
	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to TOML config file (optional)")

	root.AddCommand(
		createLaunchCommand(globalFlags),
		createPriorityCommand(clientFlags),
		createStatusCommand(clientFlags),
	)
	return root
}

func createLaunchCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <foreground|background> <program> [args...]",
		Short: "Launch a process into a lifecycle group and manage it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(globalFlags.ConfigPath, args[0], args[1:])
		},
	}
}

func createPriorityCommand(clientFlags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priority",
		Short: "Request a manual priority override for a tracked process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postPriority(clientFlags.APIUrl, clientFlags.PID, clientFlags.Priority)
		},
	}
	cmd.Flags().Int32Var(&clientFlags.PID, "pid", 0, "target process id")
	cmd.Flags().IntVar(&clientFlags.Priority, "value", 0, "requested priority in [-20,20]; 0 clears")
	cmd.Flags().StringVar(&clientFlags.APIUrl, "api-url", defaultAPIUrl, "daemon API base URL")
	_ = cmd.MarkFlagRequired("pid")
	return cmd
}

func createStatusCommand(clientFlags *ClientFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tracked processes from a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStatus(cmd.OutOrStdout(), clientFlags.APIUrl)
		},
	}
	cmd.Flags().StringVar(&clientFlags.APIUrl, "api-url", defaultAPIUrl, "daemon API base URL")
	return cmd
}
