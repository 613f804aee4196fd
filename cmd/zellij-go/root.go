package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root cobra command with every subcommand
// attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zellij-go",
		Short: "Terminal multiplexer",
		Long:  "zellij-go multiplexes terminal panes and tabs within a session, attachable from multiple clients over a Unix domain socket.",
	}

	rootCmd.AddCommand(
		newNewSessionCmd(),
		newAttachCmd(),
		newListSessionsCmd(),
		newKillSessionCmd(),
		newResurrectCmd(),
	)

	return rootCmd
}
