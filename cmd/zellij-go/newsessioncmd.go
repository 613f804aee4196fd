package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zellij-org/zellij-go/internal/config"
	"github.com/zellij-org/zellij-go/internal/logging"
	"github.com/zellij-org/zellij-go/internal/server"
)

func newNewSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-session <name>",
		Short: "Start a session's server and run it until killed or attached away",
		Long: `Start a session's server in the foreground. A session started this
way claims its socket immediately, so "attach <name>" from another
terminal can connect to it right away; run it under your shell's own
job control (or a terminal multiplexer of its own) to background it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNewSession(args[0])
		},
	}
}

func runNewSession(name string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.Open(name)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Close()

	sess, err := server.Open(name, cfg, logger)
	if err != nil {
		return fmt.Errorf("open session %q: %w", name, err)
	}

	sess.Run()
	return nil
}
