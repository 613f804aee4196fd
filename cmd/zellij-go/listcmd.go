package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zellij-org/zellij-go/internal/ipc"
)

func newListSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list-sessions",
		Aliases: []string{"ls"},
		Short:   "List sessions and whether they're attachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := ipc.ListSessions()
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}
			for _, s := range sessions {
				symbol := "\033[32m●\033[0m" // green: live
				if s.Status == ipc.StatusDead {
					symbol = "\033[31m✗\033[0m" // red: dead, not attachable
				}
				fmt.Printf("  %s %s\n", symbol, s.Name)
			}
			return nil
		},
	}
}
