package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zellij-org/zellij-go/internal/ipc"
)

func newKillSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill-session <name>",
		Short: "Tell a running session to exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			client, err := ipc.Dial(name, ipc.ClientMessage{Kind: ipc.MsgNewClient})
			if err != nil {
				return fmt.Errorf("connect to session %q: %w", name, err)
			}
			defer client.Close()

			if err := client.Send(ipc.ClientMessage{Kind: ipc.MsgKillSession}); err != nil {
				return fmt.Errorf("send kill-session to %q: %w", name, err)
			}
			fmt.Printf("Sent kill-session to %q.\n", name)
			return nil
		},
	}
}
