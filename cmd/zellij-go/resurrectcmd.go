package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zellij-org/zellij-go/internal/resurrect"
)

func newResurrectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resurrect",
		Short: "Inspect and manage saved session snapshots",
	}
	cmd.AddCommand(newResurrectListCmd(), newResurrectDeleteCmd())
	return cmd
}

func newResurrectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions with a saved snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := resurrect.List()
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if len(names) == 0 {
				fmt.Println("No saved snapshots.")
				return nil
			}
			for _, name := range names {
				fmt.Println(" ", name)
			}
			return nil
		},
	}
}

func newResurrectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resurrect.Delete(args[0]); err != nil {
				return fmt.Errorf("delete snapshot %q: %w", args[0], err)
			}
			fmt.Printf("Deleted snapshot %q.\n", args[0])
			return nil
		},
	}
}
