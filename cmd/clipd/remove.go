package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go.klb.dev/clipd/internal/message"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a single history entry",
		Args:  cobra.ExactArgs(1),
		RunE:  func(_ *cobra.Command, args []string) error { return runRemove(args[0]) },
	}
	addConfigFlag(cmd)
	return cmd
}

func runRemove(arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", arg)
	}
	if _, err := request(&message.Message{Type: message.TypeRemove, ID: id}); err != nil {
		return err
	}
	fmt.Printf("Entry %d removed.\n", id)
	return nil
}
