package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go.klb.dev/clipd/internal/message"
)

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <id|checksum>",
		Short: "Place a history entry back on the clipboard",
		Long: `Writes the given entry's content to the clipboard and moves it to the
front of the history. The argument is a numeric entry ID, or a hex
checksum when scripting against content identity. Use "clipd history"
to find either.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error { return runSelect(args[0]) },
	}
	addConfigFlag(cmd)
	return cmd
}

func runSelect(arg string) error {
	msg := &message.Message{Type: message.TypeSelect}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		msg.ID = id
	} else {
		msg.Checksum = arg
	}
	if _, err := request(msg); err != nil {
		return err
	}
	fmt.Printf("Entry %s selected.\n", arg)
	return nil
}
