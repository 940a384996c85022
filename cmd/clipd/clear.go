package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/message"
)

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire history",
		Long: `Deletes every stored entry. The current clipboard contents are left
untouched. Asks for confirmation unless --yes is given or stdin is not a
terminal.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runClear(v) },
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	addConfigFlag(cmd)

	return cmd
}

func runClear(v *viper.Viper) error {
	if !v.GetBool("yes") && confirmNeeded() {
		fmt.Print("Delete the entire clipboard history? [y/N] ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if _, err := request(&message.Message{Type: message.TypeClear}); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}

func confirmNeeded() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
