package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/message"
)

func newHistoryCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the clipboard history, newest first",
		Long: `Lists stored history entries, most recently used first. Image and
file entries show a placeholder label ("[Image 640x480]", "[3 files]")
instead of content.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runHistory(v) },
	}

	f := cmd.Flags()
	f.Int("limit", 0, "maximum entries to list (0 = daemon's history-size)")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runHistory(v *viper.Viper) error {
	resp, err := request(&message.Message{
		Type:  message.TypeList,
		Limit: v.GetInt("limit"),
	})
	if err != nil {
		return err
	}
	return printEntries(resp.Items, v.GetBool("json"))
}
