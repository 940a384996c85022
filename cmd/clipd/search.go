package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/message"
)

func newSearchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the history by substring",
		Long: `Searches stored text content and labels for a substring and lists the
matches, most recently used first. Image and file entries match on their
label only.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runSearch(v, args[0]) },
	}

	f := cmd.Flags()
	f.Int("limit", 0, "maximum entries to list (0 = daemon's history-size)")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runSearch(v *viper.Viper, query string) error {
	resp, err := request(&message.Message{
		Type:  message.TypeSearch,
		Query: query,
		Limit: v.GetInt("limit"),
	})
	if err != nil {
		return err
	}
	return printEntries(resp.Items, v.GetBool("json"))
}
