package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the conversation so far",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Only show the last n turns")
}

func showHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	turns := a.store.Turns()
	if historyLimit > 0 && len(turns) > historyLimit {
		turns = turns[len(turns)-historyLimit:]
	}

	out := cmd.OutOrStdout()
	if len(turns) == 0 {
		fmt.Fprint(out, a.renderer.Notice("No conversation yet."))
		return nil
	}
	for _, turn := range turns {
		fmt.Fprintln(out, a.renderer.Turn(turn))
	}
	return nil
}
