package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/edigest/internal/edifact"
)

var countCmd = &cobra.Command{
	Use:   "count FILE...",
	Short: "Count interchanges, messages, segments, elements and components",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tINTERCHANGES\tMESSAGES\tSEGMENTS\tELEMENTS\tCOMPONENTS")

	var total edifact.Counts
	failed := 0
	for _, path := range args {
		doc, err := load(cmd, path)
		if err != nil {
			printError(cmd, "count", err)
			failed++
			continue
		}
		c := doc.Counts
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", path, c.Interchanges, c.Messages, c.Segments, c.Elements, c.Components)

		total.Files++
		total.Interchanges += c.Interchanges
		total.Messages += c.Messages
		total.Segments += c.Segments
		total.Elements += c.Elements
		total.Components += c.Components
	}
	if total.Files > 1 {
		fmt.Fprintf(tw, "total\t%d\t%d\t%d\t%d\t%d\n", total.Interchanges, total.Messages, total.Segments, total.Elements, total.Components)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
