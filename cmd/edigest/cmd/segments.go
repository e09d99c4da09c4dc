package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/edigest/internal/edifact"
)

var segmentTags []string

var segmentsCmd = &cobra.Command{
	Use:   "segments FILE",
	Short: "Print message segments, optionally filtered by tag",
	Long: `Print the content segments of every message in FILE, one per line.

Envelope segments (UNB, UNH, UNT, UNZ) are not part of message content
and are never printed.

Lines use the interchange notation for readability only. They are a view of
the parsed tree, not interchange output: terminators are omitted and values
are not guaranteed to round-trip.`,
	Example: `  edigest segments orders.edi --tag BGM --tag DTM`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSegments,
}

func init() {
	segmentsCmd.Flags().StringSliceVarP(&segmentTags, "tag", "t", nil, "Segment tag to print (repeatable)")
	rootCmd.AddCommand(segmentsCmd)
}

func runSegments(cmd *cobra.Command, args []string) error {
	doc, err := load(cmd, args[0])
	if err != nil {
		return err
	}

	tags := make([]string, len(segmentTags))
	for i, t := range segmentTags {
		tags[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	sc := edifact.NewSegmentCollector(tags...)
	edifact.Walk(sc, doc.File)
	for _, seg := range sc.Segments {
		fmt.Fprintln(cmd.OutOrStdout(), renderSegment(seg, doc.Delimiters))
	}
	log.Debug("segments", "path", args[0], "tags", tags, "matched", len(sc.Segments))
	return nil
}
