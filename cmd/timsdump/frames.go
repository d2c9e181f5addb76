package main

import (
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newFramesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "frames",
		Short: "Summarise frame counts by acquisition type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			defer session.Close()

			md, err := session.ReadMetadata()
			if err != nil {
				return err
			}

			labels := make([]string, 0, len(md.FrameCounts))
			for label := range md.FrameCounts {
				if label != "Total" {
					labels = append(labels, label)
				}
			}
			sort.Strings(labels)

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Frame Type", "Count"})
			for _, label := range labels {
				t.AppendRow(table.Row{label, md.FrameCounts[label]})
			}
			t.AppendFooter(table.Row{"Total", md.FrameCounts["Total"]})
			t.Render()
			return nil
		},
	}
}
