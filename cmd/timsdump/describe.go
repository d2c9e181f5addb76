package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <frame-id>",
		Short: "Dump the raw metadata row of one frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frameID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid frame id %q", args[0])
			}
			session, err := openSession()
			if err != nil {
				return err
			}
			defer session.Close()

			row, err := session.DescribeFrame(frameID)
			if err != nil {
				return err
			}

			cols := make([]string, 0, len(row))
			for col := range row {
				cols = append(cols, col)
			}
			sort.Strings(cols)

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Column", "Value"})
			for _, col := range cols {
				t.AppendRow(table.Row{col, fmt.Sprintf("%v", row[col])})
			}
			t.Render()
			return nil
		},
	}
}
