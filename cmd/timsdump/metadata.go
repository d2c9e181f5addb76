package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newMetadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Show acquisition, instrument and software metadata",
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

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Field", "Value"})
			t.AppendRows([]table.Row{
				{"Acquisition date", md.Acquisition.AcquisitionDate},
				{"Operator", md.Acquisition.OperatorName},
				{"Scan window lower", md.Acquisition.ScanWindowLower},
				{"Scan window upper", md.Acquisition.ScanWindowUpper},
				{"Instrument family", md.Instrument.InstrumentFamily},
				{"Instrument revision", md.Instrument.InstrumentRevision},
				{"Serial number", md.Instrument.SerialNumber},
				{"Acquisition software", md.AcquisitionSoftware.Name},
				{"Acquisition software version", md.AcquisitionSoftware.Version},
			})
			t.Render()
			return nil
		},
	}
}
