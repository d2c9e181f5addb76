package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSpectrumCommand() *cobra.Command {
	var withPrecursor bool
	cmd := &cobra.Command{
		Use:   "spectrum <scan-id>",
		Short: "Decode one scan or merged scan range to (m/z, intensity) pairs",
		Long: `Decode a scan addressed by its identifier string, either
"frame=<id> scan=<n>" for a single mobility scan or
"frame=<id> startScan=<a> endScan=<b>" for a merged range. Merged
ranges are centroided and reprofiled into one continuous spectrum.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			defer session.Close()

			ref, err := session.GetScanByID(args[0])
			if err != nil {
				return err
			}

			if withPrecursor {
				pinfo, err := session.PrecursorInformation(ref)
				if err != nil {
					return err
				}
				if pinfo != nil {
					fmt.Printf("# precursor mz=%g charge=%d intensity=%g 1/K0=%g from %q\n",
						pinfo.Mz, pinfo.Charge, pinfo.Intensity,
						pinfo.InverseMobility, pinfo.PrecursorScanID)
				}
				window, err := session.IsolationWindow(ref)
				if err != nil {
					return err
				}
				if window != nil {
					fmt.Printf("# isolation target=%g -%g/+%g\n",
						window.Target, window.LowerOffset, window.UpperOffset)
				}
			}

			mz, intensity, err := session.ScanArrays(ref)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			for i := range mz {
				fmt.Fprintf(w, "%.6f\t%.1f\n", mz[i], intensity[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withPrecursor, "precursor", "p", false, "print precursor and isolation metadata first")
	return cmd
}
