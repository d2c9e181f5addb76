// timsdump inspects a Bruker TIMS analysis directory: frame listings,
// raw frame rows, global metadata and decoded spectra. It needs the
// vendor coordinate-conversion library on the host; point
// --config at a TOML file with library.search_paths when it is not on
// the default search path.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iontrace/timsdata/internal/config"
	"github.com/iontrace/timsdata/internal/tims"
)

var (
	analysisDir string
	configPath  string
	verbose     bool
)

func main() {
	root := &cobra.Command{
		Use:           "timsdump",
		Short:         "Inspect Bruker TIMS acquisition data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&analysisDir, "analysis-dir", "d", "", "path to the .d analysis directory")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "timsdump.toml", "path to the TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("analysis-dir")

	root.AddCommand(newFramesCommand())
	root.AddCommand(newDescribeCommand())
	root.AddCommand(newSpectrumCommand())
	root.AddCommand(newMetadataCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "timsdump:", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// openSession loads the configuration and opens the analysis
// directory. Callers own the returned session and must Close it.
func openSession() (*tims.Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return tims.Open(analysisDir, tims.Options{
		LibraryPaths:         cfg.Library.SearchPaths,
		UseRecalibratedState: cfg.Library.UseRecalibratedState,
		MaxFrameBytes:        cfg.Buffer.MaxFrameBytes,
		FrameBufferHint:      cfg.Buffer.InitialUnits,
		FrameCacheSize:       cfg.Cache.FrameCacheSize,
		Merge:                tims.MergeParameters{FWHM: cfg.Merge.FWHM, DX: cfg.Merge.DX},
		Logger:               newLogger(),
	})
}
