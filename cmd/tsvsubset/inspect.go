package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/tsvsubset"
	"github.com/hupe1980/tsvsubset/codec"
	"github.com/hupe1980/tsvsubset/resource"
	"github.com/spf13/cobra"
)

type inspectConfig struct {
	inputConfig
	ReportFormat string
}

func newInspectCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &inspectConfig{}

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Report record counts and field widths of dataset files.",
		Long: `Inspect reads every record of the given files from --input without filtering
and reports the header, record count, field width range and byte counts.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), c, args, stdout)
		},
	}
	c.inputConfig.bind(cmd.Flags())
	cmd.Flags().StringVar(&c.ReportFormat, "report-format", "go-json", "Report codec: json or go-json.")
	return cmd
}

func runInspect(ctx context.Context, c *inspectConfig, files []string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	enc, ok := codec.ByName(c.ReportFormat)
	if !ok {
		return fmt.Errorf("unknown report format %q", c.ReportFormat)
	}

	store, err := openStore(ctx, &c.inputConfig)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: c.IOLimit})

	for _, f := range files {
		rep, err := tsvsubset.Inspect(ctx, store, f, c.ChunkSize, rc)
		if err != nil {
			return err
		}
		if err := writeReport("-", enc, rep, stdout); err != nil {
			return err
		}
	}
	return nil
}
