package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/tsvsubset"
	"github.com/hupe1980/tsvsubset/codec"
	"github.com/hupe1980/tsvsubset/observability"
	"github.com/hupe1980/tsvsubset/sink"
	"github.com/spf13/cobra"
)

func newRunCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract the subset and commit it to the destination database.",
		Long: `Run loads the seed titles, scans every dataset and commits all matched rows
in one transaction. Any malformed input aborts the run without writing.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), c, stdout)
		},
	}
	c.bind(cmd.Flags())
	return cmd
}

func runRun(ctx context.Context, c *runConfig, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := c.logger()
	if err != nil {
		return err
	}

	enc, ok := codec.ByName(c.ReportFormat)
	if !ok {
		return fmt.Errorf("unknown report format %q", c.ReportFormat)
	}

	credits, persons, scoped, err := c.datasets()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, &c.inputConfig)
	if err != nil {
		return err
	}

	seeds, closeSeed, err := openSeed(ctx, c)
	if err != nil {
		return err
	}
	defer closeSeed()

	db, err := openDB(c.SinkDriver, c.SinkDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sinkOpts := []sink.SQLOption{}
	if c.Replace {
		sinkOpts = append(sinkOpts, sink.WithReplace())
	}
	if c.CreateTables {
		sinkOpts = append(sinkOpts, sink.WithCreateTables())
	}
	if c.NullToken == "" {
		sinkOpts = append(sinkOpts, sink.WithoutNullToken())
	} else {
		sinkOpts = append(sinkOpts, sink.WithNullToken(c.NullToken))
	}

	metrics := observability.NewPrometheusCollector()

	p, err := tsvsubset.New(store, seeds, sink.NewSQL(db, sinkOpts...),
		tsvsubset.WithCredits(credits),
		tsvsubset.WithPersons(persons),
		tsvsubset.WithTitleScoped(scoped...),
		tsvsubset.WithChunkSize(c.ChunkSize),
		tsvsubset.WithLogger(logger),
		tsvsubset.WithMetricsCollector(metrics),
		tsvsubset.WithResourceController(c.resources()),
		tsvsubset.WithProgressInterval(c.ProgressInterval),
	)
	if err != nil {
		return err
	}

	report, runErr := p.Run(ctx)

	if c.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(c.MetricsTextfile); err != nil {
			logger.Error("writing metrics textfile", "path", c.MetricsTextfile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	return writeReport(c.Report, enc, report, stdout)
}

// writeReport encodes v to path, or to stdout for "-".
func writeReport(path string, enc codec.Codec, v any, stdout io.Writer) error {
	if path == "" {
		return nil
	}

	var (
		data []byte
		err  error
	)
	if in, ok := enc.(codec.Indenter); ok {
		data, err = in.Indent(v)
	} else {
		data, err = enc.Marshal(v)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
