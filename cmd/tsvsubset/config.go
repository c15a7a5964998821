package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hupe1980/tsvsubset"
	"github.com/hupe1980/tsvsubset/resource"
	"github.com/hupe1980/tsvsubset/scan"
	"github.com/hupe1980/tsvsubset/sink"
	"github.com/spf13/pflag"
)

// inputConfig locates the dataset files.
type inputConfig struct {
	Input string

	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	S3Staging   string

	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool

	ChunkSize int
	IOLimit   int64
}

func (c *inputConfig) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Input, "input", "i", ".", "Input location: a directory, s3://bucket/prefix or minio://host:port/bucket/prefix.")
	fs.StringVar(&c.S3Region, "s3-region", "", "AWS region for s3:// inputs.")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", "", "Custom endpoint for s3:// inputs.")
	fs.BoolVar(&c.S3PathStyle, "s3-path-style", false, "Use path-style addressing for s3:// inputs.")
	fs.StringVar(&c.S3Staging, "s3-staging", "", "Download s3:// inputs to this directory before scanning.")
	fs.StringVar(&c.MinioAccessKey, "minio-access-key", "", "Access key for minio:// inputs.")
	fs.StringVar(&c.MinioSecretKey, "minio-secret-key", "", "Secret key for minio:// inputs.")
	fs.BoolVar(&c.MinioSecure, "minio-secure", true, "Use TLS for minio:// inputs.")
	fs.IntVar(&c.ChunkSize, "chunk-size", scan.DefaultChunkSize, "Scan buffer size in bytes; also the longest accepted record.")
	fs.Int64Var(&c.IOLimit, "io-limit", 0, "Maximum input bytes per second across all scans (0 = unlimited).")
}

// logConfig selects the log handler.
type logConfig struct {
	LogFormat string
	LogLevel  string
}

func (c *logConfig) bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogFormat, "log-format", "text", "Log format: text or json.")
	fs.StringVar(&c.LogLevel, "log-level", "info", "Minimum log level: debug, info, warn or error.")
}

func (c *logConfig) logger() (*tsvsubset.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text":
		return tsvsubset.NewTextLogger(level), nil
	case "json":
		return tsvsubset.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
}

// runConfig holds every option of the run command.
type runConfig struct {
	inputConfig
	logConfig

	Seeds               []string
	SeedFile            string
	SeedQuery           string
	SeedDriver          string
	SeedDSN             string
	SeedDynamoTable     string
	SeedDynamoAttribute string

	SinkDriver   string
	SinkDSN      string
	Replace      bool
	CreateTables bool
	NullToken    string

	CreditsFile string
	PersonsFile string
	TitleScoped []string
	RatingsFile string
	CrewFile    string

	MemoryLimit      int64
	MaxScans         int64
	ProgressInterval time.Duration

	MetricsTextfile string
	Report          string
	ReportFormat    string
}

func (c *runConfig) bind(fs *pflag.FlagSet) {
	c.inputConfig.bind(fs)
	c.logConfig.bind(fs)

	fs.StringSliceVar(&c.Seeds, "seed", nil, "Seed title identifiers.")
	fs.StringVar(&c.SeedFile, "seed-file", "", "Local file with one seed title identifier per line, optionally compressed.")
	fs.StringVar(&c.SeedQuery, "seed-query", "", "SQL query returning seed title identifiers in its first column.")
	fs.StringVar(&c.SeedDriver, "seed-driver", "", "Database driver for --seed-query (defaults to --sink-driver).")
	fs.StringVar(&c.SeedDSN, "seed-dsn", "", "Data source name for --seed-query (defaults to --sink-dsn).")
	fs.StringVar(&c.SeedDynamoTable, "seed-dynamodb-table", "", "DynamoDB table holding seed title identifiers.")
	fs.StringVar(&c.SeedDynamoAttribute, "seed-dynamodb-attribute", "tconst", "String attribute of --seed-dynamodb-table holding the identifier.")

	fs.StringVar(&c.SinkDriver, "sink-driver", "sqlite", "Database driver: sqlite, postgres or mysql.")
	fs.StringVar(&c.SinkDSN, "sink-dsn", "", "Data source name of the destination database.")
	fs.BoolVar(&c.Replace, "replace", false, "Delete existing rows of every destination table in the same transaction.")
	fs.BoolVar(&c.CreateTables, "create-tables", false, "Create missing destination tables with text columns.")
	fs.StringVar(&c.NullToken, "null-token", sink.DefaultNullToken, "Field value stored as NULL; empty stores every field verbatim.")

	fs.StringVar(&c.CreditsFile, "credits-file", tsvsubset.IMDbCredits().File, "Credits dataset file.")
	fs.StringVar(&c.PersonsFile, "persons-file", tsvsubset.IMDbPersons().File, "Person dataset file.")
	fs.StringSliceVar(&c.TitleScoped, "title-scoped", []string{"ratings", "crew"}, "Title-scoped datasets to extract (ratings, crew).")
	fs.StringVar(&c.RatingsFile, "ratings-file", tsvsubset.IMDbRatings().File, "Ratings dataset file.")
	fs.StringVar(&c.CrewFile, "crew-file", tsvsubset.IMDbCrew().File, "Crew dataset file.")

	fs.Int64Var(&c.MemoryLimit, "memory-limit", 0, "Maximum bytes of matched rows held until commit (0 = unlimited).")
	fs.Int64Var(&c.MaxScans, "max-scans", 3, "Maximum concurrent dataset scans.")
	fs.DurationVar(&c.ProgressInterval, "progress-interval", tsvsubset.DefaultProgressInterval, "Minimum time between progress log lines of one scan.")

	fs.StringVar(&c.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run.")
	fs.StringVar(&c.Report, "report", "-", "Write the run report to this file; - for stdout, empty to disable.")
	fs.StringVar(&c.ReportFormat, "report-format", "go-json", "Report codec: json or go-json.")
}

func (c *runConfig) resources() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   c.MemoryLimit,
		MaxConcurrentScans: c.MaxScans,
		IOLimitBytesPerSec: c.IOLimit,
	})
}

func (c *runConfig) datasets() (tsvsubset.Dataset, tsvsubset.Dataset, []tsvsubset.Dataset, error) {
	credits := tsvsubset.IMDbCredits()
	credits.File = c.CreditsFile

	persons := tsvsubset.IMDbPersons()
	persons.File = c.PersonsFile

	var scoped []tsvsubset.Dataset
	for _, name := range c.TitleScoped {
		switch strings.TrimSpace(name) {
		case "ratings":
			d := tsvsubset.IMDbRatings()
			d.File = c.RatingsFile
			scoped = append(scoped, d)
		case "crew":
			d := tsvsubset.IMDbCrew()
			d.File = c.CrewFile
			scoped = append(scoped, d)
		case "":
		default:
			return credits, persons, nil, fmt.Errorf("unknown title-scoped dataset %q", name)
		}
	}
	return credits, persons, scoped, nil
}
