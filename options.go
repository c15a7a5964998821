package tsvsubset

import (
	"time"

	"github.com/hupe1980/tsvsubset/resource"
	"github.com/hupe1980/tsvsubset/scan"
)

// DefaultProgressInterval is the minimum time between progress log lines of
// one scan.
const DefaultProgressInterval = 10 * time.Second

type options struct {
	credits          Dataset
	persons          Dataset
	titleScoped      []Dataset
	chunkSize        int
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
	progressInterval time.Duration
}

// Option configures a Pipeline.
type Option func(*options)

func defaultOptions() options {
	return options{
		credits:          IMDbCredits(),
		persons:          IMDbPersons(),
		titleScoped:      []Dataset{IMDbRatings(), IMDbCrew()},
		chunkSize:        scan.DefaultChunkSize,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		progressInterval: DefaultProgressInterval,
	}
}

// WithCredits replaces the credits dataset.
func WithCredits(d Dataset) Option {
	return func(o *options) {
		o.credits = d
	}
}

// WithPersons replaces the person dataset.
func WithPersons(d Dataset) Option {
	return func(o *options) {
		o.persons = d
	}
}

// WithTitleScoped replaces the datasets filtered by the seed title set alone.
// Call with no arguments to scan none.
func WithTitleScoped(ds ...Dataset) Option {
	return func(o *options) {
		o.titleScoped = ds
	}
}

// WithChunkSize sets the scan buffer capacity, which is also the largest
// accepted record.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController bounds buffered memory, concurrent scans and input
// bandwidth.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithProgressInterval sets the minimum time between progress log lines.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}
