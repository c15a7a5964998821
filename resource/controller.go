// Package resource bounds the memory, concurrency and input bandwidth of an
// import run.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimit is returned when buffered rows would exceed the configured
// memory budget.
var ErrMemoryLimit = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the bytes of matched rows held until commit.
	// If 0, no limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentScans is the maximum number of dataset scans running at
	// once. If 0, defaults to 3.
	MaxConcurrentScans int64

	// IOLimitBytesPerSec is the maximum input throughput across all scans.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages resources shared by the scans of one run.
type Controller struct {
	cfg Config

	// Memory
	memUsed atomic.Int64

	// Concurrency
	scanSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
	ioBurst   int
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentScans <= 0 {
		cfg.MaxConcurrentScans = 3
	}

	c := &Controller{
		cfg:     cfg,
		scanSem: semaphore.NewWeighted(cfg.MaxConcurrentScans),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioBurst = int(cfg.IOLimitBytesPerSec)
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.ioBurst)
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// ReserveMemory accounts bytes of buffered rows. Buffered rows are only
// released by the commit, so a reservation over the limit fails instead of
// waiting.
func (c *Controller) ReserveMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	for {
		used := c.memUsed.Load()
		if c.cfg.MemoryLimitBytes > 0 && used+bytes > c.cfg.MemoryLimitBytes {
			return fmt.Errorf("%w: %d of %d bytes in use", ErrMemoryLimit, used, c.cfg.MemoryLimitBytes)
		}
		if c.memUsed.CompareAndSwap(used, used+bytes) {
			return nil
		}
	}
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireScan reserves a scan slot, blocking while all slots are busy.
func (c *Controller) AcquireScan(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.scanSem.Acquire(ctx, 1)
}

// ReleaseScan releases a scan slot.
func (c *Controller) ReleaseScan() {
	if c == nil {
		return
	}
	c.scanSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests above the burst size are clamped to it.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	if bytes > c.ioBurst {
		bytes = c.ioBurst
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// maxIORequest returns the largest read a single AcquireIO can cover, or 0
// when IO is unlimited.
func (c *Controller) maxIORequest() int {
	if c == nil || c.ioLimiter == nil {
		return 0
	}
	return c.ioBurst
}
