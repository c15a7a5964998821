package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.ReserveMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.ReserveMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Over the limit: fails without blocking and without accounting.
	err := c.ReserveMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimit)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.ReserveMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	require.NoError(t, c.ReserveMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.ReserveMemory(10))
	require.NoError(t, c.AcquireScan(context.Background()))
	require.NoError(t, c.AcquireIO(context.Background(), 10))
	c.ReleaseScan()
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())
}

func TestController_Scans(t *testing.T) {
	c := NewController(Config{MaxConcurrentScans: 2})

	require.NoError(t, c.AcquireScan(context.Background()))
	require.NoError(t, c.AcquireScan(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireScan(ctx), context.DeadlineExceeded)

	c.ReleaseScan()
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	require.NoError(t, c.AcquireScan(ctx2))
}

func TestController_DefaultScans(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(3), c.Config().MaxConcurrentScans)
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	data := bytes.Repeat([]byte("x"), 3<<20)

	r := NewRateLimitedReader(context.Background(), bytes.NewReader(data), c)
	buf := make([]byte, 4<<20)

	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, n, "reads are clamped to the burst")
}

func TestRateLimitedReader_Canceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRateLimitedReader(ctx, strings.NewReader("abc"), c)
	_, err := r.Read(make([]byte, 3))
	assert.ErrorIs(t, err, context.Canceled)

	// Unlimited readers still observe cancellation.
	r = NewRateLimitedReader(ctx, strings.NewReader("abc"), nil)
	_, err = r.Read(make([]byte, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountingReader(t *testing.T) {
	r := NewCountingReader(strings.NewReader("hello world"))
	_, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(11), r.Count())
}
