package tsvsubset

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/hupe1980/tsvsubset/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Run(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := New(imdbStore(t), seedTitles(), sink.NewMemory(), WithLogger(logger))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"seed loaded"`)
	assert.Contains(t, out, `"dataset":"persons"`)
	assert.Contains(t, out, `"msg":"scan progress"`)
	assert.Contains(t, out, `"key_bytes":`)
	assert.Contains(t, out, `"msg":"commit completed"`)
	assert.Contains(t, out, `"rows":8`)
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
