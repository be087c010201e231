package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Write(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "BTCUSDT_ma_crossover")

	l.Info("loaded %d bars", 500)
	l.Warn("short history")
	l.Trade("BUY", 0.5, 30000)

	out := buf.String()
	assert.Contains(t, out, "[INFO] [BTCUSDT_ma_crossover] loaded 500 bars")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[TRADE] [BTCUSDT_ma_crossover] BUY 0.500000 @ 30000.0000")
}

func TestNewFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := NewFileLogger(dir, "run")
	require.NoError(t, err)

	l.Info("hello")
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	l := New(&bytes.Buffer{}, "run")
	assert.NoError(t, l.Close())
}
