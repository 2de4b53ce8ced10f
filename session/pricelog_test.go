package session

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLogger_AppendAndHeader(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewPriceLogger(dir)
	require.NoError(t, err)
	defer logger.Close()

	at := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	require.NoError(t, logger.Append(at, 1.2345))
	require.NoError(t, logger.Append(at.Add(15*time.Second), 1.2350))

	content, err := os.ReadFile(logger.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,price", lines[0])
	assert.Contains(t, lines[1], "2026-08-23 12:00:00")
	assert.Contains(t, lines[1], "1.2345")
}

func TestPriceLogger_FilenamePattern(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewPriceLogger(dir)
	require.NoError(t, err)
	defer logger.Close()

	assert.Contains(t, logger.Path(), "price_log_")
	assert.True(t, strings.HasSuffix(logger.Path(), ".csv"))
}
