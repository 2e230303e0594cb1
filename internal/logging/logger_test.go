package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/buml/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithFormat_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithFormat(&buf, slog.LevelInfo, logging.FormatJSON)
	require.NoError(t, err)

	logger.Error("boom", "error", errors.New("disk full"))
	assert.Contains(t, buf.String(), `"err":"disk full"`)
	assert.NotContains(t, buf.String(), `"error":`)
}

func TestNewWithFormat_Unknown(t *testing.T) {
	_, err := logging.NewWithFormat(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.Error(t, err)
}
