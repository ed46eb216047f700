package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, NewLogger("test", false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, NewLogger("test", true).GetLevel())
}

func TestNewFileLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardbox.log")

	log := NewFileLogger(path, "cardbox", false)
	log.Info().Str("card_id", "ann-1").Msg("card persisted")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))

	assert.Equal(t, "cardbox", entry["role"])
	assert.Equal(t, "ann-1", entry["card_id"])
	assert.Equal(t, "card persisted", entry["message"])
	assert.NotEmpty(t, entry["ts"])
	assert.NotEmpty(t, entry["func"])
}

func TestFromContext_RoundTrip(t *testing.T) {
	log := Nop()
	ctx := log.WithContext(context.Background())

	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, zerolog.Disabled, got.GetLevel())
}
