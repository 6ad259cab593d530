package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/churchai-session/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	t.Run("json outside DEV", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup("PROD", "warn", &buf)
		logger.Info().Msg("hidden")
		logger.Warn().Str("user_id", "u1").Msg("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "shown", entry["message"])
		require.Equal(t, "u1", entry["user_id"])
	})

	t.Run("console writer in DEV", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup("DEV", "debug", &buf)
		logger.Debug().Msg("hola")
		require.Contains(t, buf.String(), "hola")
		require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logging.Setup("PROD", "verbose", &bytes.Buffer{})
		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}
