package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	testCases := []struct {
		name     string
		env      string
		expected zerolog.Level
	}{
		{name: "given development should log trace", env: "development", expected: zerolog.TraceLevel},
		{name: "given test should log debug", env: "test", expected: zerolog.DebugLevel},
		{name: "given production should log info", env: "production", expected: zerolog.InfoLevel},
		{name: "given empty env should log info", env: "", expected: zerolog.InfoLevel},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, LevelFor(tc.env))
		})
	}
}

func TestNewLoggerAttachesRequestID(t *testing.T) {
	buf := bytes.Buffer{}
	logger := NewLogger(&buf, "production")
	c := AttachRequestIDToContext(context.Background(), "req-42")

	logger.Info().Ctx(c).Msg("checkout started")
	logger.Debug().Ctx(c).Msg("dropped below info")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	event := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, "req-42", event[KeyRequestID])
	assert.NotContains(t, event, KeyTraceID)
}
