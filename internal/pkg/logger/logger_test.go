package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(level Level, redact bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(zapcore.AddSync(&buf), level, redact), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestLogger_WritesStructuredJSON(t *testing.T) {
	l, buf := newBufferLogger(INFO, false)
	l.Info("subscriber added", "request_id", "abc-123", "count", 2)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "subscriber added", entries[0]["msg"])
	assert.Equal(t, "abc-123", entries[0]["request_id"])
	assert.Equal(t, "2", entries[0]["count"])
	assert.Contains(t, entries[0], "time")
}

func TestLogger_ZapReceivesStandardLog(t *testing.T) {
	l, buf := newBufferLogger(INFO, true)
	restore := zap.RedirectStdLog(l.Zap())
	log.Print("http: TLS handshake error from 192.0.2.1:4242: EOF")
	restore()

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "http: TLS handshake error from 192.0.2.1:4242: EOF", entries[0]["msg"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	l, buf := newBufferLogger(WARN, false)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestLogger_RedactsEmailFields(t *testing.T) {
	l, buf := newBufferLogger(INFO, true)
	l.Info("intake", "subscriber_email", "ursula_le_guin@gmail.com", "note", "contact kiran@example.com soon")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ur***@gmail.com", entries[0]["subscriber_email"])
	assert.Equal(t, "contact ki***@example.com soon", entries[0]["note"])
}

func TestLogger_OddFieldCountDropsDanglingKey(t *testing.T) {
	l, buf := newBufferLogger(INFO, false)
	l.Info("odd", "a", 1, "dangling")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0]["a"])
	assert.NotContains(t, entries[0], "dangling")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel("info"))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}
