package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	config := DefaultConfig("test-service")
	config.Level = level
	config.Output = buf
	return New(config), buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &record))
	return record
}

func TestLogger_DatabaseQuery(t *testing.T) {
	logger, buf := captureLogger(LevelDebug)

	logger.DatabaseQuery(context.Background(), "stores", "find", 3*time.Millisecond, true, 5)

	record := lastRecord(t, buf)
	assert.Equal(t, "Database query", record["msg"])
	assert.Equal(t, "stores", record["collection"])
	assert.Equal(t, "find", record["operation"])
	assert.Equal(t, true, record["success"])
	assert.Equal(t, float64(5), record["rowsAffected"])
	assert.Equal(t, "test-service", record["service"])
}

func TestLogger_DatabaseQueryFailureIsError(t *testing.T) {
	logger, buf := captureLogger(LevelInfo)

	// Successful queries are debug and filtered at info level,
	// failures must still surface.
	logger.DatabaseQuery(context.Background(), "stores", "find", time.Millisecond, true, 0)
	assert.Empty(t, buf.Bytes())

	logger.DatabaseQuery(context.Background(), "stores", "find", time.Millisecond, false, 0)
	record := lastRecord(t, buf)
	assert.Equal(t, "ERROR", record["level"])
}

func TestLogger_HTTPRequestLevels(t *testing.T) {
	logger, buf := captureLogger(LevelInfo)

	logger.HTTPRequest(context.Background(), "GET", "/api/v1/stores", 200, time.Millisecond, "127.0.0.1", "test")
	assert.Equal(t, "INFO", lastRecord(t, buf)["level"])

	logger.HTTPRequest(context.Background(), "GET", "/api/v1/stores", 422, time.Millisecond, "127.0.0.1", "test")
	assert.Equal(t, "WARN", lastRecord(t, buf)["level"])

	logger.HTTPRequest(context.Background(), "GET", "/api/v1/stores", 500, time.Millisecond, "127.0.0.1", "test")
	record := lastRecord(t, buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, float64(500), record["status"])
}

func TestLogger_HTTPRequestCarriesContextIDs(t *testing.T) {
	logger, buf := captureLogger(LevelInfo)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	logger.HTTPRequest(ctx, "POST", "/api/v1/dispatch/calculate", 201, time.Millisecond, "127.0.0.1", "test")

	record := lastRecord(t, buf)
	assert.Equal(t, "req-1", record["requestId"])
	assert.Equal(t, "corr-1", record["correlationId"])
}

func TestLogger_Audit(t *testing.T) {
	logger, buf := captureLogger(LevelInfo)

	logger.Audit(context.Background(), "update", "parameters", "PARAM-1", "alice", map[string]any{
		"minReferenceQuantity": 10,
	})

	record := lastRecord(t, buf)
	assert.Equal(t, "Audit event", record["msg"])
	assert.Equal(t, "update", record["auditAction"])
	assert.Equal(t, "parameters", record["resource"])
	assert.Equal(t, "PARAM-1", record["resourceId"])
	assert.Equal(t, "alice", record["userId"])
	assert.Equal(t, float64(10), record["minReferenceQuantity"])
}

func TestLogger_Performance(t *testing.T) {
	logger, buf := captureLogger(LevelInfo)

	logger.Performance(context.Background(), "distribution.calculate", 42*time.Millisecond, true, map[string]any{
		"itemsCount": 3,
	})

	record := lastRecord(t, buf)
	assert.Equal(t, "Performance metric", record["msg"])
	assert.Equal(t, "distribution.calculate", record["operation"])
	assert.Equal(t, float64(42), record["durationMs"])
	assert.Equal(t, true, record["success"])
}
