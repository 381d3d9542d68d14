package ctxlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ContextHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := AppendCtx(context.Background(), slog.String("request_id", "42"))
	ctx = AppendCtx(ctx, slog.String("room_code", "AB12CD"))
	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "42", record["request_id"])
	assert.Equal(t, "AB12CD", record["room_code"])
}

func TestAppendCtxDoesNotLeakIntoSiblings(t *testing.T) {
	base := AppendCtx(context.Background(), slog.String("a", "1"))
	first := AppendCtx(base, slog.String("b", "2"))
	second := AppendCtx(base, slog.String("c", "3"))

	assert.Len(t, base.Value(slogFields).([]slog.Attr), 1)
	assert.Equal(t, "b", first.Value(slogFields).([]slog.Attr)[1].Key)
	assert.Equal(t, "c", second.Value(slogFields).([]slog.Attr)[1].Key)
}
