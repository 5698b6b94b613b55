package log_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/snehendu098/ghost/pkg/log"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, isNoop := log.FromContext(ctx).(log.NoopLogger)
	assert.True(t, isNoop)

	lg := log.NewZapLogger(log.Config{})
	ctx = log.SetContextLogger(ctx, lg)
	_, isZap := log.FromContext(ctx).(*log.ZapLogger)
	assert.True(t, isZap)

	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: [16]byte{1},
		SpanID:  [8]byte{1},
	}))
	ctx = log.SetContextLogger(ctx, lg)
	_, isSpan := log.FromContext(ctx).(log.SpanLogger)
	assert.True(t, isSpan)

	ctx = log.SetContextLogger(context.Background(), nil)
	_, isNoop = log.FromContext(ctx).(log.NoopLogger)
	assert.True(t, isNoop)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.LevelDebug, false},
		{" INFO ", log.LevelInfo, false},
		{"warning", log.LevelWarn, false},
		{"fatal", log.LevelFatal, false},
		{"trace", "", true},
	}
	for _, tc := range tests {
		got, err := log.ParseLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestZapLogger(t *testing.T) {
	t.Parallel()

	tws := &captureSyncer{}
	lg := log.NewZapLogger(log.Config{Format: "json", Level: log.LevelDebug}, tws).WithName("rpc")

	lg.Debug("calling", "method", "sui_getCoins")
	entry := tws.last(t)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "rpc", entry["logger"])
	assert.Equal(t, "calling", entry["msg"])
	assert.Equal(t, "sui_getCoins", entry["method"])
	assert.True(t, strings.HasPrefix(entry["caller"].(string), "log/log_test.go:"), entry["caller"])

	child := lg.WithName("http").WithKV("endpoint", "http://node")
	assert.Equal(t, "rpc.http", child.Name())
	assert.Equal(t, []any{"endpoint", "http://node"}, child.GetAllKV())
	assert.Empty(t, lg.GetAllKV())

	child.Warn("slow response", "ms", 1200)
	entry = tws.last(t)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "http://node", entry["endpoint"])
	assert.EqualValues(t, 1200, entry["ms"])

	wrapper := func(msg string) { child.AddCallerSkip(1).Info(msg) }
	wrapper("wrapped")
	entry = tws.last(t)
	assert.True(t, strings.HasPrefix(entry["caller"].(string), "log/log_test.go:"), entry["caller"])
}

func TestZapLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	tws := &captureSyncer{}
	lg := log.NewZapLogger(log.Config{Format: "json", Level: log.LevelWarn}, tws)

	lg.Info("hidden")
	assert.Empty(t, tws.entries)

	lg.Error("shown")
	assert.Len(t, tws.entries, 1)
}

func TestSpanLogger(t *testing.T) {
	t.Parallel()

	inner := &recordingLogger{}
	ser := &recordingRecorder{traceID: "trace-1", spanID: "span-1"}
	lg := log.NewSpanLogger(inner, ser).WithKV("addr", "0xabc")

	assert.Equal(t, 1, inner.skip)

	lg.Info("subscribed", "filter", "all")
	require.Len(t, inner.entries, 1)
	assert.Equal(t, []any{"traceId", "trace-1", "spanId", "span-1", "filter", "all"}, inner.entries[0].kv)
	assert.Equal(t, []any{"level", "info", "component", "", "addr", "0xabc", "filter", "all"}, ser.last)
	assert.False(t, ser.failed)

	lg.Error("stream failed")
	assert.True(t, ser.failed)
}

type captureSyncer struct {
	entries [][]byte
}

func (c *captureSyncer) Write(p []byte) (int, error) {
	c.entries = append(c.entries, append([]byte(nil), p...))
	return len(p), nil
}

func (c *captureSyncer) Sync() error { return nil }

func (c *captureSyncer) last(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, c.entries)
	m := map[string]any{}
	require.NoError(t, json.Unmarshal(c.entries[len(c.entries)-1], &m))
	return m
}

type recordedEntry struct {
	level log.Level
	msg   string
	kv    []any
}

// recordingLogger keeps persistent pairs on a shared pointer so children stay observable.
type recordingLogger struct {
	entries []recordedEntry
	kv      []any
	skip    int
}

func (r *recordingLogger) add(level log.Level, msg string, kv []any) {
	r.entries = append(r.entries, recordedEntry{level: level, msg: msg, kv: kv})
}

func (r *recordingLogger) Debug(msg string, kv ...any) { r.add(log.LevelDebug, msg, kv) }
func (r *recordingLogger) Info(msg string, kv ...any) { r.add(log.LevelInfo, msg, kv) }
func (r *recordingLogger) Warn(msg string, kv ...any) { r.add(log.LevelWarn, msg, kv) }
func (r *recordingLogger) Error(msg string, kv ...any) { r.add(log.LevelError, msg, kv) }
func (r *recordingLogger) Fatal(msg string, kv ...any) { r.add(log.LevelFatal, msg, kv) }
func (r *recordingLogger) WithKV(k string, v any) log.Logger {
	r.kv = append(r.kv, k, v)
	return r
}
func (r *recordingLogger) GetAllKV() []any { return r.kv }
func (r *recordingLogger) WithName(string) log.Logger { return r }
func (r *recordingLogger) Name() string { return "" }
func (r *recordingLogger) AddCallerSkip(skip int) log.Logger {
	r.skip += skip
	return r
}

type recordingRecorder struct {
	traceID, spanID string
	last            []any
	failed          bool
}

func (r *recordingRecorder) TraceID() string { return r.traceID }
func (r *recordingRecorder) SpanID() string { return r.spanID }
func (r *recordingRecorder) RecordEvent(_ string, kv ...any) { r.last = kv }
func (r *recordingRecorder) RecordError(_ string, kv ...any) {
	r.last = kv
	r.failed = true
}
