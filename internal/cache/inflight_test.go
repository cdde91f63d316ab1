package cache

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestLogReleaseFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog bool
	}{
		{"released", nil, false},
		{"connection lost", errors.New("dial tcp 10.0.0.7:6379: connect: connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)

			logReleaseFailure("user-1:event-1", tt.err)

			if !tt.wantLog {
				assert.Empty(t, logs.String())
				return
			}
			assert.Contains(t, logs.String(), "level=WARN")
			assert.Contains(t, logs.String(), "key=inflight:user-1:event-1")
			assert.Contains(t, logs.String(), "connection refused")
		})
	}
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "inflight:user-1:event-1", lockKey("user-1:event-1"))
}
