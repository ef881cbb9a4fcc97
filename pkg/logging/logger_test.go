// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{" info ", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_ToSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.toSlogLevel())
	assert.Equal(t, slog.LevelInfo, LevelInfo.toSlogLevel())
	assert.Equal(t, slog.LevelWarn, LevelWarn.toSlogLevel())
	assert.Equal(t, slog.LevelError, LevelError.toSlogLevel())
	assert.Equal(t, slog.LevelInfo, Level(42).toSlogLevel())
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Service: "fanbench"})

	logger.Info("strategy finished", "strategy", "ParallelFor", "elapsed_ms", 12)

	out := buf.String()
	assert.Contains(t, out, "strategy finished")
	assert.Contains(t, out, "strategy=ParallelFor")
	assert.Contains(t, out, "elapsed_ms=12")
	assert.Contains(t, out, "service=fanbench")
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, JSON: true})

	logger.Warn("slow strategy", "strategy", "ForLoopParallel")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "slow strategy", entry["msg"])
	assert.Equal(t, "ForLoopParallel", entry["strategy"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: LevelWarn})

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("shown warn")
	logger.Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "shown error")
}

func TestNew_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Quiet: true, LogDir: t.TempDir()})
	defer logger.Close()

	logger.Error("only in file")
	assert.Empty(t, buf.String())
}

func TestNew_QuietWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Quiet: true})
	defer logger.Close()

	logger.Error("dropped")
	assert.Empty(t, buf.String())
}

func TestNew_FileLogging(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer

	logger := New(Config{Output: &buf, LogDir: dir, Service: "bench"})
	logger.Info("to both", "items", 1000)
	require.NoError(t, logger.Close())

	assert.Contains(t, buf.String(), "to both")

	name := "bench_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "to both", entry["msg"])
	assert.Equal(t, "bench", entry["service"])
	assert.EqualValues(t, 1000, entry["items"])
}

func TestNew_FileLoggingFallback(t *testing.T) {
	// A regular file where a directory is expected cannot be created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	var buf bytes.Buffer
	logger := New(Config{Output: &buf, LogDir: filepath.Join(blocker, "logs")})
	logger.Info("still logged")

	assert.Contains(t, buf.String(), "still logged")
	assert.NoError(t, logger.Close())
}

func TestNop(t *testing.T) {
	logger := Nop()
	require.NotNil(t, logger)
	logger.Error("discarded")
	assert.NoError(t, logger.Close())
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	child := logger.With("run_id", "abc")
	child.Info("child message")
	logger.Info("parent message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run_id=abc")
	assert.NotContains(t, lines[1], "run_id=abc")
}

func TestLogger_CloseIdempotent(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}, LogDir: t.TempDir()})
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogger_ChildSharesFileClose(t *testing.T) {
	dir := t.TempDir()
	parent := New(Config{Output: &bytes.Buffer{}, LogDir: dir, Service: "bench"})
	child := parent.With("strategy", "ParallelFor")

	child.Info("from child")
	parent.Info("from parent")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				errs[i] = parent.Close()
			} else {
				errs[i] = child.Close()
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	// Repeated Close stays a no-op.
	assert.NoError(t, child.Close())

	name := "bench_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "from child")
	assert.Contains(t, string(data), "from parent")
}

func TestLogger_ConcurrentUse(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger := New(Config{Output: &lockedWriter{mu: &mu, w: &buf}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.With("worker", i).Info("done")
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, strings.Count(buf.String(), "msg=done"))
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("g"))
	logger.Info("info only", "x", 1)
	logger.Error("both", "x", 2)

	assert.Contains(t, a.String(), "info only")
	assert.Contains(t, a.String(), "both")
	assert.Contains(t, a.String(), "k=v")
	assert.Contains(t, a.String(), "g.x=2")
	assert.NotContains(t, b.String(), "info only")
	assert.Contains(t, b.String(), "both")
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs"), expandPath("~/logs"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
	assert.Equal(t, "", expandPath(""))
}
