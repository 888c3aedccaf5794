package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_DisabledUntilInit(t *testing.T) {
	Close()
	require.NotPanics(t, func() {
		Warn(CatRegistry, "dropped on the floor")
	})
	require.Nil(t, Subscribe(context.Background()))
}

func TestLog_FormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelWarn)
	t.Cleanup(Close)

	Info(CatBuild, "hidden")
	Warn(CatRegistry, "duplicate object description", "path", "/mob/proc/Login", "orphan")
	ErrorErr(CatBuild, "load failed", errors.New("boom"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[WARN] [registry] duplicate object description path=/mob/proc/Login orphan=<missing>")
	require.Contains(t, out, "[ERROR] [build] load failed error=boom")

	SetMinLevel(LevelDebug)
	Debug(CatParse, "visible")
	require.Contains(t, buf.String(), "[DEBUG] [parse] visible")

	SetEnabled(false)
	Error(CatParse, "muted")
	require.NotContains(t, buf.String(), "muted")
}

func TestLog_Subscribe(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Warn(CatResolve, "unresolved reference", "target", "Foo")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "unresolved reference target=Foo")
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestLog_DroppedCountsSlowSubscribers(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NotNil(t, Subscribe(ctx))
	require.Zero(t, Dropped())

	for i := 0; i < 259; i++ {
		Info(CatWatcher, "rebuilt", "n", i)
	}
	require.Equal(t, int64(3), Dropped())

	Close()
	require.Zero(t, Dropped())
}

func TestLog_InitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dmdoc.log")
	cleanup, err := Init(path, LevelInfo)
	require.NoError(t, err)

	Info(CatConfig, "loaded", "file", "config.yaml")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [config] loaded file=config.yaml")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}
