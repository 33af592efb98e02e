package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, levelFor(0))
	assert.Equal(t, zerolog.InfoLevel, levelFor(1))
	assert.Equal(t, zerolog.DebugLevel, levelFor(2))
	assert.Equal(t, zerolog.TraceLevel, levelFor(3))
	assert.Equal(t, zerolog.TraceLevel, levelFor(7))
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("explicit override", func(t *testing.T) {
		t.Setenv(EnvLogFile, "/tmp/custom.log")
		assert.Equal(t, "/tmp/custom.log", getLogFilePath())
	})

	t.Run("with XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv(EnvLogFile, "")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		got := filepath.ToSlash(getLogFilePath())
		assert.Equal(t, "/custom/state/e1epack/e1epack.log", got)
	})

	t.Run("default state dir", func(t *testing.T) {
		t.Setenv(EnvLogFile, "")
		t.Setenv("XDG_STATE_HOME", "")
		got := filepath.ToSlash(getLogFilePath())
		assert.True(t, strings.HasSuffix(got, "e1epack/e1epack.log") || got == "e1epack.log", got)
	})
}

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "e1epack.log")
	f, err := setupLogFile(path)
	assert.NoError(t, err)
	assert.NotNil(t, f)
	_ = f.Close()
}

func TestForPack(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logger := ForPack(base, "core_lib", "build-1")
	logger.Info().Msg("resolved")

	out := buf.String()
	assert.Contains(t, out, `"pack":"core_lib"`)
	assert.Contains(t, out, `"build_id":"build-1"`)
}

func TestLogCommand(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	defer func() { log.Logger = prev }()
	prevLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prevLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogCommand("e1epack", []string{"worker", "--source", "a.mcfunction"})

	out := buf.String()
	assert.Contains(t, out, "e1epack")
	assert.Contains(t, out, "a.mcfunction")
	assert.Contains(t, out, "Executing command")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	prevLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prevLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "resolve")
	done()

	out := buf.String()
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, "duration")
}
