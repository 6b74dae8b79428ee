package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/cli"
	"github.com/vk/supertrace/internal/testutil"
)

func TestRun_StartupError(t *testing.T) {
	t.Parallel()

	// A config file with a syntax error must surface as a startup error.
	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("playback {\n  step_delay = "), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-config", cfgPath, "trace.log"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "application startup failed")
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Playback(t *testing.T) {
	t.Parallel()

	tracePath := filepath.Join(t.TempDir(), "trace.log")
	require.NoError(t, os.WriteFile(tracePath, []byte(testutil.LogThreeSteps), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := &testutil.SafeBuffer{}
	err := run(ctx, out, &bytes.Buffer{}, []string{"-delay", "1ms", "-renderer", "print", tracePath})

	require.NoError(t, err)
	require.Contains(t, out.String(), "step 2/2")
	require.Contains(t, out.String(), "[done]")
}
