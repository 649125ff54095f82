package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridc/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addHCL = `
node "add" "sum" {}

compile "add" {
  inputs  = [node.sum.a, node.sum.b]
  outputs = [node.sum.result]
}
`

func TestRun_CallsFunction(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "add.hcl")
	require.NoError(t, os.WriteFile(path, []byte(addHCL), 0o600))

	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, []string{"run", path, "--arg", "2", "--arg", "40"})
	require.NoError(t, err, logs.String())
	assert.Equal(t, "42\n", out.String())
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The help flag makes cli.Parse return shouldExit=true.
	var out bytes.Buffer
	err := run(context.Background(), &out, &bytes.Buffer{}, []string{"-h"})
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	assert.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_UsageError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"compile"})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`node "add" "x" {`), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"compile", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load graph")

	var exitErr *cli.ExitError
	assert.False(t, errors.As(err, &exitErr), "load errors are not usage errors")
}
