package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := WriteFile(t, dir, "nested/phrase.txt", "hello")
	assert.Equal(t, filepath.Join(dir, "nested", "phrase.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(WriteExecutable(t, dir, "run.sh", "#!/bin/sh\n"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "script should be executable")
}
