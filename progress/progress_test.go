package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	err := Save(path, State{LastID: 42, Count: 10, Total: 100})
	require.NoError(t, err)

	state, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint(42), state.LastID)
	require.Equal(t, 10, state.Count)
	require.Equal(t, 100, state.Total)
	require.NotEmpty(t, state.Timestamp)
}

func TestLoadMissingFileReturnsZeroState(t *testing.T) {
	state, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Zero(t, state.LastID)
	require.Zero(t, state.Count)
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, Save(path, State{LastID: 1}))

	require.NoError(t, Clear(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// clearing again is fine
	require.NoError(t, Clear(path))
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "progress.json")
	require.NoError(t, Save(path, State{LastID: 7}))

	state, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint(7), state.LastID)
}
