package nbt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astei/nbt"
)

func TestFileRoundTrip(t *testing.T) {
	tree := bigTree(t)
	path := filepath.Join(t.TempDir(), "level.dat")

	require.NoError(t, nbt.WriteFile(path, tree, "Data"))

	// The write path always applies gzip framing.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 2)
	require.Equal(t, []byte{0x1f, 0x8b}, raw[:2])

	decoded, name, err := nbt.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Data", name)
	require.True(t, nbt.Equal(tree, decoded))
}

func TestReadFileUncompressed(t *testing.T) {
	tree := compoundOf("pos", nbt.IntArray{1, 2, 3})
	path := filepath.Join(t.TempDir(), "raw.nbt")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, nbt.NewEncoder(f).Encode(tree, ""))
	require.NoError(t, f.Close())

	decoded, name, err := nbt.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "", name)
	require.True(t, nbt.Equal(tree, decoded))
}

func TestReadFileTruncatedGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.dat")
	require.NoError(t, os.WriteFile(path, []byte{0x1f, 0x8b}, 0o644))

	_, _, err := nbt.ReadFile(path)
	require.Error(t, err)
}
