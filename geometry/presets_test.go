package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invfs/invfs/geometry"
)

func TestLookupKnownPreset(t *testing.T) {
	preset, err := geometry.Lookup("tiny20")
	require.NoError(t, err)
	require.EqualValues(t, 20, preset.TotalBlocks)
	require.EqualValues(t, 4096, preset.BlockSize)
}

func TestLookupUnknownPreset(t *testing.T) {
	_, err := geometry.Lookup("does-not-exist")
	require.Error(t, err)
}

func TestNamesIncludesAllPresets(t *testing.T) {
	names := geometry.Names()
	require.Contains(t, names, "tiny20")
	require.Contains(t, names, "floppy1440")
}
