package bitset_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invfs/invfs/bitset"
	"github.com/invfs/invfs/ferrors"
)

func TestAllocateScansFromZero(t *testing.T) {
	m := bitset.New(5)
	m.Set(0, true)
	m.Set(1, true)

	got, err := m.Allocate()
	require.NoError(t, err)
	require.Equal(t, 2, got)
	require.True(t, m.Get(2))
}

func TestAllocateReusesFreedBlocks(t *testing.T) {
	m := bitset.New(3)
	m.Set(0, true)
	m.Set(1, true)
	m.Set(2, true)

	m.Free(1)
	got, err := m.Allocate()
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestAllocateExhausted(t *testing.T) {
	m := bitset.New(2)
	m.Set(0, true)
	m.Set(1, true)

	_, err := m.Allocate()
	require.True(t, errors.Is(err, ferrors.OutOfSpace))
}
