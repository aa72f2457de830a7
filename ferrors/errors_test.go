package ferrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/invfs/invfs/ferrors"
)

func TestKindWithMessage(t *testing.T) {
	err := ferrors.InvalidBlockRef.WithMessage("block 42 out of range")
	assert.Equal(t, "block 42 out of range", err.Error())
	assert.ErrorIs(t, err, ferrors.InvalidBlockRef)
}

func TestKindWrapError(t *testing.T) {
	original := errors.New("short read")
	err := ferrors.InvalidBlockRef.WrapError(original)

	assert.ErrorIs(t, err, ferrors.InvalidBlockRef)
	assert.ErrorIs(t, err, original)
}

func TestKindIsComparableDirectly(t *testing.T) {
	var err error = ferrors.NotMounted
	assert.True(t, errors.Is(err, ferrors.NotMounted))
	assert.False(t, errors.Is(err, ferrors.BadMagic))
}
