package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorMessage(t *testing.T) {
	err := NewUserError("ledger is busy", errors.New("database locked"))
	assert.Equal(t, "ledger is busy: database locked", err.Error())
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := NewUserError("nothing to do", nil)
	assert.Equal(t, "nothing to do", err.Error())
}

func TestUserErrorUnwrapsSentinel(t *testing.T) {
	err := NewUserError("ingest something first", ErrInsufficientData)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
