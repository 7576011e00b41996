package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fathomenergy/curvetrace/internal/apierror"
)

func TestTransient_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Transient(context.Background(), "create-instance", func() error {
		calls++
		if calls < 3 {
			return apierror.NewAPIError(apierror.ErrTransient, "serialization failure", nil)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestTransient_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	conflict := apierror.NewAPIError(apierror.ErrConflict, "duplicate", nil)
	err := Transient(context.Background(), "create-instance", func() error {
		calls++
		return conflict
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(err, conflict))
}

func TestTransient_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Transient(ctx, "merge", func() error {
		return apierror.NewAPIError(apierror.ErrTransient, "busy", nil)
	})
	assert.Error(t, err)
}
