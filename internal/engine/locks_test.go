package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerMutualExclusion(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "engine:rule:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, ok, err = locker.TryLock(ctx, "engine:rule:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Independent keys do not contend.
	_, ok, err = locker.TryLock(ctx, "engine:rule:b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, locker.Unlock(ctx, "engine:rule:a", token))
	_, ok, err = locker.TryLock(ctx, "engine:rule:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockerUnlockRequiresToken(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "engine:rule:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// The wrong token must not release someone else's lock.
	require.NoError(t, locker.Unlock(ctx, "engine:rule:a", "stale-token"))
	_, ok, err = locker.TryLock(ctx, "engine:rule:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Unlock(ctx, "engine:rule:a", token))
	_, ok, err = locker.TryLock(ctx, "engine:rule:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
