package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandhq/strand/status"
)

func TestServiceFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryGraph())

	require.NoError(t, service.Follow(ctx, "a", "b"))
	require.NoError(t, service.Follow(ctx, "a", "b"))

	exists, err := service.Graph.EdgeExists(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestServiceSelfFollowRejected(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryGraph())

	err := service.Follow(ctx, "a", "a")
	require.Equal(t, status.KindValidation, status.KindOf(err))

	err = service.Unfollow(ctx, "a", "a")
	require.Equal(t, status.KindValidation, status.KindOf(err))
}

func TestServiceUnfollowNotFollowed(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryGraph())

	err := service.Unfollow(ctx, "a", "b")
	require.Equal(t, status.KindNotFound, status.KindOf(err))
}

func TestServiceFollowUnfollowDerivesFriendship(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryGraph())

	require.NoError(t, service.Follow(ctx, "a", "b"))
	friends, err := service.Graph.FriendshipExists(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, friends)

	// Friendship appears after the second call, not the first.
	require.NoError(t, service.Follow(ctx, "b", "a"))
	friends, err = service.Graph.FriendshipExists(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, friends)

	// Unfollow removes the friendship but not the reverse edge.
	require.NoError(t, service.Unfollow(ctx, "a", "b"))
	friends, err = service.Graph.FriendshipExists(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, friends)

	reverse, err := service.Graph.EdgeExists(ctx, "b", "a")
	require.NoError(t, err)
	require.True(t, reverse)
}
