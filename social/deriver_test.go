package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriverMutualFollowCreatesFriendship(t *testing.T) {
	ctx := context.Background()
	graph := NewMemoryGraph()
	deriver := FriendshipDeriver{}

	// First edge of the pair: no friendship yet.
	_, err := graph.CreateEdge(ctx, "a", "b")
	require.NoError(t, err)
	require.NoError(t, deriver.OnFollowCreated(ctx, graph, "a", "b"))

	exists, err := graph.FriendshipExists(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, exists)

	// Second edge completes the pair.
	_, err = graph.CreateEdge(ctx, "b", "a")
	require.NoError(t, err)
	require.NoError(t, deriver.OnFollowCreated(ctx, graph, "b", "a"))

	exists, err = graph.FriendshipExists(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, exists)

	// Deriving again is a no-op, not an error.
	require.NoError(t, deriver.OnFollowCreated(ctx, graph, "b", "a"))
	exists, err = graph.FriendshipExists(ctx, "b", "a")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDeriverUnfollowRemovesFriendshipOnly(t *testing.T) {
	ctx := context.Background()
	graph := NewMemoryGraph()
	deriver := FriendshipDeriver{}

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}} {
		_, err := graph.CreateEdge(ctx, pair[0], pair[1])
		require.NoError(t, err)
		require.NoError(t, deriver.OnFollowCreated(ctx, graph, pair[0], pair[1]))
	}

	_, err := graph.DeleteEdge(ctx, "a", "b")
	require.NoError(t, err)
	require.NoError(t, deriver.OnFollowRemoved(ctx, graph, "a", "b"))

	exists, err := graph.FriendshipExists(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, exists)

	// The reverse edge survives the friendship removal.
	reverse, err := graph.EdgeExists(ctx, "b", "a")
	require.NoError(t, err)
	require.True(t, reverse)
}

// TestDeriverInvariantUnderAllOpOrders drives every sequence of the four
// follow/unfollow operations on the pair {a, b} and checks after each step
// that a friendship row exists iff both edges exist.
func TestDeriverInvariantUnderAllOpOrders(t *testing.T) {
	type op struct {
		follower, following string
		follow              bool
	}
	ops := []op{
		{"a", "b", true},
		{"b", "a", true},
		{"a", "b", false},
		{"b", "a", false},
	}

	var sequences [][]int
	var build func(prefix []int)
	build = func(prefix []int) {
		if len(prefix) == 4 {
			seq := make([]int, 4)
			copy(seq, prefix)
			sequences = append(sequences, seq)
			return
		}
		for i := 0; i < 4; i++ {
			build(append(prefix, i))
		}
	}
	build(nil)

	ctx := context.Background()
	deriver := FriendshipDeriver{}

	for _, seq := range sequences {
		graph := NewMemoryGraph()
		for _, idx := range seq {
			step := ops[idx]
			if step.follow {
				created, err := graph.CreateEdge(ctx, step.follower, step.following)
				require.NoError(t, err)
				if created {
					require.NoError(t, deriver.OnFollowCreated(ctx, graph, step.follower, step.following))
				}
			} else {
				deleted, err := graph.DeleteEdge(ctx, step.follower, step.following)
				require.NoError(t, err)
				if deleted {
					require.NoError(t, deriver.OnFollowRemoved(ctx, graph, step.follower, step.following))
				}
			}

			ab, err := graph.EdgeExists(ctx, "a", "b")
			require.NoError(t, err)
			ba, err := graph.EdgeExists(ctx, "b", "a")
			require.NoError(t, err)
			friends, err := graph.FriendshipExists(ctx, "a", "b")
			require.NoError(t, err)
			require.Equalf(t, ab && ba, friends,
				"sequence %v: friendship must exist iff both edges exist", seq)
		}
	}
}
