package social

import "context"

// FriendshipDeriver keeps the derived friendship fact in lockstep with the
// follow edges: a friendship row exists exactly while both edges of a pair
// exist. It runs inside the same transaction as the edge mutation, so a
// partial state (edge without derived row, or the reverse) is never
// externally observable.
//
// State machine per unordered pair {A, B}: NoEdge -> OneWay -> Mutual. The
// transition into Mutual creates the friendship row; leaving Mutual in either
// direction deletes it.
type FriendshipDeriver struct{}

// OnFollowCreated derives the friendship row when the new edge completes a
// mutual pair. Creating an already-present row is a no-op, not an error.
func (FriendshipDeriver) OnFollowCreated(ctx context.Context, graph GraphStore, follower, following string) error {
	reverse, err := graph.EdgeExists(ctx, following, follower)
	if err != nil {
		return err
	}
	if !reverse {
		return nil
	}
	return graph.UpsertFriendship(ctx, follower, following)
}

// OnFollowRemoved deletes the friendship row for the pair unconditionally.
// The remaining one-way edge, if any, is untouched: removing a friendship
// never removes a follow edge.
func (FriendshipDeriver) OnFollowRemoved(ctx context.Context, graph GraphStore, follower, following string) error {
	return graph.DeleteFriendship(ctx, follower, following)
}
