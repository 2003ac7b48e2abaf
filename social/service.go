package social

import (
	"context"

	"github.com/strandhq/strand/status"
)

// Service executes follow and unfollow, running the edge mutation and the
// friendship derivation as one atomic unit.
type Service struct {
	Graph   Graph
	Deriver FriendshipDeriver
}

func NewService(graph Graph) *Service {
	return &Service{Graph: graph}
}

// Follow creates the viewer → target edge. Following an already-followed
// user leaves state unchanged and succeeds.
func (s *Service) Follow(ctx context.Context, viewer, target string) error {
	if viewer == target {
		return status.Validationf("cannot follow yourself")
	}
	return s.Graph.InTransaction(ctx, func(tx GraphStore) error {
		created, err := tx.CreateEdge(ctx, viewer, target)
		if err != nil {
			return status.Internal(err, "follow failed")
		}
		if !created {
			// Idempotent follow, nothing to derive.
			return nil
		}
		if err := s.Deriver.OnFollowCreated(ctx, tx, viewer, target); err != nil {
			return status.Internal(err, "friendship derivation failed")
		}
		return nil
	})
}

// Unfollow removes the viewer → target edge. Unfollowing a user who was
// never followed is NOT_FOUND, not a silent success.
func (s *Service) Unfollow(ctx context.Context, viewer, target string) error {
	if viewer == target {
		return status.Validationf("cannot unfollow yourself")
	}
	return s.Graph.InTransaction(ctx, func(tx GraphStore) error {
		deleted, err := tx.DeleteEdge(ctx, viewer, target)
		if err != nil {
			return status.Internal(err, "unfollow failed")
		}
		if !deleted {
			return status.NotFoundf("not following user %s", target)
		}
		if err := s.Deriver.OnFollowRemoved(ctx, tx, viewer, target); err != nil {
			return status.Internal(err, "friendship derivation failed")
		}
		return nil
	})
}
