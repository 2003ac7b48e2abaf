package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/social"
	"github.com/strandhq/strand/status"
	. "github.com/strandhq/strand/utils/log"
)

// AuthorScope is the visibility predicate for one viewer, produced once per
// query so the executor can fold it into a single bounded fetch instead of a
// per-row round trip to the social graph.
type AuthorScope struct {
	// Anonymous viewers see public posts only.
	Anonymous bool
	// Viewer always sees their own posts, including private ones.
	Viewer string
	// Followed are the author ids whose followers-only posts the viewer may
	// see.
	Followed []string
}

// VisibilityResolver decides per-post and per-query visibility from the
// social graph. Cache, when set, holds each viewer's followed set for a short
// TTL; correctness never depends on it and cache failures only cost a graph
// read.
type VisibilityResolver struct {
	Graph    social.GraphStore
	Cache    *redis.Client
	CacheTTL time.Duration
}

// CanView applies the visibility rule table for a single post fetch. Rules
// are ordered, first match wins. Friendship is deliberately not consulted:
// it is a graph-level discovery fact, not a per-post permission.
func (r *VisibilityResolver) CanView(ctx context.Context, viewer *string, post *model.Post) (bool, error) {
	if post.Visibility == model.VisibilityPublic {
		return true, nil
	}
	if viewer == nil {
		return false, nil
	}
	if *viewer == post.AuthorID {
		return true, nil
	}
	if post.Visibility == model.VisibilityPrivate {
		return false, nil
	}
	follows, err := r.Graph.EdgeExists(ctx, *viewer, post.AuthorID)
	if err != nil {
		return false, status.Internal(err, "visibility graph lookup failed")
	}
	return follows, nil
}

// AllowedAuthors produces the author scope for a feed-scale query.
func (r *VisibilityResolver) AllowedAuthors(ctx context.Context, viewer *string) (AuthorScope, error) {
	if viewer == nil {
		return AuthorScope{Anonymous: true}, nil
	}

	if followed, ok := r.cachedFollowed(ctx, *viewer); ok {
		return AuthorScope{Viewer: *viewer, Followed: followed}, nil
	}

	followed, err := r.Graph.FollowedIds(ctx, *viewer)
	if err != nil {
		return AuthorScope{}, status.Internal(err, "followed set lookup failed")
	}
	r.storeFollowed(ctx, *viewer, followed)

	return AuthorScope{Viewer: *viewer, Followed: followed}, nil
}

func followedKey(viewer string) string {
	return "followed_ids_" + viewer
}

func (r *VisibilityResolver) cachedFollowed(ctx context.Context, viewer string) ([]string, bool) {
	if r.Cache == nil {
		return nil, false
	}
	raw, err := r.Cache.Get(ctx, followedKey(viewer)).Result()
	if err != nil {
		return nil, false
	}
	var followed []string
	if err := json.Unmarshal([]byte(raw), &followed); err != nil {
		return nil, false
	}
	return followed, true
}

func (r *VisibilityResolver) storeFollowed(ctx context.Context, viewer string, followed []string) {
	if r.Cache == nil {
		return
	}
	raw, _ := json.Marshal(followed)
	if err := r.Cache.Set(ctx, followedKey(viewer), raw, r.CacheTTL).Err(); err != nil {
		Log.Warn("failed to cache followed set for viewer ", viewer, ": ", err)
	}
}

// InvalidateFollowed drops the cached followed set after a follow/unfollow
// so the next feed query observes the new edge immediately.
func (r *VisibilityResolver) InvalidateFollowed(ctx context.Context, viewer string) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Del(ctx, followedKey(viewer)).Err(); err != nil {
		Log.Warn("failed to invalidate followed set for viewer ", viewer, ": ", err)
	}
}
