package feed

import (
	"context"

	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
)

const (
	// DefaultPageLimit applies when the client omits or zeroes the limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps the page size regardless of the requested value.
	MaxPageLimit = 100
)

// FilterSource selects the filter for one query: a stored feed, an ad-hoc
// filter, or neither for the default timeline.
type FilterSource struct {
	FeedId *string
	Filter *model.FeedFilter
}

// PostQuery is one bounded fetch against the post store. Rows are returned
// ordered by (CreatedAt DESC, Id DESC), strictly after the cursor position
// when After is set, excluding soft-deleted rows.
type PostQuery struct {
	Predicate Compiled
	Scope     AuthorScope
	After     *SortKey
	Limit     int
}

// PostPage is one page of feed results. NextCursor is empty on the last page.
type PostPage struct {
	Posts      []*model.Post `json:"posts"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// PostStore is the slice of the post store the executor needs.
type PostStore interface {
	FindPage(ctx context.Context, query PostQuery) ([]*model.Post, error)
}

// FeedStore resolves stored feed definitions.
type FeedStore interface {
	Get(ctx context.Context, feedId string) (*model.Feed, error)
}

// Executor composes the compiler, the visibility resolver and the cursor
// codec into one bounded feed query.
type Executor struct {
	Posts      PostStore
	Feeds      FeedStore
	Visibility *VisibilityResolver
}

// GetPage runs one page of a feed query for the given viewer.
func (e *Executor) GetPage(ctx context.Context, viewer *string, source FilterSource, cursor string, limit int) (*PostPage, error) {
	filter, err := e.resolveFilter(ctx, viewer, source)
	if err != nil {
		return nil, err
	}

	predicate, err := Compile(filter)
	if err != nil {
		return nil, err
	}

	scope, err := e.Visibility.AllowedAuthors(ctx, viewer)
	if err != nil {
		return nil, err
	}

	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	// Fetch one row beyond the page so the presence of a next page is known
	// without a second query.
	rows, err := e.Posts.FindPage(ctx, PostQuery{
		Predicate: predicate,
		Scope:     scope,
		After:     after,
		Limit:     limit + 1,
	})
	if err != nil {
		return nil, status.Internal(err, "feed page query failed")
	}

	page := &PostPage{Posts: rows}
	if len(rows) > limit {
		page.Posts = rows[:limit]
	}
	// A full page always carries a continuation cursor. When the stream
	// ended exactly at the page boundary the follow-up request observes an
	// empty page, which is a valid monotonic continuation.
	if len(page.Posts) == limit {
		last := page.Posts[limit-1]
		page.NextCursor = EncodeCursor(SortKey{CreatedAt: last.CreatedAt, Id: last.Id})
	}
	return page, nil
}

// resolveFilter loads the stored feed's filter, takes the ad-hoc filter, or
// falls back to the identity filter for the default timeline. A stored feed
// is only queryable by its owner; anyone else observes NOT_FOUND rather than
// learning the feed exists.
func (e *Executor) resolveFilter(ctx context.Context, viewer *string, source FilterSource) (model.FeedFilter, error) {
	if source.FeedId == nil {
		if source.Filter != nil {
			return *source.Filter, nil
		}
		return model.FeedFilter{}, nil
	}

	stored, err := e.Feeds.Get(ctx, *source.FeedId)
	if err != nil {
		return model.FeedFilter{}, err
	}
	if viewer == nil || stored.CreatorID != *viewer {
		return model.FeedFilter{}, status.NotFoundf("feed %s not found", *source.FeedId)
	}

	filter, err := model.ParseFilter(string(stored.Filter))
	if err != nil {
		return model.FeedFilter{}, status.Validationf("stored feed %s has a malformed filter", *source.FeedId)
	}
	return filter, nil
}
