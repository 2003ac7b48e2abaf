package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/strandhq/strand/feed"
	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
)

// PostStore is the Postgres post store. The handle is passed in explicitly
// so tests can construct isolated instances.
type PostStore struct {
	DB *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{DB: db}
}

// FindPage runs one bounded feed fetch: visibility scope AND compiled filter
// AND the cursor bound, ordered by (created_at DESC, id DESC). GORM's
// soft-delete handling keeps deleted_at IS NULL on every query built here.
func (s *PostStore) FindPage(ctx context.Context, query feed.PostQuery) ([]*model.Post, error) {
	tx := s.DB.WithContext(ctx).Model(&model.Post{})

	cond, args := scopeSQL(query.Scope)
	tx = tx.Where(cond, args...)

	if query.Predicate != nil {
		sql, predArgs, err := predicateSQL(query.Predicate)
		if err != nil {
			return nil, errors.Wrap(err, "predicate translation failed")
		}
		tx = tx.Where(sql, predArgs...)
	}

	if query.After != nil {
		tx = tx.Where(
			"(posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?))",
			query.After.CreatedAt, query.After.CreatedAt, query.After.Id,
		)
	}

	var posts []*model.Post
	err := tx.Order("posts.created_at DESC, posts.id DESC").
		Limit(query.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "feed page query failed")
	}
	return posts, nil
}

// Get fetches a post including soft-deleted rows; the caller decides whether
// the viewer may see a deleted post (owner only).
func (s *PostStore) Get(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	result := s.DB.WithContext(ctx).Unscoped().Where("id = ?", id).First(&post)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, status.NotFoundf("post %s not found", id)
	}
	if result.Error != nil {
		return nil, status.Internal(result.Error, "post lookup failed")
	}
	return &post, nil
}

func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	if err := s.DB.WithContext(ctx).Create(post).Error; err != nil {
		return status.Internal(err, "post creation failed")
	}
	return nil
}

// SoftDelete marks the post deleted; feed queries and non-owner fetches stop
// seeing it immediately.
func (s *PostStore) SoftDelete(ctx context.Context, id string) error {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	if result.Error != nil {
		return status.Internal(result.Error, "post deletion failed")
	}
	if result.RowsAffected == 0 {
		return status.NotFoundf("post %s not found", id)
	}
	return nil
}

// AdjustLikeCount changes the denormalized like counter by delta, clamped at
// zero so concurrent unlikes can never drive it negative.
func (s *PostStore) AdjustLikeCount(ctx context.Context, id string, delta int) error {
	result := s.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("GREATEST(like_count + ?, 0)", delta))
	if result.Error != nil {
		return status.Internal(result.Error, "like count update failed")
	}
	if result.RowsAffected == 0 {
		return status.NotFoundf("post %s not found", id)
	}
	return nil
}
