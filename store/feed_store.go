package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
)

// FeedStore is the Postgres store for stored feed definitions.
type FeedStore struct {
	DB *gorm.DB
}

func NewFeedStore(db *gorm.DB) *FeedStore {
	return &FeedStore{DB: db}
}

func (s *FeedStore) Get(ctx context.Context, feedId string) (*model.Feed, error) {
	var row model.Feed
	result := s.DB.WithContext(ctx).Where("id = ?", feedId).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, status.NotFoundf("feed %s not found", feedId)
	}
	if result.Error != nil {
		return nil, status.Internal(result.Error, "feed lookup failed")
	}
	return &row, nil
}

func (s *FeedStore) Create(ctx context.Context, row *model.Feed) error {
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return status.Internal(err, "feed creation failed")
	}
	return nil
}

func (s *FeedStore) Update(ctx context.Context, row *model.Feed) error {
	if err := s.DB.WithContext(ctx).Save(row).Error; err != nil {
		return status.Internal(err, "feed update failed")
	}
	return nil
}

// Delete soft deletes a feed definition. The posts the feed matched are not
// affected.
func (s *FeedStore) Delete(ctx context.Context, feedId string) error {
	result := s.DB.WithContext(ctx).Where("id = ?", feedId).Delete(&model.Feed{})
	if result.Error != nil {
		return status.Internal(result.Error, "feed deletion failed")
	}
	if result.RowsAffected == 0 {
		return status.NotFoundf("feed %s not found", feedId)
	}
	return nil
}

func (s *FeedStore) ListByCreator(ctx context.Context, userId string) ([]*model.Feed, error) {
	var rows []*model.Feed
	err := s.DB.WithContext(ctx).
		Where("creator_id = ?", userId).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, status.Internal(err, "feed listing failed")
	}
	return rows, nil
}
