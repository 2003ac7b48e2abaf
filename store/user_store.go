package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
)

// UserStore is the Postgres user store.
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

// Ensure creates the user row on first authenticated call and is a no-op on
// every later one.
func (s *UserStore) Ensure(ctx context.Context, id, name string) (*model.User, error) {
	user := model.User{
		Id:        id,
		Name:      name,
		CreatedAt: time.Now(),
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return nil, status.Internal(err, "user bootstrap failed")
	}

	var row model.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, status.Internal(err, "user lookup failed")
	}
	return &row, nil
}

func (s *UserStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, status.Internal(err, "user lookup failed")
	}
	return count > 0, nil
}
