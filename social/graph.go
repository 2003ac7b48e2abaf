package social

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/strandhq/strand/model"
)

// GraphStore is the persisted social graph: follow edges plus the derived
// friendship rows. Friendship mutations are only ever issued by the
// FriendshipDeriver inside a follow/unfollow transaction.
type GraphStore interface {
	EdgeExists(ctx context.Context, follower, following string) (bool, error)
	// CreateEdge inserts the edge if absent and reports whether a row was
	// actually created, making follow idempotent.
	CreateEdge(ctx context.Context, follower, following string) (bool, error)
	// DeleteEdge removes the edge and reports whether a row existed.
	DeleteEdge(ctx context.Context, follower, following string) (bool, error)
	// FollowedIds lists every user the follower has an edge to.
	FollowedIds(ctx context.Context, follower string) ([]string, error)

	FriendshipExists(ctx context.Context, a, b string) (bool, error)
	UpsertFriendship(ctx context.Context, a, b string) error
	DeleteFriendship(ctx context.Context, a, b string) error
}

// Graph is a GraphStore that can also scope a function to one transaction.
type Graph interface {
	GraphStore
	InTransaction(ctx context.Context, fn func(tx GraphStore) error) error
}

// GormGraph is the Postgres social graph. The handle is passed in explicitly
// so tests can construct isolated instances.
type GormGraph struct {
	DB *gorm.DB
}

func NewGormGraph(db *gorm.DB) *GormGraph {
	return &GormGraph{DB: db}
}

func (g *GormGraph) EdgeExists(ctx context.Context, follower, following string) (bool, error) {
	var count int64
	err := g.DB.WithContext(ctx).Model(&model.FollowEdge{}).
		Where("follower_id = ? AND following_id = ?", follower, following).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "follow edge lookup failed")
	}
	return count > 0, nil
}

func (g *GormGraph) CreateEdge(ctx context.Context, follower, following string) (bool, error) {
	edge := model.FollowEdge{
		FollowerID:  follower,
		FollowingID: following,
		CreatedAt:   time.Now(),
	}
	result := g.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "follow edge creation failed")
	}
	return result.RowsAffected == 1, nil
}

func (g *GormGraph) DeleteEdge(ctx context.Context, follower, following string) (bool, error) {
	result := g.DB.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", follower, following).
		Delete(&model.FollowEdge{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "follow edge deletion failed")
	}
	return result.RowsAffected == 1, nil
}

func (g *GormGraph) FollowedIds(ctx context.Context, follower string) ([]string, error) {
	var ids []string
	err := g.DB.WithContext(ctx).Model(&model.FollowEdge{}).
		Where("follower_id = ?", follower).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "followed ids lookup failed")
	}
	return ids, nil
}

func (g *GormGraph) FriendshipExists(ctx context.Context, a, b string) (bool, error) {
	first, second := model.CanonicalPair(a, b)
	var count int64
	err := g.DB.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_a_id = ? AND user_b_id = ?", first, second).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "friendship lookup failed")
	}
	return count > 0, nil
}

func (g *GormGraph) UpsertFriendship(ctx context.Context, a, b string) error {
	first, second := model.CanonicalPair(a, b)
	friendship := model.Friendship{
		UserAID:   first,
		UserBID:   second,
		CreatedAt: time.Now(),
	}
	err := g.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&friendship).Error
	return errors.Wrap(err, "friendship upsert failed")
}

func (g *GormGraph) DeleteFriendship(ctx context.Context, a, b string) error {
	first, second := model.CanonicalPair(a, b)
	err := g.DB.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", first, second).
		Delete(&model.Friendship{}).Error
	return errors.Wrap(err, "friendship deletion failed")
}

// InTransaction runs fn against a transaction-scoped view of the graph.
func (g *GormGraph) InTransaction(ctx context.Context, fn func(tx GraphStore) error) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormGraph{DB: tx})
	})
}
