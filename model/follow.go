package model

import "time"

/*

FollowEdge is one directed edge of the social graph

FollowerID: the user who follows
FollowingID: the user being followed
CreatedAt: time when the edge is created

The composite primary key guarantees at most one edge per ordered pair, which
makes the follow operation idempotent at the storage layer. Self edges
(FollowerID == FollowingID) are rejected before reaching storage.

*/
type FollowEdge struct {
	FollowerID  string `gorm:"primaryKey;index:idx_follow_follower"`
	FollowingID string `gorm:"primaryKey;index:idx_follow_following"`
	CreatedAt   time.Time
}
