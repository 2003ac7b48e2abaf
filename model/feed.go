package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Feed is a data model for a user defined column of posts

Id: primary key, use to identify a feed
CreatedAt: time when entity is created
UpdatedAt: time when name or filter last changed
DeletedAt: time when entity is deleted
CreatorID:
Creator: user who owns this feed, "belongs-to" relation. Only the creator can
update or delete the feed.

Name: feed's display name (title)
Filter: the FeedFilter document as JSON. Empty document means the identity
filter (no restriction). Deleting a feed never touches the posts it matched.

*/
type Feed struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
	CreatorID string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Creator   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name      string
	Filter    datatypes.JSON
}
