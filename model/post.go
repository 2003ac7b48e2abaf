package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostType enumerates the supported kinds of post content.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
	PostTypeVideo PostType = "video"
	PostTypeSong  PostType = "song"
)

// ValidPostType returns true iff t is a member of the PostType enum.
func ValidPostType(t PostType) bool {
	switch t {
	case PostTypeText, PostTypeImage, PostTypeVideo, PostTypeSong:
		return true
	}
	return false
}

// Visibility controls which viewers may see a post.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// ValidVisibility returns true iff v is a member of the Visibility enum.
func ValidVisibility(v Visibility) bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

/*

Post is a piece of user generated content

Id: primary key
CreatedAt: time when entity is created, primary sort key for feeds
DeletedAt: soft deletion time. A soft deleted post is excluded from every
feed query and from direct fetch by anyone other than its author.

AuthorID:
Author: the user who published this post, "belongs-to" relation
Type: text/image/video/song
Content: post body in plain text
MediaUrls: locations of attached media objects
Tags: user supplied labels, matched by the tag filter predicate
Visibility: public/followers/private

LikeCount/CommentCount/RepostCount: denormalized counters, adjusted only by
the like/comment/repost operations and never negative.

*/
type Post struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt
	AuthorID     string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author       User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Type         PostType
	Content      string
	MediaUrls    pq.StringArray `gorm:"type:text[]"`
	Tags         pq.StringArray `gorm:"type:text[]"`
	Visibility   Visibility
	LikeCount    int32
	CommentCount int32
	RepostCount  int32
}
