package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"github.com/strandhq/strand/feed"
	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/status"
	. "github.com/strandhq/strand/utils/log"
)

// FeedEngine runs one page of a feed query.
type FeedEngine interface {
	GetPage(ctx context.Context, viewer *string, source feed.FilterSource, cursor string, limit int) (*feed.PostPage, error)
}

// FeedStore is the slice of the feed store the handlers need.
type FeedStore interface {
	Get(ctx context.Context, feedId string) (*model.Feed, error)
	Create(ctx context.Context, row *model.Feed) error
	Update(ctx context.Context, row *model.Feed) error
	Delete(ctx context.Context, feedId string) error
	ListByCreator(ctx context.Context, userId string) ([]*model.Feed, error)
}

// PostStore is the slice of the post store the handlers need.
type PostStore interface {
	Get(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) error
	SoftDelete(ctx context.Context, id string) error
	AdjustLikeCount(ctx context.Context, id string, delta int) error
}

// UserStore is the slice of the user store the handlers need.
type UserStore interface {
	Ensure(ctx context.Context, id, name string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// SocialService mutates the social graph.
type SocialService interface {
	Follow(ctx context.Context, viewer, target string) error
	Unfollow(ctx context.Context, viewer, target string) error
}

// API holds every dependency of the procedure handlers. Handles are passed in
// explicitly so tests can construct the API against fakes.
type API struct {
	Engine     FeedEngine
	Feeds      FeedStore
	Posts      PostStore
	Users      UserStore
	Social     SocialService
	Visibility *feed.VisibilityResolver
}

// viewerOf reads the viewer id placed in the "sub" header by the auth
// middleware. Nil means anonymous.
func viewerOf(c *gin.Context) *string {
	sub := c.Request.Header.Get("sub")
	if sub == "" {
		return nil
	}
	return &sub
}

func respondError(c *gin.Context, err error) {
	var typed *status.Error
	if !errors.As(err, &typed) {
		typed = status.Internal(err, "unexpected error")
	}
	if typed.Kind == status.KindInternal {
		Log.Error("internal error, correlation id ", typed.CorrelationId, ": ", typed)
	}
	c.JSON(status.HTTPStatus(typed.Kind), gin.H{
		"code": typed.Kind.String(),
		"msg":  typed.SafeMessage(),
	})
}

type getFeedRequest struct {
	FeedId *string           `json:"feedId"`
	Filter *model.FeedFilter `json:"filter"`
	Limit  int               `json:"limit"`
	Cursor string            `json:"cursor"`
}

// GetFeed handles feed.getFeed. Absent feedId and filter means the default
// timeline.
func (a *API) GetFeed(c *gin.Context) {
	var req getFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	page, err := a.Engine.GetPage(c.Request.Context(), viewerOf(c), feed.FilterSource{
		FeedId: req.FeedId,
		Filter: req.Filter,
	}, req.Cursor, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type createFeedRequest struct {
	Name   string           `json:"name"`
	Filter model.FeedFilter `json:"filter"`
}

// CreateFeed handles feed.createFeed. The filter is compiled once here so a
// bad document is rejected at creation, not on every later query.
func (a *API) CreateFeed(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req createFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}
	if req.Name == "" {
		respondError(c, status.Validationf("feed name is required"))
		return
	}
	if _, err := feed.Compile(req.Filter); err != nil {
		respondError(c, err)
		return
	}

	doc, err := json.Marshal(req.Filter)
	if err != nil {
		respondError(c, status.Validationf("malformed filter document"))
		return
	}
	row := &model.Feed{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		CreatorID: *viewer,
		Name:      req.Name,
		Filter:    datatypes.JSON(doc),
	}
	if err := a.Feeds.Create(c.Request.Context(), row); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feed": row})
}

type updateFeedRequest struct {
	FeedId string            `json:"feedId"`
	Name   *string           `json:"name"`
	Filter *model.FeedFilter `json:"filter"`
}

// UpdateFeed handles feed.updateFeed, owner only.
func (a *API) UpdateFeed(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req updateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}
	if req.FeedId == "" {
		respondError(c, status.Validationf("feedId is required"))
		return
	}

	row, err := a.Feeds.Get(c.Request.Context(), req.FeedId)
	if err != nil {
		respondError(c, err)
		return
	}
	if row.CreatorID != *viewer {
		respondError(c, status.Authorizationf("feed %s is not owned by caller", req.FeedId))
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			respondError(c, status.Validationf("feed name cannot be empty"))
			return
		}
		row.Name = *req.Name
	}
	if req.Filter != nil {
		if _, err := feed.Compile(*req.Filter); err != nil {
			respondError(c, err)
			return
		}
		doc, err := json.Marshal(*req.Filter)
		if err != nil {
			respondError(c, status.Validationf("malformed filter document"))
			return
		}
		row.Filter = datatypes.JSON(doc)
	}

	if err := a.Feeds.Update(c.Request.Context(), row); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feed": row})
}

type deleteFeedRequest struct {
	FeedId string `json:"feedId"`
}

// DeleteFeed handles feed.deleteFeed, owner only. Posts the feed matched are
// untouched.
func (a *API) DeleteFeed(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req deleteFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	row, err := a.Feeds.Get(c.Request.Context(), req.FeedId)
	if err != nil {
		respondError(c, err)
		return
	}
	if row.CreatorID != *viewer {
		respondError(c, status.Authorizationf("feed %s is not owned by caller", req.FeedId))
		return
	}

	if err := a.Feeds.Delete(c.Request.Context(), req.FeedId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListFeeds handles feed.listFeeds: all feeds owned by the caller.
func (a *API) ListFeeds(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	rows, err := a.Feeds.ListByCreator(c.Request.Context(), *viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": rows})
}

type followRequest struct {
	UserId string `json:"userId"`
}

// Follow handles social.follow, triggering friendship derivation inside the
// same transaction as the edge write.
func (a *API) Follow(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	exists, err := a.Users.Exists(c.Request.Context(), req.UserId)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, status.NotFoundf("user %s not found", req.UserId))
		return
	}

	if err := a.Social.Follow(c.Request.Context(), *viewer, req.UserId); err != nil {
		respondError(c, err)
		return
	}
	a.Visibility.InvalidateFollowed(c.Request.Context(), *viewer)
	c.JSON(http.StatusOK, gin.H{"following": true})
}

// Unfollow handles social.unfollow.
func (a *API) Unfollow(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	if err := a.Social.Unfollow(c.Request.Context(), *viewer, req.UserId); err != nil {
		respondError(c, err)
		return
	}
	a.Visibility.InvalidateFollowed(c.Request.Context(), *viewer)
	c.JSON(http.StatusOK, gin.H{"following": false})
}

type ensureUserRequest struct {
	Name string `json:"name"`
}

// EnsureUser handles user.ensure: idempotent account bootstrap on first
// authenticated call.
func (a *API) EnsureUser(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req ensureUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}
	if req.Name == "" {
		respondError(c, status.Validationf("name is required"))
		return
	}
	user, err := a.Users.Ensure(c.Request.Context(), *viewer, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type createPostRequest struct {
	Type       model.PostType   `json:"type"`
	Content    string           `json:"content"`
	MediaUrls  []string         `json:"mediaUrls"`
	Tags       []string         `json:"tags"`
	Visibility model.Visibility `json:"visibility"`
}

// CreatePost handles post.create.
func (a *API) CreatePost(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}
	if !model.ValidPostType(req.Type) {
		respondError(c, status.Validationf("unknown post type %q", req.Type))
		return
	}
	if !model.ValidVisibility(req.Visibility) {
		respondError(c, status.Validationf("unknown visibility %q", req.Visibility))
		return
	}

	post := &model.Post{
		Id:         uuid.New().String(),
		CreatedAt:  time.Now(),
		AuthorID:   *viewer,
		Type:       req.Type,
		Content:    req.Content,
		MediaUrls:  req.MediaUrls,
		Tags:       req.Tags,
		Visibility: req.Visibility,
	}
	if err := a.Posts.Create(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

type postIdRequest struct {
	PostId string `json:"postId"`
}

// GetPost handles post.get: a single item fetch guarded by the per-post
// visibility check. A soft-deleted post is visible to its author only.
func (a *API) GetPost(c *gin.Context) {
	viewer := viewerOf(c)
	var req postIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	post, err := a.Posts.Get(c.Request.Context(), req.PostId)
	if err != nil {
		respondError(c, err)
		return
	}
	if post.DeletedAt.Valid && (viewer == nil || *viewer != post.AuthorID) {
		respondError(c, status.NotFoundf("post %s not found", req.PostId))
		return
	}
	visible, err := a.Visibility.CanView(c.Request.Context(), viewer, post)
	if err != nil {
		respondError(c, err)
		return
	}
	if !visible {
		respondError(c, status.Authorizationf("post %s is not visible to caller", req.PostId))
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost handles post.delete, owner only, soft delete.
func (a *API) DeletePost(c *gin.Context) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req postIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	post, err := a.Posts.Get(c.Request.Context(), req.PostId)
	if err != nil {
		respondError(c, err)
		return
	}
	if post.AuthorID != *viewer {
		respondError(c, status.Authorizationf("post %s is not owned by caller", req.PostId))
		return
	}
	if err := a.Posts.SoftDelete(c.Request.Context(), req.PostId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LikePost handles post.like. The counter adjustment is clamped at zero in
// the store.
func (a *API) LikePost(c *gin.Context) {
	a.adjustLike(c, 1)
}

// UnlikePost handles post.unlike.
func (a *API) UnlikePost(c *gin.Context) {
	a.adjustLike(c, -1)
}

func (a *API) adjustLike(c *gin.Context, delta int) {
	viewer := viewerOf(c)
	if viewer == nil {
		respondError(c, status.Authorizationf("authentication required"))
		return
	}
	var req postIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, status.Validationf("malformed request: %s", err.Error()))
		return
	}

	post, err := a.Posts.Get(c.Request.Context(), req.PostId)
	if err != nil {
		respondError(c, err)
		return
	}
	visible, err := a.Visibility.CanView(c.Request.Context(), viewer, post)
	if err != nil {
		respondError(c, err)
		return
	}
	if !visible || post.DeletedAt.Valid {
		respondError(c, status.NotFoundf("post %s not found", req.PostId))
		return
	}
	if err := a.Posts.AdjustLikeCount(c.Request.Context(), req.PostId, delta); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
