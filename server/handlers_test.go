package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/strandhq/strand/feed"
	"github.com/strandhq/strand/model"
	"github.com/strandhq/strand/social"
	"github.com/strandhq/strand/status"
)

type fakeFeedStore struct {
	feeds map[string]*model.Feed
}

func (s *fakeFeedStore) Get(_ context.Context, feedId string) (*model.Feed, error) {
	row, ok := s.feeds[feedId]
	if !ok {
		return nil, status.NotFoundf("feed %s not found", feedId)
	}
	return row, nil
}

func (s *fakeFeedStore) Create(_ context.Context, row *model.Feed) error {
	s.feeds[row.Id] = row
	return nil
}

func (s *fakeFeedStore) Update(_ context.Context, row *model.Feed) error {
	s.feeds[row.Id] = row
	return nil
}

func (s *fakeFeedStore) Delete(_ context.Context, feedId string) error {
	if _, ok := s.feeds[feedId]; !ok {
		return status.NotFoundf("feed %s not found", feedId)
	}
	delete(s.feeds, feedId)
	return nil
}

func (s *fakeFeedStore) ListByCreator(_ context.Context, userId string) ([]*model.Feed, error) {
	var rows []*model.Feed
	for _, row := range s.feeds {
		if row.CreatorID == userId {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakePostStore struct {
	posts map[string]*model.Post
}

func (s *fakePostStore) Get(_ context.Context, id string) (*model.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return nil, status.NotFoundf("post %s not found", id)
	}
	return post, nil
}

func (s *fakePostStore) Create(_ context.Context, post *model.Post) error {
	s.posts[post.Id] = post
	return nil
}

func (s *fakePostStore) SoftDelete(_ context.Context, id string) error {
	delete(s.posts, id)
	return nil
}

func (s *fakePostStore) AdjustLikeCount(_ context.Context, id string, delta int) error {
	post, ok := s.posts[id]
	if !ok {
		return status.NotFoundf("post %s not found", id)
	}
	next := post.LikeCount + int32(delta)
	if next < 0 {
		next = 0
	}
	post.LikeCount = next
	return nil
}

type fakeUserStore struct {
	users map[string]bool
}

func (s *fakeUserStore) Ensure(_ context.Context, id, name string) (*model.User, error) {
	s.users[id] = true
	return &model.User{Id: id, Name: name}, nil
}

func (s *fakeUserStore) Exists(_ context.Context, id string) (bool, error) {
	return s.users[id], nil
}

type stubEngine struct {
	page *feed.PostPage
	err  error
}

func (e *stubEngine) GetPage(context.Context, *string, feed.FilterSource, string, int) (*feed.PostPage, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.page, nil
}

func newTestAPI() (*API, *fakeFeedStore, *fakePostStore, *fakeUserStore) {
	graph := social.NewMemoryGraph()
	feeds := &fakeFeedStore{feeds: map[string]*model.Feed{}}
	posts := &fakePostStore{posts: map[string]*model.Post{}}
	users := &fakeUserStore{users: map[string]bool{"alice": true, "bob": true}}
	api := &API{
		Engine:     &stubEngine{page: &feed.PostPage{}},
		Feeds:      feeds,
		Posts:      posts,
		Users:      users,
		Social:     social.NewService(graph),
		Visibility: &feed.VisibilityResolver{Graph: graph},
	}
	return api, feeds, posts, users
}

func newTestRouter(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, api)
	return router
}

// call performs one RPC POST. viewer == "" means anonymous.
func call(t *testing.T, router *gin.Engine, viewer, procedure string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/"+procedure, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if viewer != "" {
		req.Header.Set("sub", viewer)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestFollowLifecycle(t *testing.T) {
	api, _, _, _ := newTestAPI()
	router := newTestRouter(api)

	// Anonymous callers cannot follow.
	resp := call(t, router, "", "social.follow", gin.H{"userId": "bob"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	// Unknown target.
	resp = call(t, router, "alice", "social.follow", gin.H{"userId": "nobody"})
	require.Equal(t, http.StatusNotFound, resp.Code)

	// Self follow is a validation error, not a silent no-op.
	resp = call(t, router, "alice", "social.follow", gin.H{"userId": "alice"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	// Follow, then follow again: both succeed, state unchanged.
	resp = call(t, router, "alice", "social.follow", gin.H{"userId": "bob"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"following": true}`, resp.Body.String())

	resp = call(t, router, "alice", "social.follow", gin.H{"userId": "bob"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"following": true}`, resp.Body.String())

	resp = call(t, router, "alice", "social.unfollow", gin.H{"userId": "bob"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"following": false}`, resp.Body.String())

	// Unfollowing a user who is not followed is a defined error.
	resp = call(t, router, "alice", "social.unfollow", gin.H{"userId": "bob"})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFeedCrudOwnership(t *testing.T) {
	api, feeds, _, _ := newTestAPI()
	router := newTestRouter(api)

	resp := call(t, router, "alice", "feed.createFeed", gin.H{
		"name":   "go posts",
		"filter": gin.H{"type": "predicate", "field": "tag", "op": "in", "values": []string{"go"}},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, feeds.feeds, 1)

	var feedId string
	for id := range feeds.feeds {
		feedId = id
	}

	// A malformed filter is rejected at creation time.
	resp = call(t, router, "alice", "feed.createFeed", gin.H{
		"name":   "bad",
		"filter": gin.H{"type": "predicate", "field": "likes", "op": "equals", "value": "3"},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	// Only the owner can update or delete.
	resp = call(t, router, "bob", "feed.updateFeed", gin.H{"feedId": feedId, "name": "stolen"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = call(t, router, "bob", "feed.deleteFeed", gin.H{"feedId": feedId})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = call(t, router, "alice", "feed.updateFeed", gin.H{"feedId": feedId, "name": "renamed"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "renamed", feeds.feeds[feedId].Name)

	resp = call(t, router, "alice", "feed.deleteFeed", gin.H{"feedId": feedId})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"success": true}`, resp.Body.String())
	require.Empty(t, feeds.feeds)
}

func TestGetPostVisibility(t *testing.T) {
	api, _, posts, _ := newTestAPI()
	router := newTestRouter(api)

	posts.posts["p1"] = &model.Post{
		Id:         "p1",
		AuthorID:   "alice",
		Type:       model.PostTypeText,
		Visibility: model.VisibilityPrivate,
	}

	// The author sees their own private post.
	resp := call(t, router, "alice", "post.get", gin.H{"postId": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)

	// Anyone else does not.
	resp = call(t, router, "bob", "post.get", gin.H{"postId": "p1"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = call(t, router, "", "post.get", gin.H{"postId": "p1"})
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestInternalErrorIsOpaque(t *testing.T) {
	api, _, _, _ := newTestAPI()
	api.Engine = &stubEngine{err: status.Internal(errors.New("pq: connection refused"), "store unavailable")}
	router := newTestRouter(api)

	resp := call(t, router, "", "feed.getFeed", gin.H{})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.NotContains(t, resp.Body.String(), "connection refused")
	require.Contains(t, resp.Body.String(), "correlation id")
}

func TestLikeClampAndCounts(t *testing.T) {
	api, _, posts, _ := newTestAPI()
	router := newTestRouter(api)

	posts.posts["p1"] = &model.Post{
		Id:         "p1",
		AuthorID:   "alice",
		Type:       model.PostTypeText,
		Visibility: model.VisibilityPublic,
	}

	resp := call(t, router, "bob", "post.like", gin.H{"postId": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, int32(1), posts.posts["p1"].LikeCount)

	resp = call(t, router, "bob", "post.unlike", gin.H{"postId": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = call(t, router, "bob", "post.unlike", gin.H{"postId": "p1"})
	require.Equal(t, http.StatusOK, resp.Code)
	// Counter never goes negative.
	require.Equal(t, int32(0), posts.posts["p1"].LikeCount)
}
