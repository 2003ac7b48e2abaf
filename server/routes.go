package server

import "github.com/gin-gonic/gin"

// RegisterRoutes binds the RPC-style procedures under /api. Every procedure
// is a POST with a JSON body; the viewer comes from the auth middleware.
func RegisterRoutes(router *gin.Engine, api *API) {
	rpc := router.Group("/api")

	rpc.POST("/feed.getFeed", api.GetFeed)
	rpc.POST("/feed.createFeed", api.CreateFeed)
	rpc.POST("/feed.updateFeed", api.UpdateFeed)
	rpc.POST("/feed.deleteFeed", api.DeleteFeed)
	rpc.POST("/feed.listFeeds", api.ListFeeds)

	rpc.POST("/social.follow", api.Follow)
	rpc.POST("/social.unfollow", api.Unfollow)

	rpc.POST("/user.ensure", api.EnsureUser)

	rpc.POST("/post.create", api.CreatePost)
	rpc.POST("/post.get", api.GetPost)
	rpc.POST("/post.delete", api.DeletePost)
	rpc.POST("/post.like", api.LikePost)
	rpc.POST("/post.unlike", api.UnlikePost)
}
