package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/strandhq/strand/feed"
	"github.com/strandhq/strand/server"
	"github.com/strandhq/strand/server/middlewares"
	"github.com/strandhq/strand/social"
	"github.com/strandhq/strand/store"
	. "github.com/strandhq/strand/utils"
	"github.com/strandhq/strand/utils/dotenv"
	. "github.com/strandhq/strand/utils/flag"
	. "github.com/strandhq/strand/utils/log"
)

const followedCacheTTL = 30 * time.Second

func init() {
	// Middlewares
	if !ByPassAuth {
		middlewares.Setup()
	}

	Log.Info("api server initialized")
}

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	defer cleanup()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	InitTracer()
	InitProfiler()

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	DatabaseSetupAndMigration(db)

	graph := social.NewGormGraph(db)
	visibility := &feed.VisibilityResolver{
		Graph:    graph,
		Cache:    GetRedisClient(),
		CacheTTL: followedCacheTTL,
	}
	api := &server.API{
		Engine: &feed.Executor{
			Posts:      store.NewPostStore(db),
			Feeds:      store.NewFeedStore(db),
			Visibility: visibility,
		},
		Feeds:      store.NewFeedStore(db),
		Posts:      store.NewPostStore(db),
		Users:      store.NewUserStore(db),
		Social:     social.NewService(graph),
		Visibility: visibility,
	}

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))
	if !ByPassAuth {
		router.Use(middlewares.Auth())
	}

	server.RegisterRoutes(router, api)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
