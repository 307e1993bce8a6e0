package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CategoryService
	Genres     service.GenreService
	Works      service.WorkService
	Reviews    service.ReviewService
	Comments   service.CommentService

	Logger      *slog.Logger
	Metrics     *metrics.Metrics // nil disables /metrics
	CORSOrigins []string
	// Ping backs /healthz, usually the database ping
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, apperr.NotFound("", "not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		respondError(c, apperr.NotAllowed("method "+c.Request.Method+" not allowed"))
	})

	r.GET("/healthz", healthz(cfg.Ping))
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.Authenticate(cfg.Auth))

	NewAuthHandler(cfg.Auth).RegisterRoutes(v1)
	NewUserHandler(cfg.Users).RegisterRoutes(v1)
	NewCategoryHandler(cfg.Categories).RegisterRoutes(v1)
	NewGenreHandler(cfg.Genres).RegisterRoutes(v1)
	NewWorkHandler(cfg.Works).RegisterRoutes(v1)
	NewReviewHandler(cfg.Reviews).RegisterRoutes(v1)
	NewCommentHandler(cfg.Comments).RegisterRoutes(v1)

	return r
}

func healthz(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
