package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-hq/inkwell/internal/config"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	generationdomain "github.com/inkwell-hq/inkwell/internal/generation/domain"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"github.com/inkwell-hq/inkwell/internal/observability"
	obsmiddleware "github.com/inkwell-hq/inkwell/internal/observability/logger"
	obsmetrics "github.com/inkwell-hq/inkwell/internal/observability/metrics"
	"github.com/inkwell-hq/inkwell/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	identitySvc   identitydomain.Service
	creationSvc   creationdomain.Service
	generationSvc generationdomain.Service
	limiter       *ratelimit.GenerationLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	IdentitySvc   identitydomain.Service
	CreationSvc   creationdomain.Service
	GenerationSvc generationdomain.Service
	Limiter       *ratelimit.GenerationLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics          `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		identitySvc:   p.IdentitySvc,
		creationSvc:   p.CreationSvc,
		generationSvc: p.GenerationSvc,
		limiter:       p.Limiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAIRoutes()
	svc.registerCreationRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAIRoutes() {
	ai := s.engine.Group("/api/ai", s.AuthRequired(), s.GenerationRateLimit())

	ai.POST("/generate-article", s.GenerateArticle)
	ai.POST("/generate-blog-title", s.GenerateBlogTitle)
	ai.POST("/generate-image", s.GenerateImage)
	ai.POST("/remove-image-background", s.RemoveImageBackground)
	ai.POST("/remove-image-object", s.RemoveImageObject)
	ai.POST("/resume-review", s.ResumeReview)
}

func (s *Server) registerCreationRoutes() {
	creations := s.engine.Group("/api/creations", s.AuthRequired())

	creations.GET("", s.ListMyCreations)
	creations.GET("/community", s.ListCommunityCreations)
	creations.GET("/:id", s.GetCreation)
	creations.POST("/:id/like", s.ToggleLikeCreation)
	creations.POST("/:id/publish", s.PublishCreation)
}
