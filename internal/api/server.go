package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/privacypulse/pulse-server/internal/feed"
	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/model"
	"github.com/privacypulse/pulse-server/internal/security"
	"github.com/privacypulse/pulse-server/internal/service"
)

// Pinger reports backend liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP presentation shell over the core services.
type Server struct {
	log          *logger.Logger
	directory    *service.Directory
	view         *service.View
	erasure      *service.Erasure
	export       *service.Export
	dist         *feed.Distributor
	tokens       model.TokenManager
	revoker      model.SessionRevoker
	db           Pinger
	cache        Pinger
	searchLimits *security.LimiterStore

	httpServer *http.Server
}

func NewServer(
	log *logger.Logger,
	directory *service.Directory,
	view *service.View,
	erasure *service.Erasure,
	export *service.Export,
	dist *feed.Distributor,
	tokens model.TokenManager,
	revoker model.SessionRevoker,
	db Pinger,
	cache Pinger,
	searchLimits *security.LimiterStore,
	addr string,
) *Server {
	s := &Server{
		log:          log,
		directory:    directory,
		view:         view,
		erasure:      erasure,
		export:       export,
		dist:         dist,
		tokens:       tokens,
		revoker:      revoker,
		db:           db,
		cache:        cache,
		searchLimits: searchLimits,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.loggingMiddleware())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/v1", s.authMiddleware())
	{
		v1.POST("/profile", s.handleRegister)
		v1.GET("/profile", s.handleProfile)
		v1.GET("/profiles/search", s.searchRateLimitMiddleware(), s.handleSearch)
		v1.POST("/views", s.handleRecordView)
		v1.GET("/feed", s.handleFeed)
		v1.GET("/feed/stream", s.handleFeedStream)
		v1.POST("/erase", s.handleErase)
		v1.POST("/export", s.handleExport)
	}

	return router
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Address() string {
	return s.httpServer.Addr
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
