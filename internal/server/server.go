// Package server exposes the assessment service and the AI proxies over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/config"
	"github.com/abhisek/selfassess/internal/proxy"
	"github.com/abhisek/selfassess/internal/service"
)

// maxAudioBytes matches the transcription API's upload limit.
const maxAudioBytes = 25 << 20

// Server is the HTTP API.
type Server struct {
	svc      *service.Service
	proxy    *proxy.Handler
	metrics  *Metrics
	logger   *zap.Logger
	validate *validator.Validate
	engine   *gin.Engine
}

// New builds the router.
func New(svc *service.Service, p *proxy.Handler, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		svc:      svc,
		proxy:    p,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.metrics.middleware(), identityMiddleware(), requestLogger(s.logger))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/transcribe", s.transcribe)
	v1.POST("/chat", s.chat)
	v1.GET("/questionnaire", s.getQuestionnaire)
	v1.PUT("/questionnaire", requireIdentity(), s.putQuestionnaire)

	a := v1.Group("/assessments", requireIdentity())
	a.POST("", s.createAssessment)
	a.GET("", s.listAssessments)
	a.GET("/:id", s.getAssessment)
	a.DELETE("/:id", s.deleteAssessment)
	a.PUT("/:id/answers/:questionId", s.updateAnswer)
	a.POST("/:id/inventory/software", s.addSoftware)
	a.DELETE("/:id/inventory/software/:entryId", s.removeSoftware)
	a.POST("/:id/inventory/hardware", s.addHardware)
	a.DELETE("/:id/inventory/hardware/:entryId", s.removeHardware)
	a.POST("/:id/submit", s.submit)
	a.GET("/:id/report", s.report)

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
