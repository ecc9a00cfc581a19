package http

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Assessor produces an assessment for one validated submission.
type Assessor interface {
	Assess(ctx context.Context, source pipeline.Source, req domain.FloodAssessmentRequest) (domain.Assessment, error)
	Reject(source pipeline.Source, reason string)
}

// Server exposes the assessment form, the JSON API, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	logger     *slog.Logger
}

// NewServer creates an HTTP server. The router runs in gin's current mode;
// callers set gin.SetMode before constructing it.
func NewServer(addr string, assessor Assessor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	registerTagNames()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.tmpl")))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		logger:   logger,
	}

	router.GET("/", s.handleIndex)
	router.POST("/assess", s.handleFormSubmit)

	api := router.Group("/api/v1")
	api.POST("/assessments", s.handleCreateAssessment)
	api.GET("/features", handleFeatures)

	router.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	router.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
