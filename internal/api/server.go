package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"worklog/internal/config"
	"worklog/internal/logging"
	"worklog/internal/services"
)

// Server is the worklog HTTP API
type Server struct {
	services *services.ServiceContainer
	cfg      config.ServerConfig
	router   *gin.Engine
}

// NewServer builds the router over the given services
func NewServer(container *services.ServiceContainer, cfg config.ServerConfig) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(requestID(), gin.Logger(), gin.Recovery())

	s := &Server{
		services: container,
		cfg:      cfg,
		router:   router,
	}

	router.GET("/health", s.handleHealth)
	router.POST("/accounts/register", s.handleRegister)

	authed := router.Group("/", basicAuth(container.UserService))
	{
		authed.GET("/accounts/profile", s.handleProfile)
		authed.POST("/accounts/password_change", s.handlePasswordChange)

		authed.GET("/tasks", s.handleListTasks)
		authed.POST("/tasks", s.handleCreateTask)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.PUT("/tasks/:id", s.handleUpdateTask)

		authed.GET("/subordinates", s.handleListSubordinates)
		authed.GET("/subordinates/tasks", s.handleSubordinateTasks)

		authed.GET("/export/:format", s.handleExport)
		authed.GET("/reports/week", s.handleWeekReport)
	}

	return s
}

// Router exposes the handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logging.Infof("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
