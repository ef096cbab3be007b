// Package httpapi implements LANscape's HTTP/JSON front end (spec §6):
// scan lifecycle, reliability queue, port-list CRUD, and subnet tools,
// grounded on the teacher's gin Router/handler split (neoAgent's
// internal/app/agent/router).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lanscape/internal/core/reliability"
	"lanscape/internal/core/scanmanager"
	"lanscape/internal/pkg/logger"
	"lanscape/internal/pkg/version"
	"lanscape/internal/portcatalog"
)

// Server owns the gin engine and every collaborator its handlers call
// into. Unlike the teacher's Router, there is no auth/CORS/rate-limit
// middleware stack — LANscape's HTTP surface is a local tool's control
// plane, not a multi-tenant API.
type Server struct {
	engine      *gin.Engine
	manager     *scanmanager.Manager
	reliability *reliability.Queue
	catalog     *portcatalog.Catalog

	shutdownFn func()
}

// New builds the gin engine and registers every route.
func New(manager *scanmanager.Manager, queue *reliability.Queue, catalog *portcatalog.Catalog, shutdownFn func()) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(accessLogMiddleware())

	s := &Server{
		engine:      engine,
		manager:     manager,
		reliability: queue,
		catalog:     catalog,
		shutdownFn:  shutdownFn,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.getHealth)
	s.engine.GET("/version", s.getVersion)
	s.engine.POST("/shutdown", s.postShutdown)

	api := s.engine.Group("/api")

	portGroup := api.Group("/port/list")
	portGroup.GET("", s.getPortLists)
	portGroup.GET("/:name", s.getPortList)
	portGroup.POST("/:name", s.postPortList)
	portGroup.PUT("/:name", s.putPortList)
	portGroup.DELETE("/:name", s.deletePortList)

	api.POST("/scan", s.postScan)
	api.POST("/scan/async", s.postScanAsync)
	api.GET("/scan/:uid", s.getScan)
	api.GET("/scan/:uid/summary", s.getScanSummary)
	api.POST("/scan/:uid/terminate", s.postScanTerminate)

	toolsGroup := api.Group("/tools")
	toolsGroup.GET("/subnet/list", s.getSubnetList)
	toolsGroup.GET("/subnet/test", s.getSubnetTest)
	toolsGroup.GET("/config/defaults", s.getConfigDefaults)

	reliabilityGroup := api.Group("/reliability")
	reliabilityGroup.POST("/jobs", s.postReliabilityJob)
	reliabilityGroup.GET("/jobs", s.getReliabilityJobs)
	reliabilityGroup.GET("/jobs/:id", s.getReliabilityJob)
	reliabilityGroup.POST("/jobs/:id/cancel", s.postReliabilityJobCancel)
	reliabilityGroup.GET("/metrics", s.getReliabilityMetrics)
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    version.GetVersion(),
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
		"go_version": version.GoVersion,
	})
}

// postShutdown terminates every in-flight scan and, unless the process
// is running with --persistent, triggers graceful server shutdown
// (spec §3.10's /shutdown route).
func (s *Server) postShutdown(c *gin.Context) {
	errs := s.manager.TerminateAll()
	for _, err := range errs {
		logger.Warnf("scan termination during shutdown: %v", err)
	}
	s.reliability.Stop()

	c.JSON(http.StatusOK, gin.H{"terminated_with_errors": len(errs)})

	if s.shutdownFn != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownFn()
		}()
	}
}

// Run starts an *http.Server bound to addr and blocks until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
