package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lanscape/internal/config"
)

// postScan runs POST /api/scan (spec §6): parse a ScanConfig body, launch
// it on a background worker via ScanManager, and return immediately with
// {status:"running", scan_id} — the caller polls /api/scan/{uid} or
// /api/scan/{uid}/summary for progress.
func (s *Server) postScan(c *gin.Context) {
	var cfg config.ScanConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scanner, err := s.manager.NewScan(cfg)
	if err != nil {
		writeError(c, err)
		return
	}

	s.manager.StartAsync(context.Background(), scanner)
	c.JSON(http.StatusAccepted, gin.H{"status": "running", "scan_id": scanner.Results().UID})
}

// postScanAsync runs POST /api/scan/async (spec §6): same body, but runs
// the scan to completion on the request goroutine before responding with
// {status:"complete", scan_id} — "async" names the caller's experience
// (one blocking call instead of poll-until-done), not the server's.
func (s *Server) postScanAsync(c *gin.Context) {
	var cfg config.ScanConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scanner, err := s.manager.NewScan(cfg)
	if err != nil {
		writeError(c, err)
		return
	}

	scanner.Start(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "complete", "scan_id": scanner.Results().UID})
}

// getScan handles GET /api/scan/:uid.
func (s *Server) getScan(c *gin.Context) {
	scanner, ok := s.manager.GetScan(c.Param("uid"))
	if !ok {
		notFound(c, "scan")
		return
	}
	c.JSON(http.StatusOK, scanner.Results().ExportSnapshot())
}

// getScanSummary handles GET /api/scan/:uid/summary.
func (s *Server) getScanSummary(c *gin.Context) {
	scanner, ok := s.manager.GetScan(c.Param("uid"))
	if !ok {
		notFound(c, "scan")
		return
	}
	c.JSON(http.StatusOK, scanner.Results().Summary(scanner.PercentComplete))
}

// postScanTerminate handles POST /api/scan/:uid/terminate.
func (s *Server) postScanTerminate(c *gin.Context) {
	scanner, ok := s.manager.GetScan(c.Param("uid"))
	if !ok {
		notFound(c, "scan")
		return
	}
	if err := scanner.Terminate(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scanner.Results().Summary(scanner.PercentComplete))
}
