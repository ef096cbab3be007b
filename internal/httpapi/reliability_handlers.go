package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lanscape/internal/config"
)

// reliabilityJobRequest is the POST /api/reliability/jobs body: spec §6
// documents the repeat-count field as `count` ({config, label?, count?}).
type reliabilityJobRequest struct {
	Config config.ScanConfig `json:"config"`
	Label  string            `json:"label"`
	Count  int               `json:"count"`
}

// postReliabilityJob handles POST /api/reliability/jobs.
func (s *Server) postReliabilityJob(c *gin.Context) {
	var req reliabilityJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	job := s.reliability.Enqueue(req.Config, req.Label, req.Count)
	c.JSON(http.StatusAccepted, job)
}

// getReliabilityJobs handles GET /api/reliability/jobs.
func (s *Server) getReliabilityJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": s.reliability.List()})
}

// getReliabilityJob handles GET /api/reliability/jobs/:id.
func (s *Server) getReliabilityJob(c *gin.Context) {
	job, ok := s.reliability.Get(c.Param("id"))
	if !ok {
		notFound(c, "job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// postReliabilityJobCancel handles POST /api/reliability/jobs/:id/cancel.
func (s *Server) postReliabilityJobCancel(c *gin.Context) {
	if !s.reliability.Cancel(c.Param("id")) {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not queued"})
		return
	}
	c.Status(http.StatusNoContent)
}

// getReliabilityMetrics handles GET /api/reliability/metrics.
func (s *Server) getReliabilityMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.reliability.StatusCounts())
}
