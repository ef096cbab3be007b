package httpapi

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// getPortLists handles GET /api/port/list.
func (s *Server) getPortLists(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lists": s.catalog.List()})
}

// getPortList handles GET /api/port/list/:name.
func (s *Server) getPortList(c *gin.Context) {
	m, ok := s.catalog.Get(c.Param("name"))
	if !ok {
		notFound(c, "port list")
		return
	}
	c.JSON(http.StatusOK, m)
}

// postPortList handles POST /api/port/list/:name — creates (or replaces)
// the named list with the request body's {port_str: service_str} map.
// Spec §6 lists POST alongside PUT/DELETE on this route; LANscape's
// Catalog has no separate create-vs-replace distinction (Put always
// upserts), so this shares putPortList's implementation.
func (s *Server) postPortList(c *gin.Context) {
	s.putPortList(c)
}

// putPortList handles PUT /api/port/list/:name — replaces the named
// list wholesale with the request body's {port_str: service_str} map.
func (s *Server) putPortList(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.Put(c.Param("name"), body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name")})
}

// deletePortList handles DELETE /api/port/list/:name.
func (s *Server) deletePortList(c *gin.Context) {
	if err := s.catalog.Delete(c.Param("name")); err != nil {
		if os.IsNotExist(err) {
			notFound(c, "port list")
			return
		}
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
