package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lanscape/internal/core/scanmodel"
)

// writeError maps an error to the HTTP status spec §7 requires:
// InputError and SubnetTooLargeError -> 400, anything else -> 500 with a
// message only (never a raw stack trace). "Not found" responses (404) go
// through notFound instead.
func writeError(c *gin.Context, err error) {
	if ie, ok := err.(*scanmodel.InputError); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ie.Error(), "field": ie.Field})
		return
	}
	if _, ok := err.(*scanmodel.SubnetTooLargeError); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := err.(*scanmodel.TerminationFailure); ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}
