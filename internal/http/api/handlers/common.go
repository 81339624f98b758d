package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/appdeck/appdeck/internal/authz"
	"github.com/appdeck/appdeck/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// getUserID returns the authenticated user ID from the gin context.
func getUserID(c *gin.Context) uint64 {
	v, ok := c.Get("userID")
	if !ok {
		return 0
	}
	id, ok := v.(uint64)
	if !ok {
		return 0
	}
	return id
}

// MissingID rejects a single-resource operation invoked without an
// identifier, before any repository lookup.
func MissingID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "missing primary key"})
}

// writeError maps domain errors onto the response taxonomy. Anything not
// in the taxonomy is a datastore fault and passes through as a 500.
func writeError(c *gin.Context, err error, fallback string) {
	var numErr *strconv.NumError
	switch {
	case errors.Is(err, authz.ErrMissingPrimaryKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing primary key"})
	case errors.As(err, &numErr):
		// A non-numeric id cannot name an existing row.
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, authz.ErrOwnershipDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "duplicate value"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
