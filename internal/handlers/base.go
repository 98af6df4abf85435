package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"innoportal/internal/apperr"
	"innoportal/internal/middleware"
	"innoportal/internal/models"
)

// respondError maps an error kind to a status code. Internal failures are logged in full
// and answered with a generic message.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var status int
	switch apperr.Kind(err) {
	case apperr.ErrValidation, apperr.ErrConflict:
		status = http.StatusBadRequest
	case apperr.ErrNotFound:
		status = http.StatusNotFound
	case apperr.ErrForbidden:
		status = http.StatusForbidden
	case apperr.ErrAuthRequired:
		status = http.StatusUnauthorized
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be true or false", key)
	}
	return &v, nil
}

// optionalQuery returns a pointer to the query value, nil when absent or empty.
func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
