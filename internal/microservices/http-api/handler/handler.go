package handler

import (
	"context"
	"strconv"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/response"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondError(c *gin.Context, err error) {
	response.Error(c, err)
}

// pageParam reads ?page=, defaulting to 1. Anything that is not a positive
// integer is treated like a page past the end.
func pageParam(c *gin.Context) (int, error) {
	raw := c.Query("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, apperr.NotFound("page", "invalid page")
	}
	return page, nil
}

// idParam parses a numeric path segment, non-numeric ids do not match any route.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound(name, "not found")
	}
	return id, nil
}
