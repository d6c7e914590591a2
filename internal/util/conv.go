package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination reads page/limit query parameters, clamping them to sane values.
func Pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = 20
	}
	return page, limit
}
