package utils

import (
	"idea-review-platform/internal/errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetPaginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	return page, pageSize
}

// ParseIDParam reads a numeric path parameter, erroring the context on
// garbage input so handlers can bail with a plain return.
func ParseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid "+name, err))
		return 0, false
	}
	return id, true
}

// CurrentUserID pulls the authenticated user id set by the auth middleware.
func CurrentUserID(c *gin.Context) uint64 {
	return c.GetUint64("user_id")
}
