package pagination

import (
	"strconv"

	"github.com/atelier-studio/core/internal/store"
	"github.com/gin-gonic/gin"
)

// FromContext extracts cursor-pagination and filter params from the
// request. Invalid values fall back to defaults; an unusable cursor is
// handled downstream (treated as the first page).
func FromContext(c *gin.Context) store.ListQuery {
	q := store.ListQuery{
		Limit:      parseIntOr(c.DefaultQuery("limit", ""), store.DefaultLimit),
		Cursor:     c.Query("cursor"),
		Status:     c.Query("status"),
		Visibility: c.Query("visibility"),
	}
	if q.Limit < 1 {
		q.Limit = store.DefaultLimit
	}
	if q.Limit > store.MaxLimit {
		q.Limit = store.MaxLimit
	}
	if raw, ok := c.GetQuery("featured"); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			q.Featured = &v
		}
	}
	return q
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
