package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// FromQuery reads ?limit and ?offset. Missing or malformed values fall back to
// the defaults instead of failing the request.
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil {
		offset = 0
	}

	return DefaultParams(limit, offset, defaultLimit, maxLimit)
}

// DefaultParams clamps limit to (0, maxLimit] and offset to >= 0
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}

	limit = min(limit, maxLimit)

	return Params{
		Limit:  limit,
		Offset: max(offset, 0),
	}
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}
