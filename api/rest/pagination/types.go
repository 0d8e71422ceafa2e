package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Params holds pagination parameters from request
type Params struct {
	Limit  int
	Offset int
}

// Meta holds pagination metadata for response
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewMeta creates pagination metadata from params and total count
func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// DefaultParams returns pagination params with defaults applied
// defaultLimit: default items per page, maxLimit: maximum allowed limit
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{
		Limit:  limit,
		Offset: offset,
	}
}

// FromQuery reads limit and offset; ok is false when the client asked for neither
func FromQuery(c *gin.Context) (Params, bool) {
	rawLimit, hasLimit := c.GetQuery("limit")
	rawOffset, hasOffset := c.GetQuery("offset")

	if !hasLimit && !hasOffset {
		return Params{}, false
	}

	limit, _ := strconv.Atoi(rawLimit)
	offset, _ := strconv.Atoi(rawOffset)

	return DefaultParams(limit, offset, DefaultLimit, MaxLimit), true
}

// Window returns the [start, end) bounds of the page within total items
func (p Params) Window(total int) (int, int) {
	start := min(p.Offset, total)
	end := min(start+p.Limit, total)

	return start, end
}
