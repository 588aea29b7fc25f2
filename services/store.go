package services

import (
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListParams is the pagination and ordering shared by every List call.
// OrderBy is checked against a per-store allow-list.
type ListParams struct {
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
	OrderBy string `form:"order_by"`
	Order   string `form:"order"`
}

func (p ListParams) apply(q *gorm.DB, allowed map[string]bool, fallback string) *gorm.DB {
	column := fallback
	if allowed[p.OrderBy] {
		column = p.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(p.Order, "asc") {
		dir = "ASC"
	}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return q.Order(column + " " + dir).Limit(limit).Offset(offset)
}
