package store

import (
	"fmt"
	"strings"
)

// Recognized sort tokens for offer search. Anything else falls back to
// the store's insertion order.
const (
	SortDateAsc   = "date-asc"
	SortDateDesc  = "date-desc"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// SearchParams are the optional offer-search parameters as supplied by
// the client. Nil price bounds mean "no bound on that side".
type SearchParams struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
	Sort     string
	Page     int
	Limit    int
}

// searchClause is the SQL fragment tuple produced from SearchParams:
// a WHERE body (may be empty) with its positional args, an ORDER BY
// expression, and the page window.
type searchClause struct {
	where   string
	args    []any
	orderBy string
	offset  int
	limit   int
}

// buildSearch translates SearchParams into a searchClause. It is pure:
// no store access, no mutation of p. The count query reuses where/args
// and ignores the rest.
func buildSearch(p SearchParams) searchClause {
	var conds []string
	var args []any

	if p.Title != "" {
		args = append(args, p.Title)
		conds = append(conds, fmt.Sprintf("o.product_name ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if p.PriceMin != nil {
		args = append(args, *p.PriceMin)
		conds = append(conds, fmt.Sprintf("o.product_price >= $%d", len(args)))
	}
	if p.PriceMax != nil {
		args = append(args, *p.PriceMax)
		conds = append(conds, fmt.Sprintf("o.product_price <= $%d", len(args)))
	}

	var orderBy string
	switch p.Sort {
	case SortDateAsc:
		orderBy = "o.created_at ASC"
	case SortDateDesc:
		orderBy = "o.created_at DESC"
	case SortPriceAsc:
		orderBy = "o.product_price ASC"
	case SortPriceDesc:
		orderBy = "o.product_price DESC"
	default:
		// Insertion order; ids are monotonically assigned.
		orderBy = "o.id"
	}

	page := p.Page
	if page < 1 {
		page = defaultPage
	}
	limit := p.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return searchClause{
		where:   strings.Join(conds, " AND "),
		args:    args,
		orderBy: orderBy,
		offset:  (page - 1) * limit,
		limit:   limit,
	}
}
