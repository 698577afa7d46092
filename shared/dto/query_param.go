package dto

import (
	"lodge/shared/constant"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads pagination and ordering from the query string. Malformed values
// are ignored rather than rejected. With defaultRequest every missing value falls
// back to its default, which listings over large tables should always ask for.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	values := r.URL.Query()

	q.Page = positiveInt(values, constant.RequestParamPage)
	q.Limit = positiveInt(values, constant.RequestParamLimit)
	q.SortBy = strings.TrimSpace(values.Get(constant.RequestParamSortBy))
	q.SortDir = sortDirection(values.Get(constant.RequestParamSortDir))

	if defaultRequest {
		q.applyDefaults()
	}
}

func (q *QueryParams) applyDefaults() {
	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}

	if q.SortBy == "" {
		q.SortBy = constant.DefaultValueSortBy
	}

	if q.SortDir == "" {
		q.SortDir = constant.DefaultValueSortDir
	}
}

// Offset is the number of rows skipped before the current page.
func (q *QueryParams) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}

func positiveInt(values url.Values, key string) int {
	n, err := strconv.Atoi(values.Get(key))
	if err != nil || n < 1 {
		return 0
	}

	return n
}

func sortDirection(value string) string {
	switch dir := strings.ToUpper(strings.TrimSpace(value)); dir {
	case SortDirAsc, SortDirDesc:
		return dir
	default:
		return ""
	}
}
