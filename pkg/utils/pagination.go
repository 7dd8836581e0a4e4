package utils

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage приводит страницу и размер к допустимым значениям.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func ParsePaginationParams(values url.Values) (page int, pageSize int) {
	page, pageSize = 1, DefaultPageSize

	if s := values.Get("page"); s != "" {
		if p, err := strconv.Atoi(s); err == nil {
			page = p
		}
	}
	if s := values.Get("page_size"); s != "" {
		if l, err := strconv.Atoi(s); err == nil {
			pageSize = l
		}
	}
	return NormalizePage(page, pageSize)
}
