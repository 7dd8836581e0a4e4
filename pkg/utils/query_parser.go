package utils

import (
	"net/url"
	"strings"
)

// ParseFilters собирает filter[key]=value и search из строки запроса.
func ParseFilters(query url.Values) map[string]string {
	filters := make(map[string]string)

	for key, values := range query {
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") && len(values) > 0 {
			filterKey := key[7 : len(key)-1]
			if filterKey != "" && values[0] != "" {
				filters[filterKey] = values[0]
			}
		}
	}
	if search := strings.TrimSpace(query.Get("search")); search != "" {
		filters["search"] = search
	}
	return filters
}
