package usecase

import (
	"fmt"
	"strings"

	"catalog_service/internal/domain"
)

// Listing query parameters.
const (
	ParamSort      = "sort"
	ParamDirection = "direction"
	ParamCategory  = "category"
	ParamSearch    = "q"
)

// BuildProductQuery turns listing parameters into a store query and the
// current-sorting token shown by the UI. A present but empty search term is
// rejected before anything is read from the store.
func BuildProductQuery(params map[string]string) (domain.ProductQuery, string, error) {
	var (
		query     domain.ProductQuery
		sortKey   string
		direction string
	)

	if key, ok := params[ParamSort]; ok {
		sortKey = key
		order := &domain.SortOrder{Key: key, Field: key}
		switch key {
		case "name":
			order.Field = domain.SortFieldName
			order.CaseInsensitive = true
		case "category":
			order.Field = domain.SortFieldCategoryName
		}
		if dir, ok := params[ParamDirection]; ok {
			direction = dir
			order.Descending = dir == "desc"
		}
		query.Sort = order
	}

	if raw, ok := params[ParamCategory]; ok {
		query.CategoryNames = strings.Split(raw, ",")
	}

	if term, ok := params[ParamSearch]; ok {
		if term == "" {
			return domain.ProductQuery{}, "", domain.ErrEmptySearch
		}
		query.Search = &term
	}

	return query, fmt.Sprintf("%s_%s", sortKey, direction), nil
}
