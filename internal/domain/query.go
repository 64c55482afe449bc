package domain

const (
	SortFieldName         = "name"
	SortFieldCategoryName = "category.name"
)

// SortOrder is the resolved ordering of a product listing. Field is a store
// field path; keys that are neither "name" nor "category" are passed through
// untouched and left for the store to resolve.
type SortOrder struct {
	Key             string
	Field           string
	CaseInsensitive bool
	Descending      bool
}

// ProductQuery is a composed listing query. Filters combine with AND.
type ProductQuery struct {
	Sort          *SortOrder
	CategoryNames []string // nil means no category filter
	Search        *string  // matches name OR description, case-insensitive
}
