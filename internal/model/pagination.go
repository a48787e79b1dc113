package model

import "strings"

// OrderBy names a sortable task field.
type OrderBy string

const (
	OrderByTitle       OrderBy = "title"
	OrderByDescription OrderBy = "description"
	OrderByStatus      OrderBy = "status"
	OrderByPriority    OrderBy = "priority"
)

// ParseOrderBy validates a sort field name. An empty string selects the
// default (title). The returned value is safe to interpolate into an
// ORDER BY clause because it is drawn from this fixed set.
func ParseOrderBy(s string) (OrderBy, error) {
	switch OrderBy(strings.ToLower(s)) {
	case "":
		return OrderByTitle, nil
	case OrderByTitle, OrderByDescription, OrderByStatus, OrderByPriority:
		return OrderBy(strings.ToLower(s)), nil
	default:
		return OrderByTitle, ErrInvalidOrderBy
	}
}

// Pagination describes a page window and sort order over the task
// collection.
type Pagination struct {
	Page    int
	Size    int
	OrderBy OrderBy
	Desc    bool
}

// DefaultPagination returns page 1 of 10 records sorted by title ascending.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, Size: 10, OrderBy: OrderByTitle}
}

// Validate rejects non-positive page or size.
func (p Pagination) Validate() error {
	if p.Page < 1 || p.Size < 1 {
		return ErrInvalidPagination
	}
	return nil
}

// Offset is the number of records skipped before the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// Window slices this page out of an ordered collection, clamping to the
// collection bounds.
func (p Pagination) Window(tasks []Task) []Task {
	offset := p.Offset()
	if offset >= len(tasks) {
		return []Task{}
	}
	end := offset + p.Size
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[offset:end]
}

// SearchType names a searchable task attribute.
type SearchType string

const (
	SearchByID       SearchType = "ID"
	SearchByTitle    SearchType = "TITLE"
	SearchByPriority SearchType = "PRIORITY"
)

// SearchQuery is an attribute search with pagination. Pagination is ignored
// for ID searches, which return at most one record.
type SearchQuery struct {
	Type  SearchType
	Value string
	Pagination
}
