package domain

// Page is the platform's paginated list envelope: every list endpoint
// returns {"count": N, "results": [...]}.
type Page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// ListQuery carries the list-page parameters forwarded to the platform.
// Zero values are omitted from the query string.
type ListQuery struct {
	Page    int
	Search  string
	Status  string
	Filters map[string]string // resource-specific extras (zone, month, year, ...)
}

// PageSize is the platform's fixed page size for list endpoints.
const PageSize = 10

// Pagination is the display-side view of a Page, computed from the
// server-reported count.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	PerPage     int
	Total       int
	HasPrevious bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// NewPagination computes pagination state. totalPages = ceil(total/PageSize),
// with a floor of one page so empty lists still render page 1 of 1.
func NewPagination(page, total int) Pagination {
	perPage := PageSize
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		PerPage:     perPage,
		Total:       total,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}
}

// PageRange returns the page numbers to render in the pager, with -1
// marking ellipsis positions. Short ranges are rendered in full.
func PageRange(currentPage, totalPages int) []int {
	if totalPages <= 7 {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	pages := []int{1}

	start := currentPage - 1
	end := currentPage + 1

	if start <= 2 {
		start = 2
	}
	if end >= totalPages {
		end = totalPages - 1
	}

	if start > 2 {
		pages = append(pages, -1)
	}

	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}

	if end < totalPages-1 {
		pages = append(pages, -1)
	}

	if totalPages > 1 {
		pages = append(pages, totalPages)
	}

	return pages
}
