package models

// Page is one slice of a server-paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type Sort struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Paging selects a page. Page is zero-based.
type Paging struct {
	Page        int  `json:"page"`
	SizePerPage int  `json:"sizePerPage"`
	Sort        Sort `json:"sort"`
}

// DefaultPaging is the first page of ten, sorted by id ascending.
func DefaultPaging() Paging {
	return Paging{Page: 0, SizePerPage: 10, Sort: Sort{Field: "id", Direction: SortAsc}}
}

// Normalize fills zero values with the defaults.
func (p Paging) Normalize() Paging {
	d := DefaultPaging()
	if p.Page < 0 {
		p.Page = d.Page
	}
	if p.SizePerPage <= 0 {
		p.SizePerPage = d.SizePerPage
	}
	if p.Sort.Field == "" {
		p.Sort.Field = d.Sort.Field
	}
	if p.Sort.Direction != SortAsc && p.Sort.Direction != SortDesc {
		p.Sort.Direction = d.Sort.Direction
	}
	return p
}
