package pagination

// Pagination is the common page/size query shape for list endpoints.
type Pagination struct {
	Page int `form:"page,default=1"`
	Size int `form:"size,default=20"`
}

const maxPageSize = 100

// Clamp normalizes page and size into safe bounds.
func (p Pagination) Clamp() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// PageInfo describes the window a list response covers.
type PageInfo struct {
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
}

// BuildPageInfo derives PageInfo from a clamped request and a total count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	return PageInfo{
		Page:    p.Page,
		Size:    p.Size,
		Total:   total,
		HasNext: int64(p.Offset()+p.Size) < total,
	}
}
