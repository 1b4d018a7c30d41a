package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams carries the pagination query parameters shared by list endpoints.
type ListParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in defaults for missing pagination values.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}

// Offset returns the row offset of the requested page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
