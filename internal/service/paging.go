package service

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) normalized() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// limitOffset converts the page into repository limit and offset.
func (p Page) limitOffset() (int, int) {
	n := p.normalized()
	return n.PageSize, (n.Page - 1) * n.PageSize
}
