package geo

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps out-of-range values: page < 1 becomes 1, size < 1 becomes the default, size is capped.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Data:       items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.PageSize,
		TotalPages: TotalPages(total, req.PageSize),
	}
}

// TotalPages returns ceil(total/size).
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

type CountryFilter struct {
	ContinentID      *uint
	OfficialLanguage *string
}

type CityFilter struct {
	CountryID   *uint
	ContinentID *uint
}
