package repository

const (
	// DefaultLimit is used when no limit is supplied.
	DefaultLimit = 100
	// MaxLimit caps any single page.
	MaxLimit = 1000
)

// Page is offset pagination: skip N rows, return up to Limit.
type Page struct {
	Skip  int
	Limit int
}

// Normalize applies the default and maximum limits.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
