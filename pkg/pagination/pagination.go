// Package pagination slices an already filtered and sorted sequence into pages.
// It never reorders its input and never reaches into storage.
package pagination

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// Limits carries the configured default and ceiling for page sizes.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) normalized() Limits {
	if l.Max <= 0 {
		l.Max = MaxLimit
	}
	if l.Default <= 0 {
		l.Default = DefaultLimit
	}
	if l.Default > l.Max {
		l.Default = l.Max
	}
	return l
}

// Params is a normalized (page, limit) pair; build it with Limits.Params or Limits.Parse.
type Params struct {
	Page  int
	Limit int
}

// Params coerces page to >= 1 and clamps limit to [1, Max]. A nil limit means "use the default".
func (l Limits) Params(page *int, limit *int) Params {
	l = l.normalized()
	p := Params{Page: 1, Limit: l.Default}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = clamp(*limit, 1, l.Max)
	}
	return p
}

// Parse is Params for raw query-string values; non-numeric input falls back like absent input.
func (l Limits) Parse(page, limit string) Params {
	return l.Params(ParseInt(page), ParseInt(limit))
}

// ParseInt reads a raw page or limit value; nil means absent or not a number.
func ParseInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Paginate returns the page slice of items. Out-of-range pages yield an empty slice with
// valid metadata. The returned items never alias the input.
func Paginate[T any](items []T, p Params) Page[T] {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	total := len(items)
	meta := Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: total / p.Limit,
		HasPrev:    p.Page > 1,
	}
	if total%p.Limit != 0 {
		meta.TotalPages++
	}
	if total == 0 {
		meta.HasPrev = false
	}

	out := make([]T, 0)
	// compare in page units first; (Page-1)*Limit overflows for huge pages
	if p.Page-1 < meta.TotalPages {
		start := (p.Page - 1) * p.Limit
		end := start + min(p.Limit, total-start)
		out = append(out, items[start:end]...)
		meta.HasNext = end < total
	}
	return Page[T]{Items: out, Pagination: meta}
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](pg Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(pg.Items))
	for _, it := range pg.Items {
		out = append(out, fn(it))
	}
	return Page[U]{Items: out, Pagination: pg.Pagination}
}
