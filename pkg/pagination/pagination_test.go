package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateMiddlePage(t *testing.T) {
	pg := Paginate(seq(14), Params{Page: 2, Limit: 6})
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, pg.Items)
	assert.Equal(t, Meta{Page: 2, Limit: 6, Total: 14, TotalPages: 3, HasNext: true, HasPrev: true}, pg.Pagination)
}

func TestPaginateLastPartialPage(t *testing.T) {
	pg := Paginate(seq(14), Params{Page: 3, Limit: 6})
	assert.Equal(t, []int{12, 13}, pg.Items)
	assert.False(t, pg.Pagination.HasNext)
	assert.True(t, pg.Pagination.HasPrev)
}

func TestPaginateBeyondLastPage(t *testing.T) {
	pg := Paginate(seq(14), Params{Page: 9, Limit: 6})
	require.NotNil(t, pg.Items)
	assert.Empty(t, pg.Items)
	assert.Equal(t, 14, pg.Pagination.Total)
	assert.Equal(t, 3, pg.Pagination.TotalPages)
	assert.False(t, pg.Pagination.HasNext)
	assert.True(t, pg.Pagination.HasPrev)
}

func TestPaginateHugePage(t *testing.T) {
	p := Limits{}.Parse("1000000000000000000", "10")
	require.Equal(t, 1000000000000000000, p.Page)

	var pg Page[int]
	require.NotPanics(t, func() { pg = Paginate(seq(14), p) })
	assert.Empty(t, pg.Items)
	assert.Equal(t, Meta{Page: p.Page, Limit: 10, Total: 14, TotalPages: 2, HasPrev: true}, pg.Pagination)

	pg = Paginate(seq(14), Params{Page: math.MaxInt, Limit: MaxLimit})
	assert.Empty(t, pg.Items)
	assert.False(t, pg.Pagination.HasNext)
}

func TestPaginateEmpty(t *testing.T) {
	for _, page := range []int{1, 2, 5} {
		pg := Paginate([]string{}, Params{Page: page, Limit: 10})
		assert.Empty(t, pg.Items)
		assert.Equal(t, 0, pg.Pagination.TotalPages)
		assert.False(t, pg.Pagination.HasNext)
		assert.False(t, pg.Pagination.HasPrev)
	}
}

func TestPaginateProperties(t *testing.T) {
	for total := 0; total <= 25; total++ {
		items := seq(total)
		for limit := 1; limit <= 8; limit++ {
			for page := 1; page <= 7; page++ {
				pg := Paginate(items, Params{Page: page, Limit: limit})
				m := pg.Pagination
				start := (page - 1) * limit

				assert.LessOrEqual(t, len(pg.Items), limit)
				if start < total {
					assert.Equal(t, min(limit, total-start), len(pg.Items))
				} else {
					assert.Empty(t, pg.Items)
				}
				if total == 0 {
					assert.Zero(t, m.TotalPages)
				} else {
					assert.Equal(t, (total+limit-1)/limit, m.TotalPages)
					assert.Equal(t, page > 1, m.HasPrev)
				}
				assert.Equal(t, start+len(pg.Items) < total, m.HasNext)
				assert.Equal(t, page < m.TotalPages, m.HasNext)
			}
		}
	}
}

func TestPaginateIsIdempotentAndDoesNotAlias(t *testing.T) {
	items := seq(10)
	a := Paginate(items, Params{Page: 1, Limit: 4})
	b := Paginate(items, Params{Page: 1, Limit: 4})
	assert.Equal(t, a, b)

	a.Items[0] = 99
	assert.Equal(t, 0, items[0])
	assert.Equal(t, 0, Paginate(items, Params{Page: 1, Limit: 4}).Items[0])
}

func TestLimitsParams(t *testing.T) {
	l := Limits{Default: 6, Max: 100}
	ptr := func(v int) *int { return &v }

	assert.Equal(t, Params{Page: 1, Limit: 6}, l.Params(nil, nil))
	assert.Equal(t, Params{Page: 1, Limit: 1}, l.Params(ptr(0), ptr(0)))
	assert.Equal(t, Params{Page: 1, Limit: 1}, l.Params(ptr(-3), ptr(-5)))
	assert.Equal(t, Params{Page: 4, Limit: 100}, l.Params(ptr(4), ptr(1000)))
}

func TestLimitsParse(t *testing.T) {
	l := Limits{}
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, l.Parse("abc", ""))
	assert.Equal(t, Params{Page: 2, Limit: 6}, l.Parse("2", "6"))
	assert.Equal(t, Params{Page: 1, Limit: MaxLimit}, l.Parse("-1", "500"))
}

func TestMapKeepsMeta(t *testing.T) {
	pg := Paginate(seq(5), Params{Page: 2, Limit: 2})
	out := Map(pg, func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"c", "d"}, out.Items)
	assert.Equal(t, pg.Pagination, out.Pagination)
}
