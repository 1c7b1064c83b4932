package catalog

import (
	"testing"

	"github.com/storefront/storefront/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(products []model.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	p, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, int64(299000), p.Price)
	assert.Equal(t, 25, p.DiscountPercent())

	p, ok = c.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, int64(599000), p.Price)

	_, ok = c.Lookup(42)
	assert.False(t, ok)
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	c := Default()

	p, _ := c.Lookup(1)
	p.Price = 1

	again, _ := c.Lookup(1)
	assert.Equal(t, int64(299000), again.Price)
}

func TestCatalog_Featured(t *testing.T) {
	c := Default()

	assert.Equal(t, []int64{1, 2, 3}, ids(c.Featured(3)))
	assert.Len(t, c.Featured(0), len(c.All()))
	assert.Len(t, c.Featured(100), len(c.All()))
}

func TestCatalog_Categories(t *testing.T) {
	assert.Equal(t, []string{"ao-thun", "ao-so-mi", "giay-dep", "Quan-short"}, Default().Categories())
}

func TestCatalog_Search(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"everything", Filter{}, []int64{1, 2, 3, 4, 5, 6}},
		{"name term is case insensitive", Filter{Term: "GIÀY"}, []int64{3, 5}},
		{"description term", Filter{Term: "công sở"}, []int64{2}},
		{"category", Filter{Category: "ao-thun"}, []int64{1, 4}},
		{"price range", Filter{MinPrice: 400000, MaxPrice: 900000}, []int64{2, 4, 5}},
		{"no match", Filter{Term: "laptop"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Search(tt.filter)))
		})
	}
}

func TestProduct_DiscountPercent(t *testing.T) {
	c := Default()

	p, _ := c.Lookup(6)
	assert.Equal(t, 0, p.DiscountPercent())

	p, _ = c.Lookup(3)
	assert.Equal(t, 19, p.DiscountPercent())
}
