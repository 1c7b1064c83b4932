// Package catalog serves the static, read-only product list.
package catalog

import (
	"strings"

	"github.com/storefront/storefront/internal/model"
)

// Catalog is an immutable product list
type Catalog struct {
	products []model.Product
	byID     map[int64]int
}

// New builds a catalog over products. The slice is copied.
func New(products []model.Product) *Catalog {
	c := &Catalog{
		products: make([]model.Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// Default returns the storefront's built-in catalog
func Default() *Catalog {
	return New(sampleProducts())
}

// Lookup resolves a product id
func (c *Catalog) Lookup(id int64) (*model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	p := c.products[i]
	return &p, true
}

// All returns every product in catalog order
func (c *Catalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Featured returns the first n products
func (c *Catalog) Featured(n int) []model.Product {
	if n <= 0 || n > len(c.products) {
		n = len(c.products)
	}
	out := make([]model.Product, n)
	copy(out, c.products[:n])
	return out
}

// Categories lists distinct categories in first-seen order
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Filter narrows a product search. Zero values match everything.
type Filter struct {
	// Term matches name or description, case-insensitively
	Term     string
	Category string
	MinPrice int64
	// MaxPrice of 0 means no upper bound
	MaxPrice int64
}

// Search returns the products matching f in catalog order
func (c *Catalog) Search(f Filter) []model.Product {
	term := strings.ToLower(strings.TrimSpace(f.Term))

	var out []model.Product
	for _, p := range c.products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}
