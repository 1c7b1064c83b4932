package service

import (
	"sort"
	"strings"

	"github.com/storefront/storefront/internal/model"
)

// DiscountCode is one row of the discount table
type DiscountCode struct {
	Percent  int
	MinOrder int64
}

// DefaultDiscountCodes returns the fixed discount table
func DefaultDiscountCodes() map[string]DiscountCode {
	return map[string]DiscountCode{
		"SAVE10":  {Percent: 10, MinOrder: 500000},
		"SAVE20":  {Percent: 20, MinOrder: 1000000},
		"NEWUSER": {Percent: 15, MinOrder: 300000},
	}
}

// DiscountEngine validates codes against a fixed table
type DiscountEngine struct {
	codes map[string]DiscountCode
}

// NewDiscountEngine creates a DiscountEngine over a copy of codes
func NewDiscountEngine(codes map[string]DiscountCode) *DiscountEngine {
	table := make(map[string]DiscountCode, len(codes))
	for code, d := range codes {
		table[NormalizeCode(code)] = d
	}
	return &DiscountEngine{codes: table}
}

// NormalizeCode trims and upper-cases a code as typed by the user
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the table entry for code
func (e *DiscountEngine) Lookup(code string) (model.AppliedDiscount, bool) {
	code = NormalizeCode(code)
	d, ok := e.codes[code]
	if !ok {
		return model.AppliedDiscount{}, false
	}
	return model.AppliedDiscount{Code: code, Percent: d.Percent, MinOrder: d.MinOrder}, true
}

// Codes lists the known codes in alphabetical order
func (e *DiscountEngine) Codes() []string {
	codes := make([]string, 0, len(e.codes))
	for code := range e.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Apply decides which discount becomes active when code is entered against subtotal while
// active is applied. Checks run in order: unknown code, minimum order, already applied.
func (e *DiscountEngine) Apply(code string, subtotal int64, active *model.AppliedDiscount) (*model.AppliedDiscount, error) {
	d, ok := e.Lookup(code)
	if !ok {
		return nil, ErrUnknownCode
	}
	if subtotal < d.MinOrder {
		return nil, ErrMinimumOrderNotMet
	}
	if active != nil && active.Code == d.Code {
		return nil, ErrAlreadyApplied
	}
	return &d, nil
}
