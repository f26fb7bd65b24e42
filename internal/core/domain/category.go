package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryNone    Category = ""
	CategoryPlatino Category = "platino"
	CategoryOro     Category = "oro"
	CategoryPlata   Category = "plata"
	CategoryBronce  Category = "bronce"
)

// Categories lists the pricing tiers from most to least expensive.
var Categories = []Category{CategoryPlatino, CategoryOro, CategoryPlata, CategoryBronce}

const (
	GridRows      = 5
	GridCols      = 5
	MaxTotalSeats = GridRows * GridCols
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPlatino, CategoryOro, CategoryPlata, CategoryBronce:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return CategoryNone, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
	return c, nil
}
