package entities

import (
	"fmt"
	"strings"
)

// Category is the closed set of recommendation categories stored as integer codes.
type Category int

const (
	CategoryHotel       Category = 1
	CategoryFood        Category = 2
	CategoryExperiences Category = 3
	CategoryServices    Category = 4
	CategoryProduct     Category = 5
)

var categoryByName = map[string]Category{
	"hotel & accdn": CategoryHotel,
	"food & drinks": CategoryFood,
	"experiences":   CategoryExperiences,
	"services":      CategoryServices,
	"product":       CategoryProduct,
}

// ParseCategory maps a category name (any case, surrounding spaces ignored) to its code.
func ParseCategory(name string) (Category, error) {
	if c, ok := categoryByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// HasAddress reports whether recommendations of this category carry a
// "<filter>, <country>" address. Products do not.
func (c Category) HasAddress() bool {
	return c >= CategoryHotel && c <= CategoryServices
}

func (c Category) String() string {
	for name, code := range categoryByName {
		if code == c {
			return name
		}
	}
	return fmt.Sprintf("category(%d)", int(c))
}
