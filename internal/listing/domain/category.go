package domain

import "strings"

// Category is the listing type shown in the category bar.
type Category string

const (
	CategoryTrending  Category = "trending"
	CategoryRooms     Category = "rooms"
	CategoryMountains Category = "mountains"
	CategoryCastles   Category = "castles"
	CategoryCities    Category = "cities"
	CategoryPools     Category = "pools"
	CategoryCamping   Category = "camping"
	CategoryFarms     Category = "farms"
	CategoryArctic    Category = "arctic"
	CategoryDomes     Category = "domes"
	CategoryBoats     Category = "boats"
)

// Categories is the single source of the type enumeration. Validation and the
// category filter both read it.
var Categories = []Category{
	CategoryTrending,
	CategoryRooms,
	CategoryMountains,
	CategoryCastles,
	CategoryCities,
	CategoryPools,
	CategoryCamping,
	CategoryFarms,
	CategoryArctic,
	CategoryDomes,
	CategoryBoats,
}

// categoryTable maps a filter path segment to the stored type value.
var categoryTable = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[string(c)] = c
	}
	return m
}()

// IsValid checks if the Category is one of the defined constants.
func (c Category) IsValid() bool {
	_, ok := categoryTable[string(c)]
	return ok
}

// CanonicalCategory maps a raw segment through the category table.
// Unknown segments are returned lowercased with ok == false.
func CanonicalCategory(segment string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(segment))
	if c, ok := categoryTable[key]; ok {
		return c, true
	}
	return Category(key), false
}

// CategoryNames returns the enumeration as plain strings.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}
