package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_IsValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Category("Rooms").IsValid())
	assert.False(t, Category("igloos").IsValid())
	assert.False(t, Category("").IsValid())
}

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		segment string
		want    Category
		known   bool
	}{
		{"rooms", CategoryRooms, true},
		{"Castles", CategoryCastles, true},
		{"  ARCTIC ", CategoryArctic, true},
		{"Treehouses", Category("treehouses"), false},
		{"", Category(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			got, ok := CanonicalCategory(tt.segment)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestCategoryTable_IdentityForEveryCategory(t *testing.T) {
	assert.Len(t, Categories, 11)
	for _, c := range Categories {
		got, ok := CanonicalCategory(string(c))
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "trending", CategoryNames()[0])
}
