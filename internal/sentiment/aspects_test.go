package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAspect(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"Room", "Room", true},
		{"  location ", "Location", true},
		{"wifi", "Facilities", true},
		{"床", "Room", true},
		{"早餐", "Food", true},
		{"前台", "Service", true},
		{"性价比", "Price", true},
		{"hotel location", "Location", true},
		{"the breakfast buffet", "Food", true},
		{"xyz_unknown", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := MapAspect(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapAspect_OnlyClosedVocabulary(t *testing.T) {
	for _, s := range aspectSynonyms {
		got, ok := MapAspect(s.keyword)
		assert.True(t, ok)
		assert.Contains(t, AllowedAspects, got)
	}
}
