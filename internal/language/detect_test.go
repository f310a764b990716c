package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"chinese", "这是一条很好的评论", "zh"},
		{"english", "This is a great review", "en"},
		{"empty defaults to zh", "", "zh"},
		{"mostly english with a few chinese chars", "The 酒店 was great and the staff were friendly", "en"},
		{"mixed but mostly chinese", "房间很干净 very good", "zh"},
		{"whitespace ignored in the ratio", "  好评   好评  ", "zh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}
