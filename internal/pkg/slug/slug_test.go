// internal/pkg/slug/slug_test.go
package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Arnica Montana 30C", "arnica-montana-30c"},
		{"  Leading & trailing  ", "leading-trailing"},
		{"Already-Slugged", "already-slugged"},
		{"Multiple   spaces", "multiple-spaces"},
		{"Symbols!@#Between$$Words", "symbols-between-words"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), tt.in)
	}
}
