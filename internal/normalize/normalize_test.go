package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Intel   Core i7-12700K  ", "intel core i7-12700k"},
		{"Intel® Core™ i9–13900K", "intel core i9-13900k"},
		{"Mémoire  DDR5\tCorsair", "memoire ddr5 corsair"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in), tt.in)
	}
}
