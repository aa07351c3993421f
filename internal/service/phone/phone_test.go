package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatted local number", "(51) 99876-5432", "5551998765432"},
		{"already prefixed", "5551998765432", "5551998765432"},
		{"plus and spaces", "+55 51 99876 5432", "5551998765432"},
		{"digits only without prefix", "51998765432", "5551998765432"},
		{"letters are dropped", "phone: 51 99876-5432", "5551998765432"},
		{"empty input yields bare prefix", "", "55"},
		{"only punctuation yields bare prefix", "()- ", "55"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeWithPrefix(t *testing.T) {
	assert.Equal(t, "1512345678", NormalizeWithPrefix("512-345-678", "1"))
	assert.Equal(t, "1512345678", NormalizeWithPrefix("1 512 345 678", "1"))
}

func TestNormalizePrefixNotDoubled(t *testing.T) {
	// A number already starting with the prefix digits must not get a
	// second copy.
	assert.Equal(t, "5551912345678", Normalize("55 51 91234-5678"))
}
