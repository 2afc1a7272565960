package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	d := Default()
	tests := []struct {
		in, want string
	}{
		{"Standard", "Standard"},
		{"  standrad ", "Standard"},
		{"Stnadard", "Standard"},
		{"extra  lareg", "Extra Large"},
		{"Yelow", "Yellow"},
		{"Size 8", "Size 8"},
		{"M", "M"},
		{"XL", "XL"},
		{"Navy Bleu", "Navy Blue"},
		{"Reflective", "Reflective"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Label(tt.in), "Label(%q)", tt.in)
	}
}

func TestCodeAndName(t *testing.T) {
	d := Default()
	assert.Equal(t, "XL", d.Code(" xl "))
	assert.Equal(t, "STD", d.Code("s td"))
	assert.Equal(t, "Safety Helmet (Yellow)", d.Name("  Safety   Helmet (Yellow) "))
}

func TestNormalizerIsPluggable(t *testing.T) {
	var n Normalizer = &Dictionary{Words: []string{"Hi-Vis"}, MaxDistance: 1}
	assert.Equal(t, "Hi-Vis", n.Label("hi-vi"))
	assert.Equal(t, "Standrad", n.Label("Standrad"))
}
