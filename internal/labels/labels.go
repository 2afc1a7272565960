// Package labels cleans up catalog text typed by operators before it
// reaches the ledger.
package labels

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Normalizer rewrites free-text catalog fields.
type Normalizer interface {
	// Name cleans item names, categories and brands.
	Name(s string) string
	// Label cleans variant labels, correcting near-miss spellings.
	Label(s string) string
	// Code cleans variant codes.
	Code(s string) string
}

// Common variant labels.
var DefaultWords = []string{
	"Standard", "Small", "Medium", "Large", "Extra Large", "Free Size",
	"Universal", "Yellow", "White", "Blue", "Red", "Green", "Orange", "Black",
}

// minFuzzyLen keeps short codes like "S" or "XL" from being "corrected"
// into each other.
const minFuzzyLen = 4

// Dictionary corrects labels against a fixed word list.
type Dictionary struct {
	Words       []string
	MaxDistance int
}

// Default returns a dictionary over DefaultWords with distance 2.
func Default() *Dictionary {
	return &Dictionary{Words: DefaultWords, MaxDistance: 2}
}

func (d *Dictionary) Name(s string) string {
	return collapse(s)
}

func (d *Dictionary) Code(s string) string {
	return strings.ToUpper(strings.ReplaceAll(collapse(s), " ", ""))
}

// Label returns the closest dictionary word if the whole label is within
// MaxDistance of it, otherwise corrects word by word.
func (d *Dictionary) Label(s string) string {
	s = collapse(s)
	if w, ok := d.closest(s); ok {
		return w
	}
	words := strings.Fields(s)
	for i, w := range words {
		if c, ok := d.closest(w); ok {
			words[i] = c
		}
	}
	return strings.Join(words, " ")
}

func (d *Dictionary) closest(s string) (string, bool) {
	lower := strings.ToLower(s)
	best, bestDist := "", d.MaxDistance+1
	for _, w := range d.Words {
		lw := strings.ToLower(w)
		if lw == lower {
			return w, true
		}
		if len(lower) < minFuzzyLen || len(lw) < minFuzzyLen {
			continue
		}
		if dist := levenshtein.ComputeDistance(lower, lw); dist < bestDist {
			best, bestDist = w, dist
		}
	}
	return best, best != ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
