package delay

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"tdcov/domain/core"
)

// EntityLabel identifies one lensed image, e.g. "A". Always a single character.
type EntityLabel string

// PairLabel is the concatenation of two entity labels in lexicographic
// order, e.g. "AB". It names the delay of the second image relative to the
// first, so "AB" is the negative of the (never stored) "BA".
type PairLabel string

func (l EntityLabel) String() string { return string(l) }
func (p PairLabel) String() string   { return string(p) }

// Split returns the reference and image labels of a pair.
// The image is the last character, the reference is everything before it.
func (p PairLabel) Split() (reference, image EntityLabel) {
	s := string(p)
	if s == "" {
		return "", ""
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return EntityLabel(s[:len(s)-size]), EntityLabel(s[len(s)-size:])
}

// Validate checks that the pair is two distinct, ordered single-character labels
func (p PairLabel) Validate() error {
	if utf8.RuneCountInString(string(p)) != 2 {
		return fmt.Errorf("%w: pair %q must have exactly two characters", core.ErrInvalidLabel, p)
	}
	ref, img := p.Split()
	if ref == img {
		return fmt.Errorf("%w: pair %q repeats an entity", core.ErrInvalidLabel, p)
	}
	if ref > img {
		return fmt.Errorf("%w: pair %q is not lexicographically ordered", core.ErrInvalidLabel, p)
	}
	return nil
}

// NewPairLabel builds the ordered pair of a and b, reporting whether the
// inputs had to be swapped to order them.
func NewPairLabel(a, b EntityLabel) (pair PairLabel, swapped bool) {
	if a > b {
		return PairLabel(string(b) + string(a)), true
	}
	return PairLabel(string(a) + string(b)), false
}

// SortPairs returns a sorted copy of labels
func SortPairs(labels []PairLabel) []PairLabel {
	out := append([]PairLabel(nil), labels...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EntitiesOf splits every pair into its two entities and returns the sorted,
// deduplicated set.
func EntitiesOf(pairs []PairLabel) []EntityLabel {
	seen := make(map[EntityLabel]struct{}, len(pairs)+1)
	for _, p := range pairs {
		ref, img := p.Split()
		seen[ref] = struct{}{}
		seen[img] = struct{}{}
	}
	out := make([]EntityLabel, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IndexOf returns the position of label in labels, or -1
func IndexOf(labels []EntityLabel, label EntityLabel) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

// AllPairs lists every ordered pair over the given entities
func AllPairs(entities []EntityLabel) []PairLabel {
	sorted := append([]EntityLabel(nil), entities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	pairs := make([]PairLabel, 0, len(sorted)*(len(sorted)-1)/2)
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			pairs = append(pairs, PairLabel(string(sorted[i])+string(sorted[j])))
		}
	}
	return pairs
}
