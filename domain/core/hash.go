package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeInputHash fingerprints the inputs of a run: the archive paths that
// contributed mocks and the settings that shaped the calibration. Order of
// paths does not matter.
func ComputeInputHash(paths []string, settings map[string]interface{}) Hash {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var data strings.Builder
	for _, p := range sorted {
		data.WriteString(p)
		data.WriteByte('\n')
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%v\n", settings[key]))
	}

	return NewHash([]byte(data.String()))
}
