// Package searchindex implements the deterministic substitution transform
// used for substring search over encrypted columns. Each tenant gets a random
// bijective character mapping generated once at registration; plaintext and
// search terms transformed with the same mapping preserve the substring
// relation, so LIKE queries work on the obfuscated columns without decrypting.
//
// The transform is an obfuscation layer, not encryption: character frequency
// survives it. The real protection is the AES encryption of the primary
// columns; the mapping itself is stored encrypted.
package searchindex

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet is the fixed domain of the substitution mapping. Characters
// outside it pass through Transform unchanged.
const Alphabet = "abcdefghijklmnopqrstuvwxyz_1234567890!@#$%^&?*-+= "

var ErrInvalidMapping = errors.New("mapping is not a bijection over the alphabet")

// Mapping is a bijective substitution over Alphabet. Keys and values are
// single-character strings so the JSON form matches the persisted shape.
type Mapping map[string]string

// Generate builds a fresh random Mapping by pairing the alphabet with a
// uniform shuffle of itself, position for position.
func Generate() (Mapping, error) {
	chars := strings.Split(Alphabet, "")
	shuffled := make([]string, len(chars))
	copy(shuffled, chars)

	// Fisher-Yates with crypto/rand
	for i := len(shuffled) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("shuffle alphabet: %w", err)
		}
		j := n.Int64()
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	m := make(Mapping, len(chars))
	for i, c := range chars {
		m[c] = shuffled[i]
	}
	return m, nil
}

// Transform lowercases s and substitutes every mapped character. Characters
// without a mapping entry are kept as-is. The same input always yields the
// same output for a given mapping.
func (m Mapping) Transform(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if sub, ok := m[string(r)]; ok {
			sb.WriteString(sub)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Inverse returns the reverse mapping, so stored transformed values can be
// turned back into plaintext. Only meaningful on a valid bijection.
func (m Mapping) Inverse() Mapping {
	inv := make(Mapping, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

// Validate checks that m maps every alphabet character to a distinct
// alphabet character.
func (m Mapping) Validate() error {
	if len(m) != len([]rune(Alphabet)) {
		return ErrInvalidMapping
	}
	seen := make(map[string]bool, len(m))
	for _, c := range strings.Split(Alphabet, "") {
		sub, ok := m[c]
		if !ok || seen[sub] || !strings.Contains(Alphabet, sub) {
			return ErrInvalidMapping
		}
		seen[sub] = true
	}
	return nil
}

// Encode serializes the mapping to its persisted JSON form.
func (m Mapping) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode mapping: %w", err)
	}
	return string(b), nil
}

// Decode parses a persisted JSON mapping and validates it.
func Decode(data string) (Mapping, error) {
	var m Mapping
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
