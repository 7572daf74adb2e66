// Package secretgen generates cryptographically secure random secret values
// according to a per-request character policy.
//
// The package is pure computation: it talks to no store, does no I/O beyond
// reading the platform CSPRNG, and keeps no state between calls. Callers
// describe what they want with a Request, and either take the single value
// from Generate or hand an ordered batch to GenerateBatch.
//
// Every random decision (character selection and the final shuffle) draws
// from crypto/rand via rand.Int, which is uniform over the character set.
// Folding raw random bytes with a modulus would bias the head of the
// alphabet and is deliberately not used anywhere in this package.
package secretgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultLength is used when a request leaves Length unset.
const DefaultLength = 32

// Request describes one secret value to generate.
type Request struct {
	// Name identifies the value within a batch. Required by GenerateBatch,
	// ignored by Generate.
	Name string

	// Length of the generated value. Zero means DefaultLength; negative
	// values fail with InvalidLengthError.
	Length int

	Policy Policy

	// RequireEachIncludedType forces at least one character from every
	// enabled class that survives exclusion.
	RequireEachIncludedType bool

	// SecretStringTemplate optionally holds a JSON object the generated
	// value is merged into under GenerateStringKey. A template that does
	// not parse as a JSON object degrades to the raw value.
	SecretStringTemplate string
	GenerateStringKey    string
}

// Generate produces a single random value for the request. The result has
// exactly the requested length and contains only characters permitted by
// the policy.
func Generate(req Request) (string, error) {
	length := req.Length
	if length == 0 {
		length = DefaultLength
	}
	if length < 0 {
		return "", InvalidLengthError{Length: length}
	}

	alphabet, err := BuildAlphabet(req.Policy)
	if err != nil {
		return "", err
	}

	if !req.RequireEachIncludedType {
		return randString(alphabet.Combined, length)
	}

	// One slot per surviving class is mandatory, so the requested length
	// must leave room for all of them. Truncating instead would silently
	// drop classes the caller asked for.
	if length < len(alphabet.Classes) {
		return "", InvalidLengthError{Length: length, Minimum: len(alphabet.Classes)}
	}

	buf := make([]byte, 0, length)
	for _, class := range alphabet.Classes {
		ch, err := randChar(class.Chars)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < length {
		ch, err := randChar(alphabet.Combined)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	// Mandatory characters sit at the front of the buffer; a uniform
	// permutation removes any positional pattern.
	if err := secureShuffle(buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

// randString draws length independent uniform characters from set.
func randString(set string, length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		ch, err := randChar(set)
		if err != nil {
			return "", err
		}
		buf[i] = ch
	}
	return string(buf), nil
}

// randChar selects one character from set, uniformly.
func randChar(set string) (byte, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("reading random source: %w", err)
	}
	return set[idx.Int64()], nil
}

// secureShuffle permutes buf in place with a Fisher-Yates walk whose swap
// indices come from crypto/rand.
func secureShuffle(buf []byte) error {
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("reading random source: %w", err)
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}
	return nil
}
