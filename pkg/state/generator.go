package state

import (
	"crypto/rand"
	"fmt"

	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// DefaultTokenLength is the length of randomly generated state tokens.
const DefaultTokenLength = 10

// urlSafeAlphabet is the character set for random tokens; every character
// survives URL query encoding unchanged.
const urlSafeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Generator produces the anti-forgery token for an authentication round.
type Generator interface {
	Generate(ctx webctx.WebContext) (string, error)
}

// StaticGenerator always returns a fixed operator-supplied value. Useful in
// tests and deployments that manage state out of band.
type StaticGenerator struct {
	value string
}

// NewStaticGenerator creates a generator returning value unconditionally.
func NewStaticGenerator(value string) *StaticGenerator {
	return &StaticGenerator{value: value}
}

// Generate returns the fixed value regardless of context.
func (g *StaticGenerator) Generate(_ webctx.WebContext) (string, error) {
	return g.value, nil
}

// RandomGenerator produces cryptographically random URL-safe tokens.
type RandomGenerator struct {
	length int
}

// NewRandomGenerator creates a generator producing tokens of the given
// length; zero or negative means DefaultTokenLength.
func NewRandomGenerator(length int) *RandomGenerator {
	if length <= 0 {
		length = DefaultTokenLength
	}
	return &RandomGenerator{length: length}
}

// Generate returns a new random token.
func (g *RandomGenerator) Generate(_ webctx.WebContext) (string, error) {
	buf := make([]byte, g.length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	for i, b := range buf {
		buf[i] = urlSafeAlphabet[int(b)%len(urlSafeAlphabet)]
	}
	return string(buf), nil
}
