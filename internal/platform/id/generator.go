package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs for conversations and request correlation.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct {
	prefix string
}

// NewRandomGenerator yields IDs like "conv_3f9a...". An empty prefix yields bare hex.
func NewRandomGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: prefix}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	if g == nil || g.prefix == "" {
		return hex.EncodeToString(buf), nil
	}
	return g.prefix + "_" + hex.EncodeToString(buf), nil
}
