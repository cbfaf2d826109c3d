package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const SeedLength = 32

// Seed is the 32 byte secret committed at round start and revealed at
// finalization.
type Seed [SeedLength]byte

func NewRandomSeed() (Seed, error) {
	var s Seed
	if _, err := rand.Read(s[:]); err != nil {
		return Seed{}, fmt.Errorf("failed to generate seed: %w", err)
	}
	return s, nil
}

func SeedFromHex(str string) (Seed, error) {
	var s Seed
	buf, err := hex.DecodeString(str)
	if err != nil {
		return s, fmt.Errorf("invalid hex seed: %w", err)
	}
	if len(buf) != SeedLength {
		return s, fmt.Errorf("invalid seed length: expected %d bytes, got %d", SeedLength, len(buf))
	}
	copy(s[:], buf)
	return s, nil
}

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

func (s Seed) IsZero() bool {
	return s == Seed{}
}

func (s Seed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Seed) UnmarshalText(text []byte) error {
	seed, err := SeedFromHex(string(text))
	if err != nil {
		return err
	}
	*s = seed
	return nil
}
