package domain

import (
	"crypto/sha256"
	"encoding/binary"
)

// SelectWinner picks the index of the winning bet. Every player wins with a
// probability equal to its share of the pot. The result only depends on the
// given inputs.
func SelectWinner(
	seed Seed, timestamp int64, totalPot uint64, playerCount uint8,
	roundId uint64, bets []Bet,
) (int, error) {
	entropy := foldEntropy(seed, timestamp, totalPot, playerCount, roundId)
	hash := sha256.Sum256(entropy[:])
	random := binary.LittleEndian.Uint64(hash[:8])

	if totalPot == 0 {
		return -1, ErrNoPlayers
	}
	scaled := random % totalPot

	cumulative := uint64(0)
	for i, bet := range bets {
		if bet.Amount == 0 {
			continue
		}
		var ok bool
		cumulative, ok = addUint64(cumulative, bet.Amount)
		if !ok {
			return -1, ErrGameCalculationError
		}
		if scaled < cumulative {
			return i, nil
		}
	}

	return -1, ErrGameCalculationError.Withf("no bet matched random value %d", scaled)
}

func foldEntropy(
	seed Seed, timestamp int64, totalPot uint64, playerCount uint8, roundId uint64,
) [SeedLength]byte {
	var buf [SeedLength]byte
	xor := func(data []byte) {
		for i, b := range data {
			buf[i%SeedLength] ^= b
		}
	}

	xor(seed[:])

	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(timestamp))
	xor(tmp[:])

	binary.LittleEndian.PutUint64(tmp[:], totalPot)
	xor(tmp[:])

	buf[0] ^= playerCount

	binary.LittleEndian.PutUint64(tmp[:], roundId)
	xor(tmp[:])

	return buf
}
