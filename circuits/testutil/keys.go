// Package testutil shares circuit fixtures between package tests. The
// ballot circuit setup runs once per test binary.
package testutil

import (
	"math/big"
	"sync"
	"testing"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
)

var (
	keysOnce sync.Once
	keys     *ballotproof.Keys
	keysErr  error
)

// BallotKeys returns the keys of a Groth16 setup of the ballot circuit.
func BallotKeys(t testing.TB) *ballotproof.Keys {
	t.Helper()
	keysOnce.Do(func() {
		keys, keysErr = ballotproof.Setup()
	})
	if keysErr != nil {
		t.Fatalf("ballot circuit setup: %v", keysErr)
	}
	return keys
}

// VoterSecret returns a random voter secret.
func VoterSecret(t testing.TB) *big.Int {
	t.Helper()
	s, err := ballotproof.RandomFieldElement()
	if err != nil {
		t.Fatal(err)
	}
	return s
}
