// Package config holds the compile-time defaults of the tally daemon. Every
// value can be overridden by a command line flag or a PHONIPHALEIA_*
// environment variable.
package config

import (
	"time"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
)

const (
	// EnvPrefix is the prefix of the environment variables read by the daemon.
	EnvPrefix = "PHONIPHALEIA_"

	DefaultAPIHost  = "0.0.0.0"
	DefaultAPIPort  = 9090
	DefaultLogLevel = "info"
	DefaultDataDir  = ".phoniphaleia"

	// DefaultPaillierBits is the Paillier modulus size of new elections.
	DefaultPaillierBits = threshold.DefaultPaillierBits
	// DefaultCurve is the ElGamal group of new elections.
	DefaultCurve = curves.DefaultCurve
	// DefaultScheme is the cryptosystem of new elections.
	DefaultScheme = "elgamal"

	// DefaultProofTimeout bounds the generation of the proofs of one
	// submission.
	DefaultProofTimeout = 2 * time.Minute
	// DefaultArtifactsTimeout bounds the download of the circuit artifacts.
	DefaultArtifactsTimeout = 10 * time.Minute

	// MaxCandidates is the largest roster a position can have.
	MaxCandidates = ballotproof.MaxCandidates
)

// Artifacts locates the ballot circuit artifacts. Hashes are the hex sha256
// of the content; when empty the daemon runs a local setup and stores the
// result in the artifact cache. URLs are optional download sources.
type Artifacts struct {
	CircuitHash      string
	CircuitURL       string
	ProvingKeyHash   string
	ProvingKeyURL    string
	VerifyingKeyHash string
	VerifyingKeyURL  string

	// CircomVerifyingKeyFile is the snarkjs verification key of the
	// equivalent circom circuit. Ballots proven with snarkjs are accepted
	// only when it is set.
	CircomVerifyingKeyFile string
}

// Configured reports whether the artifacts are pinned by hash.
func (a Artifacts) Configured() bool {
	return a.VerifyingKeyHash != ""
}
