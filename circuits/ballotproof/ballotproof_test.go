package ballotproof

import (
	"errors"
	"math/big"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

var (
	testKeysOnce sync.Once
	testKeys     *Keys
	testKeysErr  error
)

func keysForTest(c *qt.C) *Keys {
	testKeysOnce.Do(func() {
		testKeys, testKeysErr = Setup()
	})
	c.Assert(testKeysErr, qt.IsNil)
	return testKeys
}

func witnessForTest(c *qt.C, candidate int64) *Witness {
	secret, err := RandomFieldElement()
	c.Assert(err, qt.IsNil)
	nonce, err := RandomFieldElement()
	c.Assert(err, qt.IsNil)
	return &Witness{
		VoterSecret: secret,
		PositionID:  big.NewInt(7),
		CandidateID: big.NewInt(candidate),
		Nonce:       nonce,
		Candidates:  []*big.Int{big.NewInt(101), big.NewInt(102), big.NewInt(103)},
	}
}

func TestCircuitSolving(t *testing.T) {
	c := qt.New(t)
	assert := test.NewAssert(t)

	w := witnessForTest(c, 102)
	assignment, err := w.assignment()
	c.Assert(err, qt.IsNil)
	assert.NoError(test.IsSolved(&Circuit{}, assignment, Curve.ScalarField()))

	// two selections
	twice, err := w.assignment()
	c.Assert(err, qt.IsNil)
	twice.Selection[0] = 1
	assert.Error(test.IsSolved(&Circuit{}, twice, Curve.ScalarField()))

	// no selection
	none, err := w.assignment()
	c.Assert(err, qt.IsNil)
	none.Selection[1] = 0
	assert.Error(test.IsSolved(&Circuit{}, none, Curve.ScalarField()))

	// selection bit out of range, compensated to keep the sum
	nonBool, err := w.assignment()
	c.Assert(err, qt.IsNil)
	nonBool.Selection[1] = 2
	nonBool.Selection[2] = -1
	assert.Error(test.IsSolved(&Circuit{}, nonBool, Curve.ScalarField()))

	// commitment bound to another nonce
	wrongCommitment, err := w.assignment()
	c.Assert(err, qt.IsNil)
	other, err := Commitment(w.VoterSecret, w.PositionID, big.NewInt(1))
	c.Assert(err, qt.IsNil)
	wrongCommitment.Commitment = other
	assert.Error(test.IsSolved(&Circuit{}, wrongCommitment, Curve.ScalarField()))

	// selecting a padding slot
	padding, err := w.assignment()
	c.Assert(err, qt.IsNil)
	padding.Selection[1] = 0
	padding.Selection[MaxCandidates-1] = 1
	padding.CandidateID = 0
	assert.Error(test.IsSolved(&Circuit{}, padding, Curve.ScalarField()))
}

func TestWitnessValidation(t *testing.T) {
	c := qt.New(t)

	w := witnessForTest(c, 999)
	_, err := w.assignment()
	c.Assert(err, qt.ErrorMatches, "candidate 999 is not in the roster")

	w = witnessForTest(c, 101)
	w.Candidates = nil
	_, err = w.assignment()
	c.Assert(err, qt.ErrorMatches, "roster size 0 out of range.*")

	w = witnessForTest(c, 101)
	w.Nonce = nil
	_, err = w.assignment()
	c.Assert(err, qt.ErrorMatches, "incomplete witness")
}

func TestPublicSignals(t *testing.T) {
	c := qt.New(t)
	ps, err := NewPublicSignals(big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4),
		[]*big.Int{big.NewInt(2), big.NewInt(5)})
	c.Assert(err, qt.IsNil)
	c.Assert(ps, qt.HasLen, NumPublicSignals)
	c.Assert(ps.PositionID().Int64(), qt.Equals, int64(1))
	c.Assert(ps.CandidateID().Int64(), qt.Equals, int64(2))
	c.Assert(ps.Nonce().Int64(), qt.Equals, int64(3))
	c.Assert(ps.Commitment().Int64(), qt.Equals, int64(4))
	c.Assert(ps.Candidates()[1].Int64(), qt.Equals, int64(5))
	c.Assert(ps.Candidates()[2].Sign(), qt.Equals, 0)

	c.Assert(PublicSignals{"1"}.CandidateID(), qt.IsNil)
	bad := append(PublicSignals{}, ps...)
	bad[0] = "x"
	_, err = bad.Values()
	c.Assert(err, qt.ErrorMatches, `public signal 0 is not a field element.*`)
}

func TestProveAndVerify(t *testing.T) {
	c := qt.New(t)
	keys := keysForTest(c)

	w := witnessForTest(c, 103)
	proof, signals, err := Prove(keys, w)
	c.Assert(err, qt.IsNil)
	c.Assert(signals.CandidateID().Int64(), qt.Equals, int64(103))
	c.Assert(Verify(keys.VerifyingKey, signals, proof), qt.IsTrue)

	// the proof does not hold for another candidate
	swapped := append(PublicSignals{}, signals...)
	swapped[1] = "101"
	err = VerifyProof(keys.VerifyingKey, swapped, proof)
	c.Assert(errors.Is(err, types.ErrProofVerificationFailed), qt.IsTrue)

	c.Assert(Verify(keys.VerifyingKey, signals, nil), qt.IsFalse)
	c.Assert(Verify(nil, signals, proof), qt.IsFalse)

	_, _, err = Prove(keys, witnessForTest(c, 42))
	c.Assert(errors.Is(err, types.ErrProofGenerationFailed), qt.IsTrue)
	_, _, err = Prove(&Keys{VerifyingKey: keys.VerifyingKey}, w)
	c.Assert(errors.Is(err, types.ErrProofGenerationFailed), qt.IsTrue)
}

func TestTamperedProofs(t *testing.T) {
	c := qt.New(t)
	keys := keysForTest(c)
	proof, signals, err := Prove(keys, witnessForTest(c, 102))
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(keys.VerifyingKey, signals, proof), qt.IsTrue)

	// Ar, Bs and Krs in compressed form lead the serialized proof
	elements := 2*bn254.SizeOfG1AffineCompressed + bn254.SizeOfG2AffineCompressed
	c.Assert(len(proof) >= elements, qt.IsTrue)
	bits := make([]int, 0, 8*elements)
	for i := 0; i < 8*elements; i++ {
		bits = append(bits, i)
	}
	rand.Shuffle(len(bits), func(i, j int) { bits[i], bits[j] = bits[j], bits[i] })
	for _, bit := range bits[:256] {
		tampered := append([]byte{}, proof...)
		tampered[bit/8] ^= 1 << (bit % 8)
		c.Assert(Verify(keys.VerifyingKey, signals, tampered), qt.IsFalse, qt.Commentf("bit %d", bit))
	}

	// every public signal is bound to the proof
	values, err := signals.Values()
	c.Assert(err, qt.IsNil)
	for i, v := range values {
		swapped := append(PublicSignals{}, signals...)
		swapped[i] = new(big.Int).Add(v, big.NewInt(1)).String()
		c.Assert(Verify(keys.VerifyingKey, swapped, proof), qt.IsFalse, qt.Commentf("signal %d", i))
		if i > 0 {
			exchanged := append(PublicSignals{}, signals...)
			exchanged[0], exchanged[i] = exchanged[i], exchanged[0]
			if exchanged[0] != signals[0] {
				c.Assert(Verify(keys.VerifyingKey, exchanged, proof), qt.IsFalse, qt.Commentf("signals 0 and %d", i))
			}
		}
	}
}

func TestKeysArtifacts(t *testing.T) {
	c := qt.New(t)
	old := circuits.BaseDir
	circuits.BaseDir = c.TempDir()
	c.Cleanup(func() { circuits.BaseDir = old })

	keys := keysForTest(c)
	artifacts, err := keys.Artifacts()
	c.Assert(err, qt.IsNil)
	_, _, vkHash := artifacts.Hashes()

	// a verifier only needs the verifying key hash
	loaded, err := LoadKeys(circuits.NewCircuitArtifacts(nil, nil,
		&circuits.Artifact{Name: "ballot verifying key", Hash: vkHash}))
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.CanProve(), qt.IsFalse)

	proof, signals, err := Prove(keys, witnessForTest(c, 101))
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyProof(loaded.VerifyingKey, signals, proof), qt.IsNil)

	raw, err := EncodeVerifyingKey(keys.VerifyingKey)
	c.Assert(err, qt.IsNil)
	_, err = DecodeVerifyingKey(raw)
	c.Assert(err, qt.IsNil)
	_, err = DecodeVerifyingKey(nil)
	c.Assert(err, qt.ErrorMatches, "empty verifying key")
}

func TestVerifyCircomMalformed(t *testing.T) {
	c := qt.New(t)
	err := VerifyCircom([]byte("{"), []byte("{}"), []byte("[]"))
	c.Assert(errors.Is(err, types.ErrProofVerificationFailed), qt.IsTrue)
	err = VerifyCircom([]byte(`{"protocol":"groth16","curve":"bn128","nPublic":1}`), []byte("not json"), []byte("[]"))
	c.Assert(errors.Is(err, types.ErrProofVerificationFailed), qt.IsTrue)

	vk := []byte(`{"protocol":"groth16","curve":"bn128","nPublic":1,
		"vk_alpha_1":["1","2","1"],
		"vk_beta_2":[["1","2"],["3","4"],["1","0"]],
		"vk_gamma_2":[["1","2"],["3","4"],["1","0"]],
		"vk_delta_2":[["1","2"],["3","4"],["1","0"]],
		"IC":[["1","2","1"],["1","2","1"]]}`)
	huge := "1" + strings.Repeat("0", 80)
	for name, proof := range map[string]string{
		"short pi_b":   `{"pi_a":["1","2","1"],"pi_b":[[],[],[]],"pi_c":["1","2","1"]}`,
		"missing pi_c": `{"pi_a":["1","2","1"],"pi_b":[["1","0"],["1","0"],["1","0"]]}`,
		"huge pi_a":    `{"pi_a":["` + huge + `","2","1"],"pi_b":[["1","0"],["1","0"],["1","0"]],"pi_c":["1","2","1"]}`,
		"hex pi_c":     `{"pi_a":["1","2","1"],"pi_b":[["1","0"],["1","0"],["1","0"]],"pi_c":["0x01","0x02","1"]}`,
	} {
		err = VerifyCircom(vk, []byte(proof), []byte(`["1"]`))
		c.Assert(err, qt.ErrorMatches, ".*proof: pi_.*", qt.Commentf(name))
		c.Assert(errors.Is(err, types.ErrProofVerificationFailed), qt.IsTrue, qt.Commentf(name))
	}
}
