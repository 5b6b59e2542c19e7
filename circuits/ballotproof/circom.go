package ballotproof

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/vocdoni/circom2gnark/parser"

	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// VerifyCircom verifies a proof produced by snarkjs for an equivalent circom
// circuit. The inputs are the JSON documents snarkjs emits: the verification
// key, the proof and the public signals.
func VerifyCircom(vkJSON, proofJSON, signalsJSON []byte) error {
	vk, err := parser.UnmarshalCircomVerificationKeyJSON(vkJSON)
	if err != nil {
		return fmt.Errorf("%w: verification key: %v", types.ErrProofVerificationFailed, err)
	}
	if err := checkCircomVerificationKey(vk); err != nil {
		return fmt.Errorf("%w: verification key: %v", types.ErrProofVerificationFailed, err)
	}
	proof, err := parser.UnmarshalCircomProofJSON(proofJSON)
	if err != nil {
		return fmt.Errorf("%w: proof: %v", types.ErrProofVerificationFailed, err)
	}
	if err := checkCircomProof(proof); err != nil {
		return fmt.Errorf("%w: proof: %v", types.ErrProofVerificationFailed, err)
	}
	signals, err := parser.UnmarshalCircomPublicSignalsJSON(signalsJSON)
	if err != nil {
		return fmt.Errorf("%w: public signals: %v", types.ErrProofVerificationFailed, err)
	}
	gnarkProof, err := parser.ConvertCircomToGnark(proof, vk, signals)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	ok, err := parser.VerifyProof(gnarkProof)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	if !ok {
		return types.ErrProofVerificationFailed
	}
	return nil
}

// SetCircomVerifyingKey installs the snarkjs verification key of the circom
// ballot circuit, enabling VerifyCircomProof. The key must parse.
func (k *Keys) SetCircomVerifyingKey(vkJSON []byte) error {
	vk, err := parser.UnmarshalCircomVerificationKeyJSON(vkJSON)
	if err != nil {
		return fmt.Errorf("circom verification key: %w", err)
	}
	if err := checkCircomVerificationKey(vk); err != nil {
		return fmt.Errorf("circom verification key: %w", err)
	}
	k.CircomVerifyingKey = append([]byte{}, vkJSON...)
	return nil
}

// VerifyCircomProof checks a snarkjs proof of the circom ballot circuit
// against the public signals. The circom circuit exposes the same signals,
// in the same order, as Circuit.
func (k *Keys) VerifyCircomProof(signals PublicSignals, proofJSON []byte) error {
	if len(k.CircomVerifyingKey) == 0 {
		return fmt.Errorf("%w: circom verification key not loaded", types.ErrProofVerificationFailed)
	}
	if _, err := signals.Values(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	signalsJSON, err := json.Marshal([]string(signals))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	return VerifyCircom(k.CircomVerifyingKey, proofJSON, signalsJSON)
}

// maxCoordinate bounds the decimal coordinates snarkjs emits. The parser
// pads them to 32 bytes and indexes the point arrays directly, so malformed
// documents are rejected here.
var maxCoordinate = new(big.Int).Lsh(big.NewInt(1), 256)

func checkCoordinates(values ...string) error {
	for _, v := range values {
		c, ok := new(big.Int).SetString(v, 10)
		if !ok || c.Sign() < 0 || c.Cmp(maxCoordinate) >= 0 {
			return fmt.Errorf("invalid coordinate %q", v)
		}
	}
	return nil
}

func checkG1(p []string) error {
	if len(p) < 3 {
		return fmt.Errorf("malformed G1 point")
	}
	return checkCoordinates(p[:2]...)
}

func checkG2(p [][]string) error {
	if len(p) < 3 || len(p[0]) < 2 || len(p[1]) < 2 {
		return fmt.Errorf("malformed G2 point")
	}
	return checkCoordinates(p[0][0], p[0][1], p[1][0], p[1][1])
}

func checkCircomProof(p *parser.CircomProof) error {
	if err := checkG1(p.PiA); err != nil {
		return fmt.Errorf("pi_a: %w", err)
	}
	if err := checkG2(p.PiB); err != nil {
		return fmt.Errorf("pi_b: %w", err)
	}
	if err := checkG1(p.PiC); err != nil {
		return fmt.Errorf("pi_c: %w", err)
	}
	return nil
}

func checkCircomVerificationKey(vk *parser.CircomVerificationKey) error {
	if err := checkG1(vk.VkAlpha1); err != nil {
		return fmt.Errorf("vk_alpha_1: %w", err)
	}
	for name, p := range map[string][][]string{
		"vk_beta_2":  vk.VkBeta2,
		"vk_gamma_2": vk.VkGamma2,
		"vk_delta_2": vk.VkDelta2,
	} {
		if err := checkG2(p); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if len(vk.IC) == 0 {
		return fmt.Errorf("IC: empty")
	}
	for i, p := range vk.IC {
		if err := checkG1(p); err != nil {
			return fmt.Errorf("IC[%d]: %w", i, err)
		}
	}
	return nil
}
