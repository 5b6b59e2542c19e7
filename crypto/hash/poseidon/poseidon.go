// Package poseidon hashes arbitrary lists of integers with the Poseidon hash
// over the BN254 scalar field.
package poseidon

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/vocdoni/arbo"
)

// maxWidth is the largest number of inputs a single Poseidon permutation
// accepts.
const maxWidth = 16

// MaxInputs bounds the inputs of Hash: maxWidth chunks of maxWidth values.
const MaxInputs = maxWidth * maxWidth

// Hash returns the Poseidon hash of the inputs. Inputs are reduced to the
// scalar field first, so any non-negative integer is accepted. More than
// maxWidth inputs are hashed in chunks and the chunk hashes hashed again.
func Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	if len(inputs) > MaxInputs {
		return nil, fmt.Errorf("too many inputs: %d > %d", len(inputs), MaxInputs)
	}
	var hashes []*big.Int
	for start := 0; start < len(inputs); start += maxWidth {
		end := min(start+maxWidth, len(inputs))
		chunk := make([]*big.Int, 0, end-start)
		for i, in := range inputs[start:end] {
			if in == nil || in.Sign() < 0 {
				return nil, fmt.Errorf("input %d is not a non-negative integer", start+i)
			}
			chunk = append(chunk, arbo.BigToFF(fr.Modulus(), in))
		}
		h, err := poseidon.Hash(chunk)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	return poseidon.Hash(hashes)
}
