package ballotproof

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
)

// Keys holds the compiled circuit and its Groth16 key pair. A Keys value is
// read-only after creation and safe for concurrent use.
type Keys struct {
	CCS          constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey

	// CircomVerifyingKey is the optional snarkjs verification key (JSON) of
	// the circom build of the circuit, used for browser-generated proofs.
	CircomVerifyingKey []byte
}

var (
	compileOnce sync.Once
	compiledCCS constraint.ConstraintSystem
	compileErr  error
)

// Compile returns the constraint system of the circuit. It is compiled once
// per process.
func Compile() (constraint.ConstraintSystem, error) {
	compileOnce.Do(func() {
		compiledCCS, compileErr = frontend.Compile(Curve.ScalarField(), r1cs.NewBuilder, &Circuit{})
	})
	return compiledCCS, compileErr
}

// Setup compiles the circuit and runs a fresh Groth16 setup.
func Setup() (*Keys, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, fmt.Errorf("compile ballot circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("ballot circuit setup: %w", err)
	}
	log.Infow("ballot circuit setup done", "constraints", ccs.GetNbConstraints())
	return &Keys{CCS: ccs, ProvingKey: pk, VerifyingKey: vk}, nil
}

// Artifacts stores the keys in the artifact cache and returns them as
// content-addressed artifacts.
func (k *Keys) Artifacts() (*circuits.CircuitArtifacts, error) {
	ccs, err := circuits.NewArtifact("ballot circuit definition", k.CCS)
	if err != nil {
		return nil, err
	}
	pk, err := circuits.NewArtifact("ballot proving key", k.ProvingKey)
	if err != nil {
		return nil, err
	}
	vk, err := circuits.NewArtifact("ballot verifying key", k.VerifyingKey)
	if err != nil {
		return nil, err
	}
	return circuits.NewCircuitArtifacts(ccs, pk, vk), nil
}

// LoadKeys decodes the keys from loaded artifacts. The circuit definition
// and proving key are optional; without them the keys can only verify.
func LoadKeys(artifacts *circuits.CircuitArtifacts) (*Keys, error) {
	if err := artifacts.LoadAll(); err != nil {
		return nil, err
	}
	keys := &Keys{}
	var err error
	if keys.VerifyingKey, err = DecodeVerifyingKey(artifacts.VerifyingKey()); err != nil {
		return nil, err
	}
	if content := artifacts.CircuitDefinition(); content != nil {
		keys.CCS = groth16.NewCS(Curve)
		if _, err := keys.CCS.ReadFrom(bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("failed to read ballot circuit definition: %w", err)
		}
	}
	if content := artifacts.ProvingKey(); content != nil {
		keys.ProvingKey = groth16.NewProvingKey(Curve)
		if _, err := keys.ProvingKey.ReadFrom(bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("failed to read ballot proving key: %w", err)
		}
	}
	return keys, nil
}

// CanProve reports whether the keys include the proving material.
func (k *Keys) CanProve() bool {
	return k.CCS != nil && k.ProvingKey != nil
}

// EncodeVerifyingKey serializes a verifying key.
func EncodeVerifyingKey(vk groth16.VerifyingKey) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeVerifyingKey deserializes a verifying key.
func DecodeVerifyingKey(data []byte) (groth16.VerifyingKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty verifying key")
	}
	vk := groth16.NewVerifyingKey(Curve)
	if _, err := vk.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to read ballot verifying key: %w", err)
	}
	return vk, nil
}
