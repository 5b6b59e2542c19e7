package homomorphic

import (
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/elgamal"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/paillier"
)

// EncryptionProof is a tagged proof that a ciphertext holds a given
// plaintext.
type EncryptionProof struct {
	Scheme   Scheme                    `json:"scheme" cbor:"0,keyasint"`
	Paillier *paillier.EncryptionProof `json:"paillier,omitempty" cbor:"1,keyasint,omitempty"`
	ElGamal  *elgamal.DLEQProof        `json:"elgamal,omitempty" cbor:"2,keyasint,omitempty"`
}

// EncryptWithProof encrypts value with fresh randomness and proves that the
// ciphertext holds value.
func (pk *PublicKey) EncryptWithProof(value *big.Int) (*Ciphertext, *EncryptionProof, error) {
	if err := pk.Validate(); err != nil {
		return nil, nil, err
	}
	switch pk.Scheme {
	case SchemePaillier:
		ct, proof, err := pk.Paillier.EncryptWithProof(value)
		if err != nil {
			return nil, nil, err
		}
		return &Ciphertext{Scheme: SchemePaillier, Paillier: ct},
			&EncryptionProof{Scheme: SchemePaillier, Paillier: proof}, nil
	default:
		c1, c2, k, err := elgamal.Encrypt(pk.ElGamal.Point, value)
		if err != nil {
			return nil, nil, err
		}
		defer arith.Wipe(k)
		ct := &elgamal.Ciphertext{C1: c1, C2: c2}
		proof, err := elgamal.ProveEncryption(pk.ElGamal.Point, ct, value, k)
		if err != nil {
			return nil, nil, err
		}
		return &Ciphertext{Scheme: SchemeElGamal, ElGamal: ct},
			&EncryptionProof{Scheme: SchemeElGamal, ElGamal: proof}, nil
	}
}

// VerifyEncryption checks that proof shows ct to hold value under pk.
func (pk *PublicKey) VerifyEncryption(ct *Ciphertext, value *big.Int, proof *EncryptionProof) error {
	if err := pk.ValidateCiphertext(ct); err != nil {
		return err
	}
	if proof == nil || proof.Scheme != pk.Scheme {
		return fmt.Errorf("missing %s encryption proof", pk.Scheme)
	}
	var ok bool
	switch pk.Scheme {
	case SchemePaillier:
		ok = pk.Paillier.VerifyEncryption(ct.Paillier, value, proof.Paillier)
	default:
		ok = elgamal.VerifyEncryption(pk.ElGamal.Point, ct.ElGamal, value, proof.ElGamal)
	}
	if !ok {
		return fmt.Errorf("ciphertext does not encrypt %s", value)
	}
	return nil
}
