package elgamal

import (
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
)

// ProveEncryption proves that ct encrypts msg under publicKey without
// revealing the randomness k:
//
//	log_G(C1) == log_PK(C2 - msg·G) == k
func ProveEncryption(publicKey ecc.Point, ct *Ciphertext, msg, k *big.Int) (*DLEQProof, error) {
	if publicKey == nil || !publicKey.IsOnCurve() || !ct.IsValid() {
		return nil, fmt.Errorf("invalid encryption statement")
	}
	if !CheckK(ct.C1, k) {
		return nil, fmt.Errorf("k is not the randomness of the ciphertext")
	}
	G := publicKey.New()
	G.SetGenerator()
	return proveDLEQ(k, G, publicKey, encryptionTranscript(publicKey, ct, msg))
}

// VerifyEncryption checks a proof produced by ProveEncryption.
func VerifyEncryption(publicKey ecc.Point, ct *Ciphertext, msg *big.Int, proof *DLEQProof) bool {
	if publicKey == nil || publicKey.IsZero() || !publicKey.IsOnCurve() || !ct.IsValid() || msg == nil {
		return false
	}
	if ct.C1.Type() != publicKey.Type() {
		return false
	}
	G := publicKey.New()
	G.SetGenerator()
	return verifyDLEQ(proof, G, ct.C1, publicKey, withoutMessage(ct, msg), encryptionTranscript(publicKey, ct, msg))
}

// withoutMessage returns C2 - msg·G.
func withoutMessage(ct *Ciphertext, msg *big.Int) ecc.Point {
	mG := ct.C2.New()
	mG.ScalarBaseMult(new(big.Int).Mod(msg, ct.C2.Order()))
	mG.Neg(mG)
	D := ct.C2.New()
	D.Add(ct.C2, mG)
	return D
}

func encryptionTranscript(publicKey ecc.Point, ct *Ciphertext, msg *big.Int) []byte {
	buf := []byte("elgamal-encryption")
	buf = append(buf, publicKey.Marshal()...)
	buf = append(buf, ct.Serialize()...)
	return append(buf, msg.Bytes()...)
}
