package elgamal

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
)

// DLEQProof is a non-interactive Chaum-Pedersen proof that two points share
// the same discrete logarithm with respect to two bases: log_B1(Y) ==
// log_B2(D).
type DLEQProof struct {
	Challenge *big.Int `json:"challenge" cbor:"0,keyasint"`
	Response  *big.Int `json:"response" cbor:"1,keyasint"`
}

// ProveDLEQ proves knowledge of x such that Y = x·G and D = x·H, where G is
// the group generator. Y and D are recomputed from x.
func ProveDLEQ(x *big.Int, H ecc.Point) (*DLEQProof, error) {
	G := H.New()
	G.SetGenerator()
	return proveDLEQ(x, G, H, nil)
}

// VerifyDLEQ checks a proof that log_G(Y) == log_H(D).
func VerifyDLEQ(proof *DLEQProof, Y, H, D ecc.Point) bool {
	G := H.New()
	G.SetGenerator()
	return verifyDLEQ(proof, G, Y, H, D, nil)
}

// proveDLEQ proves log_B1(x·B1) == log_B2(x·B2). transcript is hashed into
// the challenge ahead of the points and binds the proof to its statement.
func proveDLEQ(x *big.Int, B1, B2 ecc.Point, transcript []byte) (*DLEQProof, error) {
	order := B2.Order()
	w, err := arith.RandomNonZero(order)
	if err != nil {
		return nil, fmt.Errorf("dleq nonce: %w", err)
	}
	defer arith.Wipe(w)

	Y := B1.New()
	Y.ScalarMult(B1, x)
	D := B2.New()
	D.ScalarMult(B2, x)
	A := B1.New()
	A.ScalarMult(B1, w)
	B := B2.New()
	B.ScalarMult(B2, w)

	c := dleqChallenge(order, transcript, B1, Y, B2, D, A, B)
	// r = w - c·x mod q
	r := new(big.Int).Mul(c, x)
	r.Sub(w, r)
	r.Mod(r, order)
	return &DLEQProof{Challenge: c, Response: r}, nil
}

func verifyDLEQ(proof *DLEQProof, B1, Y, B2, D ecc.Point, transcript []byte) bool {
	if proof == nil || proof.Challenge == nil || proof.Response == nil {
		return false
	}
	if !B1.IsOnCurve() || !Y.IsOnCurve() || !B2.IsOnCurve() || !D.IsOnCurve() {
		return false
	}
	order := B2.Order()
	if proof.Response.Sign() < 0 || proof.Response.Cmp(order) >= 0 {
		return false
	}

	// A = r·B1 + c·Y, B = r·B2 + c·D
	A, cY := B1.New(), B1.New()
	A.ScalarMult(B1, proof.Response)
	cY.ScalarMult(Y, proof.Challenge)
	A.Add(A, cY)
	B, cD := B2.New(), B2.New()
	B.ScalarMult(B2, proof.Response)
	cD.ScalarMult(D, proof.Challenge)
	B.Add(B, cD)

	return dleqChallenge(order, transcript, B1, Y, B2, D, A, B).Cmp(proof.Challenge) == 0
}

// dleqChallenge is the Fiat-Shamir challenge, Keccak-256 over the
// transcript and the compressed points, reduced modulo the group order.
func dleqChallenge(order *big.Int, transcript []byte, points ...ecc.Point) *big.Int {
	data := make([][]byte, 0, len(points)+1)
	data = append(data, transcript)
	for _, p := range points {
		data = append(data, p.Marshal())
	}
	c := new(big.Int).SetBytes(crypto.Keccak256(data...))
	return c.Mod(c, order)
}
