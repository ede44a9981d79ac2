// Package fieldmath implements modular arithmetic over the backend's
// scalar field and the cryptographic primitives the intrinsic
// `std::crypto` module exposes: point arithmetic and Schnorr signature
// verification on the edwards25519 curve (filippo.io/edwards25519),
// and a sha3-backed hash/Pedersen-style commitment (golang.org/x/crypto).
// Grounded on spec.md §4.I's crypto intrinsic listing and the ff_invert
// test matrix supplemented from original_source/.
package fieldmath

import (
	"crypto/sha256"
	"math/big"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"
)

// Prime is the modulus the functions of this package reduce by: the
// group order of edwards25519. internal/element's constant folding
// does not use this package, and folded Field values are not reduced
// modulo Prime.
var Prime, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// Add/Sub/Mul/Neg/Invert all reduce modulo Prime; division and
// remainder of Field values are rejected at the semantic layer before
// reaching here (spec.md's ForbiddenFieldDivision/ForbiddenFieldRemainder).

func Add(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Add(a, b), Prime) }
func Sub(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Sub(a, b), Prime) }
func Mul(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Mul(a, b), Prime) }
func Neg(a *big.Int) *big.Int    { return new(big.Int).Mod(new(big.Int).Neg(a), Prime) }

// Invert computes the modular inverse of a via Fermat's little
// theorem, a^(p-2) mod p, per original_source's ff_invert.rs: the
// multiplicative group of a prime field has order p-1, so a^(p-1) = 1
// and a^(p-2) is a's inverse.
func Invert(a *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return nil, errDivideByZero
	}
	exp := new(big.Int).Sub(Prime, big.NewInt(2))
	return new(big.Int).Exp(a, exp, Prime), nil
}

var errDivideByZero = invertError("cannot invert zero")

type invertError string

func (e invertError) Error() string { return string(e) }

// Point is a std::crypto::ecc::Point value: a compressed edwards25519
// group element.
type Point struct {
	inner *edwards25519.Point
}

func NewGeneratorPoint() Point {
	return Point{inner: edwards25519.NewGeneratorPoint()}
}

func (p Point) Add(q Point) Point {
	r := edwards25519.NewIdentityPoint().Add(p.inner, q.inner)
	return Point{inner: r}
}

func (p Point) ScalarMul(scalar *big.Int) (Point, error) {
	s, err := scalarFromBigInt(scalar)
	if err != nil {
		return Point{}, err
	}
	r := edwards25519.NewIdentityPoint().ScalarMult(s, p.inner)
	return Point{inner: r}, nil
}

func (p Point) Bytes() []byte { return p.inner.Bytes() }

func scalarFromBigInt(v *big.Int) (*edwards25519.Scalar, error) {
	b := make([]byte, 32)
	vb := new(big.Int).Mod(v, Prime).Bytes()
	// edwards25519.Scalar wants little-endian, 32 bytes.
	for i, j := 0, len(vb)-1; j >= 0 && i < 32; i, j = i+1, j-1 {
		b[i] = vb[j]
	}
	return edwards25519.NewScalar().SetCanonicalBytes(b)
}

// SHA256 implements the `std::crypto::sha256` intrinsic: a standard
// SHA-256 digest of a bit-packed input.
func SHA256(input []byte) [32]byte {
	return sha256.Sum256(input)
}

// Pedersen implements a simple hash-to-point commitment used by the
// `std::crypto::pedersen` intrinsic: sha3-256 the input, interpret the
// digest as a scalar, and multiply the curve's base point by it. This
// is not a constant-time, audited Pedersen commitment; it exists to
// give the intrinsic a concrete, test-visible shape.
func Pedersen(input []byte) Point {
	digest := sha3.Sum256(input)
	scalar := new(big.Int).SetBytes(digest[:])
	g := NewGeneratorPoint()
	p, err := g.ScalarMul(scalar)
	if err != nil {
		// scalar is already reduced into range by ScalarMul's Mod.
		panic(err)
	}
	return p
}

// SchnorrVerify implements `std::crypto::schnorr::Signature::verify`:
// checks that s*G == R + e*Pub, where e = H(R || Pub || message).
func SchnorrVerify(pub Point, r Point, s *big.Int, message []byte) bool {
	h := sha3.New256()
	h.Write(r.Bytes())
	h.Write(pub.Bytes())
	h.Write(message)
	e := new(big.Int).SetBytes(h.Sum(nil))
	e.Mod(e, Prime)

	lhs, err := NewGeneratorPoint().ScalarMul(s)
	if err != nil {
		return false
	}
	ep, err := pub.ScalarMul(e)
	if err != nil {
		return false
	}
	rhs := r.Add(ep)
	return string(lhs.Bytes()) == string(rhs.Bytes())
}
