package ed25519

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/f3rmion/aggsig/group"
)

const (
	// ScalarSize is the size of an encoded scalar.
	ScalarSize = 32
	// PointSize is the size of an encoded point.
	PointSize = 32
	// SeedSize is the size of a private key seed, as in RFC 8032.
	SeedSize = 32
)

// order is l = 2^252 + 27742317777372353535851937790883648493, big-endian.
var order, _ = hex.DecodeString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed")

// Scalar is an integer modulo l. It implements [group.Scalar].
type Scalar struct {
	inner edwards25519.Scalar
}

func newScalar() *Scalar {
	return &Scalar{inner: *edwards25519.NewScalar()}
}

// Add sets s to a + b (mod l) and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b (mod l) and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.inner.Subtract(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Mul sets s to a * b (mod l) and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Multiply(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Negate sets s to -a (mod l) and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.Negate(&a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1) mod l and returns s.
// Returns an error if a is zero.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	aScalar := a.(*Scalar)
	if aScalar.IsZero() {
		return nil, errors.New("cannot invert zero scalar")
	}
	s.inner.Invert(&aScalar.inner)
	return s, nil
}

// Set copies the value of a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(&a.(*Scalar).inner)
	return s
}

// Bytes returns the canonical 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.inner.Bytes()
}

// SetBytes sets s from a canonical 32-byte little-endian encoding.
// Values that are not reduced modulo l are rejected, matching the
// malleability check of RFC 8032 verification.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) != ScalarSize {
		return nil, fmt.Errorf("ed25519: invalid scalar length %d", len(data))
	}
	if _, err := s.inner.SetCanonicalBytes(data); err != nil {
		return nil, fmt.Errorf("ed25519: %w", err)
	}
	return s, nil
}

// Equal reports whether s and b are the same scalar, in constant time.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equal(&b.(*Scalar).inner) == 1
}

// IsZero reports whether s is the zero scalar.
func (s *Scalar) IsZero() bool {
	return s.inner.Equal(edwards25519.NewScalar()) == 1
}

// Point is an element of the edwards25519 group. It implements [group.Point].
type Point struct {
	inner edwards25519.Point
}

func newPoint() *Point {
	return &Point{inner: *edwards25519.NewIdentityPoint()}
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	p.inner.Add(&a.(*Point).inner, &b.(*Point).inner)
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	p.inner.Subtract(&a.(*Point).inner, &b.(*Point).inner)
	return p
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Negate(&a.(*Point).inner)
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.inner.ScalarMult(&s.(*Scalar).inner, &q.(*Point).inner)
	return p
}

// Set copies the value of a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(&a.(*Point).inner)
	return p
}

// Bytes returns the 32-byte compressed encoding of p as defined in RFC 8032.
func (p *Point) Bytes() []byte {
	return p.inner.Bytes()
}

// SetBytes sets p from its 32-byte compressed encoding.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != PointSize {
		return nil, fmt.Errorf("ed25519: invalid point length %d", len(data))
	}
	if _, err := p.inner.SetBytes(data); err != nil {
		return nil, fmt.Errorf("ed25519: %w", err)
	}
	return p, nil
}

// Equal reports whether p and b are the same point, in constant time.
func (p *Point) Equal(b group.Point) bool {
	return p.inner.Equal(&b.(*Point).inner) == 1
}

// IsIdentity reports whether p is the neutral element.
func (p *Point) IsIdentity() bool {
	return p.inner.Equal(edwards25519.NewIdentityPoint()) == 1
}

// Ed25519 implements [group.Group] and [group.KeyExpander] for edwards25519.
//
// Hashing to scalars uses SHA-512 followed by a wide reduction modulo l, so
// a challenge computed as HashToScalar(R, A, M) is exactly the RFC 8032
// challenge and signatures over this group verify with crypto/ed25519.
type Ed25519 struct{}

// Name returns "ed25519".
func (g *Ed25519) Name() string {
	return "edwards25519"
}

// NewScalar returns a new scalar initialized to zero.
func (g *Ed25519) NewScalar() group.Scalar {
	return newScalar()
}

// NewPoint returns a new point initialized to the identity.
func (g *Ed25519) NewPoint() group.Point {
	return newPoint()
}

// Generator returns the RFC 8032 base point.
func (g *Ed25519) Generator() group.Point {
	return &Point{inner: *edwards25519.NewGeneratorPoint()}
}

// RandomScalar reads 64 bytes from r and reduces them modulo l.
func (g *Ed25519) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	s := newScalar()
	if _, err := s.inner.SetUniformBytes(buf[:]); err != nil {
		return nil, err
	}
	clear(buf[:])
	return s, nil
}

// HashToScalar computes SHA-512 over the concatenation of data and reduces
// the 64-byte digest modulo l.
func (g *Ed25519) HashToScalar(data ...[]byte) (group.Scalar, error) {
	h := sha512.New()
	for _, d := range data {
		h.Write(d)
	}
	digest := h.Sum(nil)

	s := newScalar()
	if _, err := s.inner.SetUniformBytes(digest); err != nil {
		return nil, err
	}
	return s, nil
}

// Order returns l as a big-endian byte slice.
func (g *Ed25519) Order() []byte {
	out := make([]byte, len(order))
	copy(out, order)
	return out
}

// ExpandSeed performs the RFC 8032 key expansion: the first half of
// SHA-512(seed) is clamped into the private scalar and the second half is
// the nonce prefix.
func (g *Ed25519) ExpandSeed(seed []byte) (group.Scalar, []byte, error) {
	if len(seed) != SeedSize {
		return nil, nil, fmt.Errorf("ed25519: invalid seed length %d", len(seed))
	}
	digest := sha512.Sum512(seed)
	defer clear(digest[:])

	s := newScalar()
	if _, err := s.inner.SetBytesWithClamping(digest[:32]); err != nil {
		return nil, nil, err
	}
	prefix := make([]byte, 32)
	copy(prefix, digest[32:])
	return s, prefix, nil
}
