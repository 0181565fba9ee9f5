package group

import (
	"io"
)

// Scalar represents an element of the scalar field associated with a
// cryptographic group. Scalars are integers modulo the group order and
// are used as exponents in scalar multiplication.
//
// Arithmetic methods set the receiver to the result and return it. Callers
// in this module always pass a freshly allocated receiver (g.NewScalar()),
// so operands are never modified and scalars behave as immutable values.
//
// Implementations must ensure all operations produce results in the
// valid range [0, order).
type Scalar interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Scalar) Scalar
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Scalar) Scalar
	// Mul sets the receiver to a*b and returns it.
	Mul(a, b Scalar) Scalar
	// Negate sets the receiver to -a and returns it.
	Negate(a Scalar) Scalar
	// Invert sets the receiver to a^{-1} and returns it.
	// Returns an error if a is zero.
	Invert(a Scalar) (Scalar, error)
	// Set sets the receiver to a and returns it.
	Set(a Scalar) Scalar
	// Bytes returns the canonical fixed-size encoding of the scalar.
	Bytes() []byte
	// SetBytes sets the receiver from a byte slice and returns it.
	// Returns an error if the data is invalid or out of range.
	SetBytes(data []byte) (Scalar, error)
	// Equal reports whether the receiver equals b.
	Equal(b Scalar) bool
	// IsZero reports whether the receiver is zero.
	IsZero() bool
}

// Point represents an element of a cryptographic group, typically a point
// on an elliptic curve.
//
// The same receiver convention as [Scalar] applies.
type Point interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Point) Point
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Point) Point
	// Negate sets the receiver to -a and returns it.
	Negate(a Point) Point
	// ScalarMult sets the receiver to s*p and returns it.
	ScalarMult(s Scalar, p Point) Point
	// Set sets the receiver to a and returns it.
	Set(a Point) Point
	// Bytes returns the canonical fixed-size encoding of the point.
	Bytes() []byte
	// SetBytes sets the receiver from a byte slice and returns it.
	// Returns an error if the data does not encode a valid point.
	SetBytes(data []byte) (Point, error)
	// Equal reports whether the receiver equals b.
	Equal(b Point) bool
	// IsIdentity reports whether the receiver is the identity element.
	IsIdentity() bool
}

// Group provides factory methods for scalars and points, the generator,
// random sampling and hashing to the scalar field.
//
// Example usage:
//
//	g := &ed25519.Ed25519{}
//	scalar, _ := g.RandomScalar(rand.Reader)
//	point := g.NewPoint().ScalarMult(scalar, g.Generator())
type Group interface {
	// Name returns a short identifier for the group, e.g. "edwards25519".
	Name() string
	// NewScalar returns a new zero scalar.
	NewScalar() Scalar
	// NewPoint returns a new identity point.
	NewPoint() Point
	// Generator returns the group's base point.
	Generator() Point
	// RandomScalar returns a uniformly random scalar read from r.
	RandomScalar(r io.Reader) (Scalar, error)
	// HashToScalar hashes the concatenation of data to a scalar.
	HashToScalar(data ...[]byte) (Scalar, error)
	// Order returns the group order as a big-endian byte slice.
	Order() []byte
}

// KeyExpander is implemented by groups that define a standard derivation
// from a secret seed to a private scalar and a nonce prefix, such as the
// RFC 8032 expansion for Ed25519.
type KeyExpander interface {
	// ExpandSeed returns the private scalar and the secret prefix for seed.
	ExpandSeed(seed []byte) (Scalar, []byte, error)
}

// Zeroize overwrites s with zero. It is a no-op for a nil scalar.
func Zeroize(g Group, s Scalar) {
	if s == nil {
		return
	}
	s.Set(g.NewScalar())
}
