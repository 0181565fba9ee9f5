// Package group defines abstract interfaces for the prime-order groups
// used by the aggregated multi-signature scheme in package aggsig.
//
// This package provides the core interfaces that abstract over the
// mathematical operations needed for Schnorr-style signatures:
//
//   - [Scalar]: Elements of the scalar field (integers modulo the group order)
//   - [Point]: Elements of the group (points on an elliptic curve)
//   - [Group]: Factory and utility methods for creating scalars and points
//   - [KeyExpander]: Optional seed-to-key derivation
//
// # Design Philosophy
//
// The interfaces use a mutable receiver pattern for efficiency. Operations
// like Add, Mul, and ScalarMult set the receiver to the result and return it:
//
//	// Compute a + b*c
//	result := g.NewScalar().Mul(b, c)
//	result = g.NewScalar().Add(a, result)
//
// Code in this module always writes into a fresh receiver, so a Scalar or
// Point handed to another function is never modified afterwards. The one
// exception is [Zeroize], which deliberately overwrites secret scalars once
// they are no longer needed.
//
// # Implementations
//
// See the ed25519 package (edwards25519, compatible with RFC 8032
// verification) and the bjj package (Baby Jubjub).
//
// # Security Considerations
//
// Implementations must ensure:
//
//   - Scalar arithmetic is performed modulo the group order
//   - Point operations are constant-time where possible
//   - Random scalars are generated from cryptographically secure sources
//   - Invalid curve points are rejected in SetBytes
package group
