// Package bjj provides a Baby Jubjub elliptic curve implementation of the
// [group.Group] interface.
//
// Baby Jubjub is a twisted Edwards curve defined over the scalar field of
// BN254 (also known as alt_bn128). It is commonly used in zero-knowledge
// proof systems, where an aggregated key over this curve can be verified
// inside a circuit.
//
// This package wraps the Baby Jubjub implementation from gnark-crypto.
//
// # Curve Parameters
//
// Baby Jubjub is defined by the equation:
//
//	a*x^2 + y^2 = 1 + d*x^2*y^2
//
// where a = 168700 and d = 168696 over the BN254 scalar field.
//
// The curve has a prime-order subgroup of size:
//
//	2736030358979909402780800718157159386076813972158567259200215660948447373041
//
// # Usage
//
//	g := &bjj.BJJ{}
//	scheme, err := aggsig.New(g)
//
// Signatures over this group are Schnorr signatures with the challenge
// SHA-512(R || A || M) mod order; they are not Ed25519 signatures.
package bjj
