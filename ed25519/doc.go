// Package ed25519 provides an edwards25519 implementation of the
// [group.Group] interface, built on filippo.io/edwards25519.
//
// Points and scalars use the RFC 8032 encodings (32 bytes, little-endian),
// HashToScalar is SHA-512 with a wide reduction, and ExpandSeed is the RFC
// 8032 private key expansion. Together these make aggregated signatures
// produced over this group indistinguishable from ordinary Ed25519
// signatures: they verify with crypto/ed25519.Verify against the aggregated
// public key.
//
// # Usage
//
//	g := &ed25519.Ed25519{}
//	scheme, err := aggsig.New(g)
package ed25519
