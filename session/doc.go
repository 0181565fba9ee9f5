// Package session provides a high-level API for aggregated signing
// ceremonies. It wraps the low-level primitives in the [aggsig] package with
// a simpler interface that handles round sequencing and prevents common
// mistakes like nonce reuse or revealing a nonce too early.
//
// The session package is designed for application developers who want to
// integrate aggregated signatures without understanding every protocol
// detail. For full control over the protocol, use the [aggsig] package
// directly.
//
// # Setup
//
// All cosigners agree on the ordered list of public keys. Each one creates
// a signer for its own position:
//
//	signer, err := session.NewSigner(scheme, myKeys, allPublicKeys, myIndex)
//	if err != nil {
//		return err
//	}
//
// # Signing
//
// Signing uses a session-based API that ensures nonces are never reused:
//
//	// Create a signing session (derives the nonce internally)
//	sess, err := signer.NewSigningSession(rand.Reader, message)
//	if err != nil {
//		return err
//	}
//
//	// Broadcast sess.FirstMessage(), collect everyone's first messages
//
//	// Reveal the nonce only once every commitment has arrived
//	second, err := sess.SecondMessage(allFirsts)
//
//	// Broadcast second, collect everyone's second messages
//
//	// Produce the signature share (consumes the session)
//	share, err := sess.Sign(allSeconds)
//
//	// Coordinator checks every share and combines them
//	coord, err := session.NewCoordinator(scheme, allPublicKeys)
//	sig, err := coord.Combine(ctx, message, allFirsts, allSeconds, allShares)
//
// The SigningSession is designed to be used exactly once. Calling Sign a
// second time returns an error, preventing accidental nonce reuse which
// would compromise security. If a peer's reveal does not open its
// commitment, the session is consumed as well: start a new one.
//
// # Weighted Signing
//
// [WeightedSigner] and [CombineWeighted] run the non-interactive weighted
// scheme. Its signatures are not Ed25519 compatible and verify with
// [aggsig.Scheme.VerifyHashed].
//
// Weighted signatures can be forged without any private key, because the
// challenge depends on the message alone. A share or signature that
// verifies says nothing about who made it. Use the weighted scheme only
// with a signer set authenticated out of band.
//
// # Transport Agnostic
//
// This package does not handle network communication. You are responsible
// for distributing messages between cosigners using your preferred
// transport. The messages implement encoding.BinaryMarshaler. The package
// only manages protocol state and message generation.
package session
