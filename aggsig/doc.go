// Package aggsig implements n-of-n aggregated Schnorr signatures over an
// abstract prime-order group.
//
// A fixed set of cosigners produces one signature under a single aggregated
// public key. No party learns another's private key and no trusted dealer is
// involved. Over the edwards25519 group the final signature is a standard
// RFC 8032 Ed25519 signature and verifies with crypto/ed25519.
//
// # Protocol Overview
//
// Key aggregation: every party computes the same aggregated key from the
// ordered list of public keys. Each key is weighted by a coefficient derived
// from the whole list, which defeats rogue-key attacks.
//
//	agg, _ := s.AggregateKeys(pks, myIndex)
//
// Round 1: each party derives a nonce and broadcasts a commitment to its
// nonce point.
//
//	eph, first, second, _ := s.Commit(rand.Reader, keys, msg)
//	// broadcast first, collect everyone's first messages
//
// Round 2: once all commitments are in, each party reveals its nonce point.
// The reveals are checked against the commitments and summed.
//
//	// broadcast second, collect everyone's second messages
//	rTot, _ := s.AggregateNonces(firsts, seconds)
//
// Signing: each party produces a share, which anyone can check against the
// signer's public key and nonce point before the shares are combined.
//
//	share, _ := s.PartialSign(eph, keys, agg.Coefficient, rTot, agg.APK, msg)
//	sig, _ := s.Combine(shares)
//	err := s.Verify(sig, msg, agg.APK)
//
// # Weighted Scheme
//
// [Scheme.SignHashed] and [Scheme.CombineWeighted] implement a second,
// non-interactive combination in which each party signs with its own nonce
// and the combiner weights nonces, responses and keys by a per-key hash.
// Shares are tagged with the [Mode] that produced them and the two
// combiners reject each other's shares. The weighted scheme verifies with
// [Scheme.VerifyHashed] and is not Ed25519 compatible.
//
// The weighted challenge is H(msg). It binds neither the nonce point nor
// any key, so weighted signatures are existentially forgeable without a
// secret key: for any S, R = S*G - H(msg)*pk passes VerifyHashed under any
// pk, including a weighted aggregated key. A valid weighted signature
// proves nothing about who produced it. Use the weighted scheme only
// where the signer set and the transport of shares are authenticated out
// of band.
//
// # Security Considerations
//
//   - An [EphemeralKey] must be used for exactly one signature. PartialSign
//     consumes and clears it; a second use returns [ErrNonceReuse].
//   - Nonce points must not be revealed before every commitment has been
//     received. [Scheme.AggregateNonces] opens every commitment itself.
//   - A commitment that fails to open is fatal for the session. Abort and
//     start over with fresh nonces.
//   - Nonce derivation mixes the secret prefix, the message and fresh
//     randomness, so a broken random source alone does not repeat a nonce
//     across different messages.
package aggsig
