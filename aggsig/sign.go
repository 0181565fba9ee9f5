package aggsig

import (
	"github.com/f3rmion/aggsig/group"
)

// PartialSign computes this party's share of the signature on msg.
//
// a is the party's coefficient from [Scheme.AggregateKeys], rTot the
// aggregated nonce from [Scheme.AggregateNonces] and apk the aggregated
// public key. The share is s = r + k*sk*a with k = H(rTot || apk || msg).
//
// The ephemeral key is cleared and marked used before PartialSign returns,
// whether or not signing succeeds. Passing it again returns ErrNonceReuse.
func (s *Scheme) PartialSign(
	eph *EphemeralKey,
	keys *ExpandedKeyPair,
	a group.Scalar,
	rTot, apk group.Point,
	msg []byte,
) (*Share, error) {
	if eph == nil {
		return nil, protocolErrorf("missing ephemeral key")
	}
	if eph.used || eph.r == nil {
		return nil, ErrNonceReuse
	}
	defer eph.Zeroize()

	if err := s.checkKeys(keys); err != nil {
		return nil, err
	}
	if a == nil || rTot == nil || apk == nil {
		return nil, protocolErrorf("missing coefficient, nonce or aggregated key")
	}

	k, err := s.hasher.Challenge(s.group, rTot.Bytes(), apk.Bytes(), msg)
	if err != nil {
		return nil, err
	}

	ska := s.group.NewScalar().Mul(keys.PrivateKey, a) // sk * a
	defer group.Zeroize(s.group, ska)
	kska := s.group.NewScalar().Mul(k, ska) // k * sk * a
	defer group.Zeroize(s.group, kska)
	sum := s.group.NewScalar().Add(eph.r, kska) // r + k*sk*a

	return &Share{
		Mode: ModeInteractive,
		Signature: Signature{
			R: s.group.NewPoint().Set(rTot),
			S: sum,
		},
	}, nil
}

// SignSingle produces an ordinary single-signer signature with the
// deterministic nonce r = H(prefix || msg). Over the ed25519 group this is
// RFC 8032 Ed25519.
func (s *Scheme) SignSingle(keys *ExpandedKeyPair, msg []byte) (*Signature, error) {
	if err := s.checkKeys(keys); err != nil {
		return nil, err
	}
	r, err := s.hasher.SoloNonce(s.group, keys.Prefix, msg)
	if err != nil {
		return nil, err
	}
	defer group.Zeroize(s.group, r)
	R := s.group.NewPoint().ScalarMult(r, s.group.Generator())

	k, err := s.hasher.Challenge(s.group, R.Bytes(), keys.PublicKey.Bytes(), msg)
	if err != nil {
		return nil, err
	}
	return &Signature{R: R, S: s.response(r, k, keys.PrivateKey)}, nil
}

// SignHashed produces a share for the weighted scheme. The nonce is
// r = H(prefix || msg) and the challenge k = H(msg) does not depend on any
// key, so shares can be produced without interaction and combined with
// [Scheme.CombineWeighted].
//
// Such shares are forgeable without the private key (see
// [Scheme.VerifyHashed]). Accept them only from authenticated signers.
func (s *Scheme) SignHashed(keys *ExpandedKeyPair, msg []byte) (*Share, error) {
	if err := s.checkKeys(keys); err != nil {
		return nil, err
	}
	r, err := s.hasher.SoloNonce(s.group, keys.Prefix, msg)
	if err != nil {
		return nil, err
	}
	defer group.Zeroize(s.group, r)
	R := s.group.NewPoint().ScalarMult(r, s.group.Generator())

	k, err := s.hasher.MessageChallenge(s.group, msg)
	if err != nil {
		return nil, err
	}
	return &Share{
		Mode:      ModeWeighted,
		Signature: Signature{R: R, S: s.response(r, k, keys.PrivateKey)},
	}, nil
}

// response computes r + k*sk.
func (s *Scheme) response(r, k, sk group.Scalar) group.Scalar {
	ksk := s.group.NewScalar().Mul(k, sk)
	defer group.Zeroize(s.group, ksk)
	return s.group.NewScalar().Add(r, ksk)
}
