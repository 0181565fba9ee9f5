package aggsig

import (
	"fmt"

	"github.com/f3rmion/aggsig/group"
)

// VerifyShare checks one party's interactive share before combination.
//
// a is the party's coefficient, partialR its revealed nonce point and
// partialPK its public key; apk is the aggregated key. The check is
// s*G == a*k*partialPK + partialR with k = H(share.R || apk || msg).
// Failure returns an error wrapping ErrProof.
func (s *Scheme) VerifyShare(
	share *Share,
	msg []byte,
	a group.Scalar,
	partialR, partialPK, apk group.Point,
) error {
	if share == nil || share.R == nil || share.S == nil {
		return protocolErrorf("missing share")
	}
	if share.Mode != ModeInteractive {
		return protocolErrorf("cannot verify %s share as interactive", share.Mode)
	}
	if a == nil || partialR == nil || partialPK == nil || apk == nil {
		return protocolErrorf("missing coefficient, nonce point or key")
	}

	k, err := s.hasher.Challenge(s.group, share.R.Bytes(), apk.Bytes(), msg)
	if err != nil {
		return err
	}

	// Check: s*G == a*k*pk + R_i
	lhs := s.group.NewPoint().ScalarMult(share.S, s.group.Generator())

	ak := s.group.NewScalar().Mul(a, k)
	rhs := s.group.NewPoint().ScalarMult(ak, partialPK)
	rhs = s.group.NewPoint().Add(rhs, partialR)

	if !lhs.Equal(rhs) {
		return ErrProof
	}
	return nil
}

// Verify checks a signature under pk with the challenge H(R || pk || msg).
// It accepts both combined interactive signatures under the aggregated key
// and [Scheme.SignSingle] signatures.
func (s *Scheme) Verify(sig *Signature, msg []byte, pk group.Point) error {
	if err := checkSignature(sig, pk); err != nil {
		return err
	}
	k, err := s.hasher.Challenge(s.group, sig.R.Bytes(), pk.Bytes(), msg)
	if err != nil {
		return err
	}
	return s.verifyWith(sig, k, pk)
}

// VerifyHashed checks a weighted-scheme signature, whose challenge is
// H(msg), under the key returned by [Scheme.CombineWeighted]. It also
// accepts a single [Scheme.SignHashed] share under the signer's own key.
//
// The check is only algebraic. Since k does not depend on R or pk, anyone
// can forge a signature that passes it without a secret key; success does
// not authenticate the signer.
func (s *Scheme) VerifyHashed(sig *Signature, msg []byte, pk group.Point) error {
	if err := checkSignature(sig, pk); err != nil {
		return err
	}
	k, err := s.hasher.MessageChallenge(s.group, msg)
	if err != nil {
		return err
	}
	return s.verifyWith(sig, k, pk)
}

func (s *Scheme) verifyWith(sig *Signature, k group.Scalar, pk group.Point) error {
	// Check: S*G == R + k*pk
	lhs := s.group.NewPoint().ScalarMult(sig.S, s.group.Generator())

	kY := s.group.NewPoint().ScalarMult(k, pk)
	rhs := s.group.NewPoint().Add(sig.R, kY)

	if !lhs.Equal(rhs) {
		return ErrProof
	}
	return nil
}

func checkSignature(sig *Signature, pk group.Point) error {
	if sig == nil || sig.R == nil || sig.S == nil {
		return fmt.Errorf("%w: missing signature", ErrProof)
	}
	if pk == nil {
		return protocolErrorf("missing public key")
	}
	return nil
}
