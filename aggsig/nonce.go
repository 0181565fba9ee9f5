package aggsig

import (
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/aggsig/group"
)

// nonceRandomSize is the number of fresh random bytes mixed into each nonce.
const nonceRandomSize = 32

// Commit starts a signing attempt. It derives the nonce
// r = H(0x02 || prefix || msg || random), computes R = r*G and commits to
// the encoding of R.
//
// The first message is broadcast immediately. The second message must be
// withheld until every party's first message has been received. A failure
// to read from rng is returned as an error.
func (s *Scheme) Commit(rng io.Reader, keys *ExpandedKeyPair, msg []byte) (*EphemeralKey, *SignFirstMsg, *SignSecondMsg, error) {
	if err := s.checkKeys(keys); err != nil {
		return nil, nil, nil, err
	}

	var random [nonceRandomSize]byte
	defer clear(random[:])
	if _, err := io.ReadFull(rng, random[:]); err != nil {
		return nil, nil, nil, fmt.Errorf("aggsig: read nonce randomness: %w", err)
	}

	r, err := s.hasher.Nonce(s.group, keys.Prefix, msg, random[:])
	if err != nil {
		return nil, nil, nil, err
	}
	if r.IsZero() {
		return nil, nil, nil, errors.New("aggsig: derived nonce is zero")
	}
	R := s.group.NewPoint().ScalarMult(r, s.group.Generator())

	c, blind, err := s.committer.Commit(rng, R.Bytes())
	if err != nil {
		group.Zeroize(s.group, r)
		return nil, nil, nil, fmt.Errorf("aggsig: commit nonce: %w", err)
	}

	eph := &EphemeralKey{R: R, r: r, g: s.group}
	return eph, &SignFirstMsg{Commitment: c}, &SignSecondMsg{R: R, Blind: blind}, nil
}

// VerifyReveal checks that second opens the commitment in first. Any
// mismatch or malformed message returns an error wrapping ErrCommitment.
func (s *Scheme) VerifyReveal(first *SignFirstMsg, second *SignSecondMsg) error {
	if first == nil || second == nil || second.R == nil {
		return fmt.Errorf("%w: missing message", ErrCommitment)
	}
	if err := first.Commitment.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitment, err)
	}
	if err := second.Blind.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitment, err)
	}
	if second.R.IsIdentity() {
		return fmt.Errorf("%w: nonce point is the identity", ErrCommitment)
	}
	if !s.committer.Open(first.Commitment, second.R.Bytes(), second.Blind) {
		return ErrCommitment
	}
	return nil
}

// AggregateNonces opens every commitment and returns the sum of the
// revealed nonce points. firsts[i] and seconds[i] must come from the same
// party. If any reveal fails, no aggregate is returned.
func (s *Scheme) AggregateNonces(firsts []*SignFirstMsg, seconds []*SignSecondMsg) (group.Point, error) {
	if len(firsts) == 0 {
		return nil, protocolErrorf("no nonce commitments")
	}
	if len(firsts) != len(seconds) {
		return nil, protocolErrorf("%d commitments but %d reveals", len(firsts), len(seconds))
	}

	rTot := s.group.NewPoint()
	for i := range firsts {
		if err := s.VerifyReveal(firsts[i], seconds[i]); err != nil {
			return nil, fmt.Errorf("party %d: %w", i, err)
		}
		rTot = s.group.NewPoint().Add(rTot, seconds[i].R)
	}
	if rTot.IsIdentity() {
		return nil, protocolErrorf("aggregated nonce is the identity")
	}
	return rTot, nil
}
