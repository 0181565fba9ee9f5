package aggsig

import (
	"github.com/f3rmion/aggsig/group"
)

// Combine sums interactive shares into the final signature (R, sum(s_i)).
//
// Every share must be a [ModeInteractive] share carrying the same nonce
// point R; otherwise Combine returns an error wrapping ErrProtocol that
// names the first offending share. Shares should be checked with
// [Scheme.VerifyShare] first, since Combine cannot tell a wrong response
// from a right one.
func (s *Scheme) Combine(shares []*Share) (*Signature, error) {
	if len(shares) == 0 {
		return nil, protocolErrorf("no shares to combine")
	}
	if err := checkShares(shares, ModeInteractive); err != nil {
		return nil, err
	}

	R := shares[0].R
	sum := s.group.NewScalar()
	for i, sh := range shares {
		if !sh.R.Equal(R) {
			return nil, protocolErrorf("share %d has a different nonce point", i)
		}
		sum = s.group.NewScalar().Add(sum, sh.S)
	}

	return &Signature{R: s.group.NewPoint().Set(R), S: sum}, nil
}

// CombineWeighted combines weighted-scheme shares. shares[i] must be the
// [Scheme.SignHashed] share of pks[i]. With h_i = H(0x01 || pk_i) it
// returns the signature (sum(h_i*R_i), sum(h_i*s_i)) and the aggregated
// key sum(h_i*pk_i) it verifies under with [Scheme.VerifyHashed].
//
// The result is forgeable without any secret key and is only meaningful
// when every share arrived from an authenticated signer.
func (s *Scheme) CombineWeighted(shares []*Share, pks []group.Point) (*Signature, group.Point, error) {
	if len(shares) == 0 {
		return nil, nil, protocolErrorf("no shares to combine")
	}
	if len(shares) != len(pks) {
		return nil, nil, protocolErrorf("%d shares but %d public keys", len(shares), len(pks))
	}
	if err := checkShares(shares, ModeWeighted); err != nil {
		return nil, nil, err
	}
	coeffs, err := s.weightedCoefficients(pks)
	if err != nil {
		return nil, nil, err
	}

	aggR := s.group.NewPoint()
	aggS := s.group.NewScalar()
	aggPK := s.group.NewPoint()
	for i, sh := range shares {
		h := coeffs[i]
		aggR = s.group.NewPoint().Add(aggR, s.group.NewPoint().ScalarMult(h, sh.R))
		aggS = s.group.NewScalar().Add(aggS, s.group.NewScalar().Mul(h, sh.S))
		aggPK = s.group.NewPoint().Add(aggPK, s.group.NewPoint().ScalarMult(h, pks[i]))
	}

	return &Signature{R: aggR, S: aggS}, aggPK, nil
}

func checkShares(shares []*Share, mode Mode) error {
	for i, sh := range shares {
		if sh == nil || sh.R == nil || sh.S == nil {
			return protocolErrorf("share %d is missing", i)
		}
		if sh.Mode != mode {
			return protocolErrorf("share %d is a %s share, want %s", i, sh.Mode, mode)
		}
	}
	return nil
}
