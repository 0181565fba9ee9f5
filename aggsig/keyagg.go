package aggsig

import (
	"github.com/f3rmion/aggsig/group"
)

// AggregateKeys computes the aggregated public key of pks and the weighting
// coefficient of the party at ownIndex.
//
// The coefficient of key i is h_i = H(0x01 || pk_i || pk_0 || ... || pk_{n-1})
// and the aggregated key is apk = sum(h_i * pk_i). The result depends on
// the order of pks, so all parties must agree on it.
func (s *Scheme) AggregateKeys(pks []group.Point, ownIndex int) (*KeyAgg, error) {
	if ownIndex < 0 || ownIndex >= len(pks) {
		return nil, protocolErrorf("own index %d out of range [0, %d)", ownIndex, len(pks))
	}
	coeffs, apk, err := s.KeyCoefficients(pks)
	if err != nil {
		return nil, err
	}
	return &KeyAgg{
		APK:         apk,
		Coefficient: coeffs[ownIndex],
	}, nil
}

// KeyCoefficients returns the weighting coefficient of every key in pks,
// in order, together with the aggregated public key. Coordinators use it
// to verify shares from all parties.
func (s *Scheme) KeyCoefficients(pks []group.Point) ([]group.Scalar, group.Point, error) {
	encoded, err := encodeKeys(pks)
	if err != nil {
		return nil, nil, err
	}

	coeffs := make([]group.Scalar, len(pks))
	apk := s.group.NewPoint()
	for i, pk := range pks {
		h, err := s.hasher.KeyCoefficient(s.group, encoded[i], encoded)
		if err != nil {
			return nil, nil, err
		}
		coeffs[i] = h
		apk = s.group.NewPoint().Add(apk, s.group.NewPoint().ScalarMult(h, pk))
	}
	if apk.IsIdentity() {
		return nil, nil, protocolErrorf("aggregated key is the identity")
	}
	return coeffs, apk, nil
}

// AggregateWeightedKeys computes the aggregated key of the weighted scheme,
// sum(h_i * pk_i) with h_i = H(0x01 || pk_i). It matches the key returned
// by [Scheme.CombineWeighted].
func (s *Scheme) AggregateWeightedKeys(pks []group.Point) (group.Point, error) {
	coeffs, err := s.weightedCoefficients(pks)
	if err != nil {
		return nil, err
	}
	apk := s.group.NewPoint()
	for i, pk := range pks {
		apk = s.group.NewPoint().Add(apk, s.group.NewPoint().ScalarMult(coeffs[i], pk))
	}
	return apk, nil
}

func (s *Scheme) weightedCoefficients(pks []group.Point) ([]group.Scalar, error) {
	encoded, err := encodeKeys(pks)
	if err != nil {
		return nil, err
	}
	coeffs := make([]group.Scalar, len(pks))
	for i := range pks {
		h, err := s.hasher.KeyCoefficient(s.group, encoded[i], nil)
		if err != nil {
			return nil, err
		}
		coeffs[i] = h
	}
	return coeffs, nil
}

func encodeKeys(pks []group.Point) ([][]byte, error) {
	if len(pks) == 0 {
		return nil, protocolErrorf("empty key list")
	}
	encoded := make([][]byte, len(pks))
	for i, pk := range pks {
		if pk == nil || pk.IsIdentity() {
			return nil, protocolErrorf("public key %d is missing or the identity", i)
		}
		encoded[i] = pk.Bytes()
	}
	return encoded, nil
}
