package aggsig

import (
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/f3rmion/aggsig/group"
)

// SeedSize is the size of a private key seed.
const SeedSize = 32

// ExpandSeed derives the key pair for a secret seed. Groups implementing
// [group.KeyExpander] use their standard expansion (RFC 8032 for
// ed25519). Other groups hash the seed with SHA-512 and use the first half
// as private scalar input and the second half as the nonce prefix.
func (s *Scheme) ExpandSeed(seed []byte) (*ExpandedKeyPair, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("aggsig: invalid seed length %d", len(seed))
	}

	var (
		sk     group.Scalar
		prefix []byte
		err    error
	)
	if ke, ok := s.group.(group.KeyExpander); ok {
		sk, prefix, err = ke.ExpandSeed(seed)
		if err != nil {
			return nil, fmt.Errorf("aggsig: expand seed: %w", err)
		}
	} else {
		digest := sha512.Sum512(seed)
		defer clear(digest[:])
		sk, err = s.group.HashToScalar(digest[:32])
		if err != nil {
			return nil, fmt.Errorf("aggsig: expand seed: %w", err)
		}
		prefix = make([]byte, 32)
		copy(prefix, digest[32:])
	}
	defer group.Zeroize(s.group, sk)
	defer clear(prefix)

	return s.NewKeyPair(sk, prefix)
}

// GenerateKey draws a fresh seed from rng and expands it. The seed is
// returned so the caller can store it; it is the only secret needed to
// recover the key pair.
func (s *Scheme) GenerateKey(rng io.Reader) (*ExpandedKeyPair, []byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, nil, fmt.Errorf("aggsig: read seed: %w", err)
	}
	keys, err := s.ExpandSeed(seed)
	if err != nil {
		clear(seed)
		return nil, nil, err
	}
	return keys, seed, nil
}
