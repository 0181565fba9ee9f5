package aggsig

import (
	"errors"
	"fmt"

	"github.com/f3rmion/aggsig/commit"
	"github.com/f3rmion/aggsig/group"
)

// commitContext separates nonce commitments from any other use of the
// commitment scheme.
const commitContext = "aggsig 2024 nonce commitment v1"

// Scheme holds the group and hash functions shared by all cosigners.
// A Scheme is stateless and safe for concurrent use.
type Scheme struct {
	group     group.Group
	hasher    Hasher
	committer *commit.Scheme
}

// Mode identifies which combination scheme produced a [Share].
type Mode uint8

const (
	// ModeInteractive shares come from [Scheme.PartialSign] and share one
	// aggregated nonce point. They are combined with [Scheme.Combine].
	ModeInteractive Mode = iota + 1
	// ModeWeighted shares come from [Scheme.SignHashed], each with its own
	// nonce point. They are combined with [Scheme.CombineWeighted].
	ModeWeighted
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeWeighted:
		return "weighted"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ExpandedKeyPair is a cosigner's long-term key material.
type ExpandedKeyPair struct {
	PrivateKey group.Scalar
	Prefix     []byte // secret nonce-derivation prefix
	PublicKey  group.Point

	g group.Group
}

// Zeroize clears the private scalar and the prefix.
func (k *ExpandedKeyPair) Zeroize() {
	if k == nil {
		return
	}
	if k.g != nil {
		group.Zeroize(k.g, k.PrivateKey)
	}
	clear(k.Prefix)
}

// KeyAgg is the result of key aggregation from one party's point of view.
type KeyAgg struct {
	APK         group.Point  // aggregated public key
	Coefficient group.Scalar // this party's weighting coefficient
}

// EphemeralKey holds the secret nonce of one signing attempt and its public
// nonce point. It is consumed by [Scheme.PartialSign].
type EphemeralKey struct {
	R group.Point

	r    group.Scalar
	used bool
	g    group.Group
}

// Used reports whether the key has been consumed or cleared.
func (e *EphemeralKey) Used() bool {
	return e.used
}

// Zeroize clears the secret nonce and marks the key as used.
func (e *EphemeralKey) Zeroize() {
	if e == nil {
		return
	}
	if e.g != nil {
		group.Zeroize(e.g, e.r)
	}
	e.used = true
}

// SignFirstMsg is broadcast in round 1. It commits to the sender's nonce
// point without revealing it.
type SignFirstMsg struct {
	Commitment commit.Commitment
}

// SignSecondMsg is broadcast in round 2, after all round-1 messages have
// been received. It reveals the nonce point and the commitment blind.
type SignSecondMsg struct {
	R     group.Point
	Blind commit.Blind
}

// Signature is a Schnorr signature (R, S).
type Signature struct {
	R group.Point
	S group.Scalar
}

// Bytes returns R || S. Over the ed25519 group this is the 64-byte RFC 8032
// signature encoding.
func (sig *Signature) Bytes() []byte {
	out := make([]byte, 0, 64)
	out = append(out, sig.R.Bytes()...)
	return append(out, sig.S.Bytes()...)
}

// Share is one party's partial signature, tagged with the scheme that
// produced it.
type Share struct {
	Mode Mode
	Signature
}

// New creates a Scheme over g with the default [GroupHasher].
func New(g group.Group) (*Scheme, error) {
	return NewWithHasher(g, &GroupHasher{})
}

// NewWithHasher creates a Scheme over g with a custom hasher.
func NewWithHasher(g group.Group, h Hasher) (*Scheme, error) {
	if g == nil {
		return nil, errors.New("aggsig: group is required")
	}
	if h == nil {
		return nil, errors.New("aggsig: hasher is required")
	}
	return &Scheme{
		group:     g,
		hasher:    h,
		committer: commit.New(commitContext),
	}, nil
}

// Group returns the group the scheme operates over.
func (s *Scheme) Group() group.Group {
	return s.group
}

// NewKeyPair builds an ExpandedKeyPair from an already expanded private
// scalar and prefix, computing the public key.
func (s *Scheme) NewKeyPair(sk group.Scalar, prefix []byte) (*ExpandedKeyPair, error) {
	if sk == nil || sk.IsZero() {
		return nil, protocolErrorf("private key is zero")
	}
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return &ExpandedKeyPair{
		PrivateKey: s.group.NewScalar().Set(sk),
		Prefix:     p,
		PublicKey:  s.group.NewPoint().ScalarMult(sk, s.group.Generator()),
		g:          s.group,
	}, nil
}

func (s *Scheme) checkKeys(keys *ExpandedKeyPair) error {
	if keys == nil || keys.PrivateKey == nil || keys.PublicKey == nil {
		return protocolErrorf("missing key material")
	}
	return nil
}
