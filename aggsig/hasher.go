package aggsig

import (
	"github.com/f3rmion/aggsig/group"
	"golang.org/x/crypto/blake2b"
)

// Domain tags used by [GroupHasher].
const (
	tagKeyCoefficient byte = 0x01
	tagNonce          byte = 0x02
)

// Hasher defines the hash operations required by the signing protocol.
// Different implementations can provide different hash functions
// and domain separation schemes.
type Hasher interface {
	// KeyCoefficient computes the weight of the encoded key pk. keySet is
	// the ordered list of every encoded key for interactive aggregation and
	// nil for the weighted scheme.
	KeyCoefficient(g group.Group, pk []byte, keySet [][]byte) (group.Scalar, error)

	// Challenge computes the Schnorr challenge.
	// Inputs: nonce point R, aggregated public key, message.
	Challenge(g group.Group, R, apk, msg []byte) (group.Scalar, error)

	// Nonce derives a signing nonce from the secret prefix, the message and
	// fresh randomness.
	Nonce(g group.Group, prefix, msg, random []byte) (group.Scalar, error)

	// SoloNonce derives the deterministic nonce of a single-signer
	// signature.
	SoloNonce(g group.Group, prefix, msg []byte) (group.Scalar, error)

	// MessageChallenge computes the challenge of the weighted scheme, which
	// depends on the message only.
	MessageChallenge(g group.Group, msg []byte) (group.Scalar, error)
}

// GroupHasher implements Hasher on top of the group's own HashToScalar.
// This is the default hasher. Over the ed25519 group the challenge is the
// RFC 8032 challenge SHA-512(R || A || M), so combined signatures are
// ordinary Ed25519 signatures.
type GroupHasher struct{}

// KeyCoefficient implements Hasher.KeyCoefficient.
func (h *GroupHasher) KeyCoefficient(g group.Group, pk []byte, keySet [][]byte) (group.Scalar, error) {
	data := make([][]byte, 0, len(keySet)+2)
	data = append(data, []byte{tagKeyCoefficient}, pk)
	data = append(data, keySet...)
	return g.HashToScalar(data...)
}

// Challenge implements Hasher.Challenge.
func (h *GroupHasher) Challenge(g group.Group, R, apk, msg []byte) (group.Scalar, error) {
	return g.HashToScalar(R, apk, msg)
}

// Nonce implements Hasher.Nonce.
func (h *GroupHasher) Nonce(g group.Group, prefix, msg, random []byte) (group.Scalar, error) {
	return g.HashToScalar([]byte{tagNonce}, prefix, msg, random)
}

// SoloNonce implements Hasher.SoloNonce.
func (h *GroupHasher) SoloNonce(g group.Group, prefix, msg []byte) (group.Scalar, error) {
	return g.HashToScalar(prefix, msg)
}

// MessageChallenge implements Hasher.MessageChallenge.
func (h *GroupHasher) MessageChallenge(g group.Group, msg []byte) (group.Scalar, error) {
	return g.HashToScalar(msg)
}

// Blake2bHasher implements Hasher using Blake2b-512 with domain separation.
// Signatures produced with it do not verify as RFC 8032 Ed25519.
//
// Domain separation format: prefix + tag + input. The 64-byte digest is
// mapped to a scalar with the group's HashToScalar.
type Blake2bHasher struct {
	// Prefix is the domain separation prefix.
	// Default: "AGGSIG-BLAKE2B512-v1"
	Prefix string
}

// NewBlake2bHasher creates a Blake2bHasher with the default prefix.
func NewBlake2bHasher() *Blake2bHasher {
	return &Blake2bHasher{
		Prefix: "AGGSIG-BLAKE2B512-v1",
	}
}

func (h *Blake2bHasher) hash(tag string, data ...[]byte) []byte {
	hasher, _ := blake2b.New512(nil)
	hasher.Write([]byte(h.Prefix))
	hasher.Write([]byte(tag))
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

func (h *Blake2bHasher) hashToScalar(g group.Group, tag string, data ...[]byte) (group.Scalar, error) {
	digest := h.hash(tag, data...)
	defer clear(digest)
	return g.HashToScalar(digest)
}

// KeyCoefficient implements Hasher.KeyCoefficient.
func (h *Blake2bHasher) KeyCoefficient(g group.Group, pk []byte, keySet [][]byte) (group.Scalar, error) {
	data := make([][]byte, 0, len(keySet)+1)
	data = append(data, pk)
	data = append(data, keySet...)
	return h.hashToScalar(g, "keyagg", data...)
}

// Challenge implements Hasher.Challenge.
func (h *Blake2bHasher) Challenge(g group.Group, R, apk, msg []byte) (group.Scalar, error) {
	return h.hashToScalar(g, "chal", R, apk, msg)
}

// Nonce implements Hasher.Nonce.
func (h *Blake2bHasher) Nonce(g group.Group, prefix, msg, random []byte) (group.Scalar, error) {
	return h.hashToScalar(g, "nonce", prefix, msg, random)
}

// SoloNonce implements Hasher.SoloNonce.
func (h *Blake2bHasher) SoloNonce(g group.Group, prefix, msg []byte) (group.Scalar, error) {
	return h.hashToScalar(g, "solo", prefix, msg)
}

// MessageChallenge implements Hasher.MessageChallenge.
func (h *Blake2bHasher) MessageChallenge(g group.Group, msg []byte) (group.Scalar, error) {
	return h.hashToScalar(g, "msg", msg)
}
