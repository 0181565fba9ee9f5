// Package commit implements a hiding and binding hash commitment.
//
// A commitment to value is c = BLAKE3-derive-key(context)(len(value) || value
// || len(blind) || blind) where blind is 32 fresh random bytes. Hiding
// follows from the secret blind, binding from the collision resistance of
// BLAKE3. The context string separates commitments made for different
// purposes.
package commit

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

const (
	// Size is the length of a commitment.
	Size = 32
	// BlindSize is the length of a blinding factor.
	BlindSize = 32
)

// ErrMismatch is returned by Verify when a commitment does not open to the
// revealed value.
var ErrMismatch = errors.New("commit: commitment does not open to value")

type (
	// Commitment is the public, hiding half of a commitment.
	Commitment []byte
	// Blind is the blinding factor that opens a Commitment.
	Blind []byte
)

// Validate checks the length of c.
func (c Commitment) Validate() error {
	if l := len(c); l != Size {
		return fmt.Errorf("commitment: incorrect length (got %d, expected %d)", l, Size)
	}
	return nil
}

// Validate checks the length of b.
func (b Blind) Validate() error {
	if l := len(b); l != BlindSize {
		return fmt.Errorf("blind: incorrect length (got %d, expected %d)", l, BlindSize)
	}
	return nil
}

// Scheme creates and opens commitments under a fixed context string.
type Scheme struct {
	context string
}

// New returns a Scheme whose commitments are bound to context.
func New(context string) *Scheme {
	return &Scheme{context: context}
}

// Commit returns a commitment to value and the blind needed to open it.
// The blind is read from rng, which must be a CSPRNG.
func (s *Scheme) Commit(rng io.Reader, value []byte) (Commitment, Blind, error) {
	blind := Blind(make([]byte, BlindSize))
	if _, err := io.ReadFull(rng, blind); err != nil {
		return nil, nil, fmt.Errorf("commit: failed to generate blind: %w", err)
	}
	return s.digest(value, blind), blind, nil
}

// Open reports whether c is a commitment to value under blind.
// Malformed commitments or blinds never open.
func (s *Scheme) Open(c Commitment, value []byte, blind Blind) bool {
	if c.Validate() != nil || blind.Validate() != nil {
		return false
	}
	return subtle.ConstantTimeCompare(s.digest(value, blind), c) == 1
}

// Verify is like Open but returns ErrMismatch instead of false.
func (s *Scheme) Verify(c Commitment, value []byte, blind Blind) error {
	if !s.Open(c, value, blind) {
		return ErrMismatch
	}
	return nil
}

func (s *Scheme) digest(value []byte, blind Blind) Commitment {
	h := blake3.NewDeriveKey(s.context)
	writeWithLength(h, value)
	writeWithLength(h, blind)
	return h.Sum(make([]byte, 0, Size))
}

// writeWithLength prefixes data with its length so that the boundary
// between value and blind is unambiguous.
func writeWithLength(w io.Writer, data []byte) {
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], uint64(len(data)))
	_, _ = w.Write(l[:])
	_, _ = w.Write(data)
}
