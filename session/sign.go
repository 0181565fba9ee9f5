package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/f3rmion/aggsig/aggsig"
	"go.uber.org/zap"
)

// errConsumed is returned by any use of a session after Sign or Abort.
var errConsumed = fmt.Errorf("session already consumed: %w", aggsig.ErrNonceReuse)

// SigningSession manages a single signing operation with built-in nonce safety.
// Each session can only be used once; attempting to sign twice returns an error.
//
// Create sessions using [Signer.NewSigningSession].
type SigningSession struct {
	mu      sync.Mutex
	signer  *Signer
	message []byte
	eph     *aggsig.EphemeralKey
	first   *aggsig.SignFirstMsg
	second  *aggsig.SignSecondMsg

	// firsts is recorded when the nonce point is revealed; the nonce is
	// aggregated against these commitments only.
	firsts   []*aggsig.SignFirstMsg
	consumed bool
}

// NewSigningSession creates a new signing session for the given message.
//
// This derives a fresh nonce internally. The session must be used exactly
// once - calling Sign a second time will return an error.
func (s *Signer) NewSigningSession(rng io.Reader, message []byte) (*SigningSession, error) {
	eph, first, second, err := s.scheme.Commit(rng, s.keys, message)
	if err != nil {
		return nil, err
	}

	// Copy message to prevent external modification
	msgCopy := make([]byte, len(message))
	copy(msgCopy, message)

	s.log.Debug("signing session started", zap.Int("msg_len", len(message)))
	return &SigningSession{
		signer:  s,
		message: msgCopy,
		eph:     eph,
		first:   first,
		second:  second,
	}, nil
}

// FirstMessage returns the nonce commitment that must be broadcast to the
// other signers.
func (s *SigningSession) FirstMessage() *aggsig.SignFirstMsg {
	return s.first
}

// Message returns the message being signed.
func (s *SigningSession) Message() []byte {
	return s.message
}

// SecondMessage releases this signer's nonce reveal.
//
// firsts must hold the round-1 message of every cosigner, in key order and
// including this signer's own. The reveal is only released once all
// commitments are present, and the commitments are recorded: Sign opens
// exactly these.
func (s *SigningSession) SecondMessage(firsts []*aggsig.SignFirstMsg) (*aggsig.SignSecondMsg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumed {
		return nil, errConsumed
	}
	if s.firsts != nil {
		return s.second, nil
	}
	if len(firsts) != s.signer.Size() {
		return nil, fmt.Errorf("expected %d commitments, got %d", s.signer.Size(), len(firsts))
	}
	for i, f := range firsts {
		if f == nil {
			return nil, fmt.Errorf("missing commitment from signer %d", i)
		}
	}
	if !bytes.Equal(firsts[s.signer.index].Commitment, s.first.Commitment) {
		return nil, errors.New("own commitment not found in commitment list")
	}

	s.firsts = make([]*aggsig.SignFirstMsg, len(firsts))
	copy(s.firsts, firsts)
	s.signer.log.Debug("nonce revealed")
	return s.second, nil
}

// Sign produces a signature share for this session.
//
// The seconds slice must contain the round-2 message of every cosigner, in
// key order and including this signer's own. Every reveal is checked
// against the commitments recorded by SecondMessage before signing.
//
// This method consumes the session. Calling Sign a second time returns
// an error to prevent nonce reuse, which would compromise security.
//
// After Sign returns (successfully or not), the internal nonce is zeroed.
func (s *SigningSession) Sign(seconds []*aggsig.SignSecondMsg) (*aggsig.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumed {
		return nil, errConsumed
	}
	if s.firsts == nil {
		return nil, errors.New("nonce not revealed: call SecondMessage first")
	}

	// Mark as consumed immediately, before any operations that might fail
	s.consumed = true

	// Ensure the nonce is zeroed after this call, regardless of success
	defer s.zeroNonce()

	signer := s.signer
	if len(seconds) != len(s.firsts) {
		return nil, fmt.Errorf("expected %d reveals, got %d", len(s.firsts), len(seconds))
	}
	if own := seconds[signer.index]; own == nil || own.R == nil || !own.R.Equal(s.second.R) {
		return nil, errors.New("own reveal not found in reveal list")
	}

	rTot, err := signer.scheme.AggregateNonces(s.firsts, seconds)
	if err != nil {
		signer.log.Warn("nonce aggregation failed, aborting session", zap.Error(err))
		return nil, err
	}

	share, err := signer.scheme.PartialSign(s.eph, signer.keys, signer.agg.Coefficient, rTot, signer.agg.APK, s.message)
	if err != nil {
		return nil, err
	}
	signer.log.Debug("share produced")
	return share, nil
}

// Abort consumes the session without signing and zeroes the nonce. Use it
// when a peer misbehaves; start again with a new session.
func (s *SigningSession) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumed = true
	s.zeroNonce()
}

// zeroNonce zeroes out the secret nonce to prevent accidental reuse.
func (s *SigningSession) zeroNonce() {
	if s.eph == nil {
		return
	}
	s.eph.Zeroize()
	s.eph = nil
}

// IsConsumed returns true if this session has already been used for signing.
func (s *SigningSession) IsConsumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}
