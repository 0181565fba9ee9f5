package session

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/bjj"
	"github.com/f3rmion/aggsig/ed25519"
	"github.com/f3rmion/aggsig/group"
	"go.uber.org/zap/zaptest"
)

// cosigners holds the long-term state of a local signing group.
type cosigners struct {
	scheme  *aggsig.Scheme
	keys    []*aggsig.ExpandedKeyPair
	pks     []group.Point
	signers []*Signer
}

func newCosigners(t *testing.T, g group.Group, n int) *cosigners {
	t.Helper()
	scheme, err := aggsig.New(g)
	if err != nil {
		t.Fatal(err)
	}

	c := &cosigners{
		scheme:  scheme,
		keys:    make([]*aggsig.ExpandedKeyPair, n),
		pks:     make([]group.Point, n),
		signers: make([]*Signer, n),
	}
	for i := range n {
		k, _, err := scheme.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("failed to generate key %d: %v", i, err)
		}
		c.keys[i] = k
		c.pks[i] = k.PublicKey
	}
	for i := range n {
		s, err := NewSigner(scheme, c.keys[i], c.pks, i, WithLogger(zaptest.NewLogger(t)))
		if err != nil {
			t.Fatalf("failed to create signer %d: %v", i, err)
		}
		c.signers[i] = s
	}
	return c
}

// transcript is the public record of one signing round.
type transcript struct {
	firsts  []*aggsig.SignFirstMsg
	seconds []*aggsig.SignSecondMsg
	shares  []*aggsig.Share
}

func (c *cosigners) sign(t *testing.T, message []byte) *transcript {
	t.Helper()
	n := len(c.signers)
	tr := &transcript{
		firsts:  make([]*aggsig.SignFirstMsg, n),
		seconds: make([]*aggsig.SignSecondMsg, n),
		shares:  make([]*aggsig.Share, n),
	}

	sessions := make([]*SigningSession, n)
	for i, s := range c.signers {
		sess, err := s.NewSigningSession(rand.Reader, message)
		if err != nil {
			t.Fatalf("signer %d failed to create session: %v", i, err)
		}
		sessions[i] = sess
		tr.firsts[i] = sess.FirstMessage()
	}
	for i, sess := range sessions {
		second, err := sess.SecondMessage(tr.firsts)
		if err != nil {
			t.Fatalf("signer %d failed to reveal: %v", i, err)
		}
		tr.seconds[i] = second
	}
	for i, sess := range sessions {
		share, err := sess.Sign(tr.seconds)
		if err != nil {
			t.Fatalf("signer %d failed to sign: %v", i, err)
		}
		tr.shares[i] = share
	}
	return tr
}

func TestSessionSign(t *testing.T) {
	groups := map[string]group.Group{
		"ed25519": &ed25519.Ed25519{},
		"bjj":     &bjj.BJJ{},
	}
	for name, g := range groups {
		t.Run(name, func(t *testing.T) {
			c := newCosigners(t, g, 3)
			message := []byte("hello session API")
			tr := c.sign(t, message)

			coord, err := NewCoordinator(c.scheme, c.pks, WithLogger(zaptest.NewLogger(t)))
			if err != nil {
				t.Fatal(err)
			}
			if !coord.AggregatedKey().Equal(c.signers[0].AggregatedKey()) {
				t.Fatal("coordinator and signers disagree on the aggregated key")
			}

			sig, err := coord.Combine(context.Background(), message, tr.firsts, tr.seconds, tr.shares)
			if err != nil {
				t.Fatalf("failed to combine: %v", err)
			}
			if err := coord.Verify(message, sig); err != nil {
				t.Error("signature verification failed")
			}
			if err := coord.Verify([]byte("wrong message"), sig); err == nil {
				t.Error("signature should not verify with wrong message")
			}
		})
	}
}

func TestNonceReusePrevention(t *testing.T) {
	c := newCosigners(t, &ed25519.Ed25519{}, 1)

	message := []byte("test nonce reuse")
	sess, err := c.signers[0].NewSigningSession(rand.Reader, message)
	if err != nil {
		t.Fatal(err)
	}
	firsts := []*aggsig.SignFirstMsg{sess.FirstMessage()}
	second, err := sess.SecondMessage(firsts)
	if err != nil {
		t.Fatal(err)
	}
	seconds := []*aggsig.SignSecondMsg{second}

	// First sign should succeed
	if _, err := sess.Sign(seconds); err != nil {
		t.Fatalf("first sign failed: %v", err)
	}

	// Second sign should fail (nonce reuse prevention)
	_, err = sess.Sign(seconds)
	if !errors.Is(err, aggsig.ErrNonceReuse) {
		t.Errorf("second sign should fail with ErrNonceReuse, got %v", err)
	}
	if _, err := sess.SecondMessage(firsts); err == nil {
		t.Error("consumed session should not reveal again")
	}

	if !sess.IsConsumed() {
		t.Error("session should be marked as consumed")
	}
}

func TestRoundOrdering(t *testing.T) {
	c := newCosigners(t, &ed25519.Ed25519{}, 2)
	message := []byte("round ordering")

	sess0, _ := c.signers[0].NewSigningSession(rand.Reader, message)
	sess1, _ := c.signers[1].NewSigningSession(rand.Reader, message)

	t.Run("SignBeforeReveal", func(t *testing.T) {
		s, _ := c.signers[0].NewSigningSession(rand.Reader, message)
		if _, err := s.Sign(nil); err == nil {
			t.Error("should not sign before the reveal round")
		}
		if s.IsConsumed() {
			t.Error("a rejected out-of-order call should not consume the session")
		}
	})

	t.Run("RevealNeedsAllCommitments", func(t *testing.T) {
		_, err := sess0.SecondMessage([]*aggsig.SignFirstMsg{sess0.FirstMessage()})
		if err == nil {
			t.Error("should not reveal with missing commitments")
		}
		_, err = sess0.SecondMessage([]*aggsig.SignFirstMsg{sess0.FirstMessage(), nil})
		if err == nil {
			t.Error("should not reveal with a nil commitment")
		}
	})

	t.Run("MissingOwnCommitment", func(t *testing.T) {
		// Own commitment at the wrong position
		wrong := []*aggsig.SignFirstMsg{sess1.FirstMessage(), sess0.FirstMessage()}
		if _, err := sess0.SecondMessage(wrong); err == nil {
			t.Error("should fail when own commitment is missing")
		}
	})

	t.Run("MissingOwnReveal", func(t *testing.T) {
		firsts := []*aggsig.SignFirstMsg{sess0.FirstMessage(), sess1.FirstMessage()}
		second0, err := sess0.SecondMessage(firsts)
		if err != nil {
			t.Fatal(err)
		}
		second1, err := sess1.SecondMessage(firsts)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := sess0.Sign([]*aggsig.SignSecondMsg{second1, second0}); err == nil {
			t.Error("should fail when own reveal is missing")
		}
		if !sess0.IsConsumed() {
			t.Error("a failed Sign must consume the session")
		}
	})
}

func TestCommitmentSubstitution(t *testing.T) {
	c := newCosigners(t, &ed25519.Ed25519{}, 2)
	message := []byte("substitution")

	sess0, _ := c.signers[0].NewSigningSession(rand.Reader, message)
	sess1, _ := c.signers[1].NewSigningSession(rand.Reader, message)
	firsts := []*aggsig.SignFirstMsg{sess0.FirstMessage(), sess1.FirstMessage()}

	second0, err := sess0.SecondMessage(firsts)
	if err != nil {
		t.Fatal(err)
	}

	// Signer 1 sees signer 0's nonce and reveals a nonce from a different
	// session, whose commitment signer 0 never saw.
	other, _ := c.signers[1].NewSigningSession(rand.Reader, message)
	forged, err := other.SecondMessage([]*aggsig.SignFirstMsg{sess0.FirstMessage(), other.FirstMessage()})
	if err != nil {
		t.Fatal(err)
	}

	_, err = sess0.Sign([]*aggsig.SignSecondMsg{second0, forged})
	if !errors.Is(err, aggsig.ErrCommitment) {
		t.Errorf("expected ErrCommitment, got %v", err)
	}
	if !sess0.IsConsumed() {
		t.Error("session must be consumed after a failed opening")
	}
}

func TestAbort(t *testing.T) {
	c := newCosigners(t, &bjj.BJJ{}, 1)
	sess, err := c.signers[0].NewSigningSession(rand.Reader, []byte("abort"))
	if err != nil {
		t.Fatal(err)
	}
	sess.Abort()
	if !sess.IsConsumed() {
		t.Error("aborted session should be consumed")
	}
	if _, err := sess.SecondMessage([]*aggsig.SignFirstMsg{sess.FirstMessage()}); err == nil {
		t.Error("aborted session should not reveal")
	}
}

func TestCoordinatorAttribution(t *testing.T) {
	c := newCosigners(t, &ed25519.Ed25519{}, 3)
	message := []byte("attribution")
	tr := c.sign(t, message)

	coord, err := NewCoordinator(c.scheme, c.pks)
	if err != nil {
		t.Fatal(err)
	}
	if err := coord.VerifyShares(context.Background(), message, tr.firsts, tr.seconds, tr.shares); err != nil {
		t.Fatalf("honest round rejected: %v", err)
	}

	t.Run("BadShare", func(t *testing.T) {
		g := c.scheme.Group()
		one, _ := g.HashToScalar([]byte("one"))
		bad := *tr.shares[1]
		bad.S = g.NewScalar().Add(bad.S, one)
		shares := []*aggsig.Share{tr.shares[0], &bad, tr.shares[2]}

		_, err := coord.Combine(context.Background(), message, tr.firsts, tr.seconds, shares)
		var shareErr *ShareError
		if !errors.As(err, &shareErr) {
			t.Fatalf("expected *ShareError, got %v", err)
		}
		if shareErr.Index != 1 {
			t.Errorf("blamed signer %d, want 1", shareErr.Index)
		}
		if !errors.Is(err, aggsig.ErrProof) {
			t.Errorf("expected ErrProof, got %v", err)
		}
	})

	t.Run("SharesFromAnotherRound", func(t *testing.T) {
		other := c.sign(t, message)
		shares := []*aggsig.Share{tr.shares[0], tr.shares[1], other.shares[2]}

		err := coord.VerifyShares(context.Background(), message, tr.firsts, tr.seconds, shares)
		var shareErr *ShareError
		if !errors.As(err, &shareErr) || shareErr.Index != 2 {
			t.Fatalf("expected fault at signer 2, got %v", err)
		}
		if !errors.Is(err, aggsig.ErrProtocol) {
			t.Errorf("expected ErrProtocol, got %v", err)
		}
	})

	t.Run("BadReveal", func(t *testing.T) {
		seconds := []*aggsig.SignSecondMsg{tr.seconds[0], tr.seconds[2], tr.seconds[1]}
		err := coord.VerifyShares(context.Background(), message, tr.firsts, seconds, tr.shares)
		var shareErr *ShareError
		if !errors.As(err, &shareErr) || shareErr.Index != 1 {
			t.Fatalf("expected fault at signer 1, got %v", err)
		}
		if !errors.Is(err, aggsig.ErrCommitment) {
			t.Errorf("expected ErrCommitment, got %v", err)
		}
	})

	t.Run("WrongCount", func(t *testing.T) {
		err := coord.VerifyShares(context.Background(), message, tr.firsts, tr.seconds, tr.shares[:2])
		if !errors.Is(err, aggsig.ErrProtocol) {
			t.Errorf("expected ErrProtocol, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := coord.VerifyShares(ctx, message, tr.firsts, tr.seconds, tr.shares)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSignerValidation(t *testing.T) {
	c := newCosigners(t, &bjj.BJJ{}, 3)

	if _, err := NewSigner(c.scheme, c.keys[0], c.pks, 1); err == nil {
		t.Error("should reject a key pair at the wrong index")
	}
	if _, err := NewSigner(c.scheme, c.keys[0], c.pks, 3); err == nil {
		t.Error("should reject an index out of range")
	}
	if _, err := NewSigner(nil, c.keys[0], c.pks, 0); err == nil {
		t.Error("should reject a nil scheme")
	}
	if _, err := NewCoordinator(c.scheme, nil); err == nil {
		t.Error("coordinator should reject an empty key list")
	}

	s := c.signers[2]
	if s.Index() != 2 || s.Size() != 3 {
		t.Errorf("unexpected signer position %d/%d", s.Index(), s.Size())
	}
	if s.Scheme() != c.scheme {
		t.Error("signer should expose its scheme")
	}
	if !s.KeyAgg().APK.Equal(s.AggregatedKey()) {
		t.Error("key aggregation and aggregated key differ")
	}
}

func TestQuickSign(t *testing.T) {
	c := newCosigners(t, &ed25519.Ed25519{}, 4)
	message := []byte("quick sign test")

	sig, apk, err := QuickSign(c.scheme, rand.Reader, c.keys, message)
	if err != nil {
		t.Fatalf("QuickSign failed: %v", err)
	}
	if !apk.Equal(c.signers[0].AggregatedKey()) {
		t.Error("QuickSign returned a different aggregated key")
	}
	if err := c.scheme.Verify(sig, message, apk); err != nil {
		t.Error("signature verification failed")
	}

	if _, _, err := QuickSign(c.scheme, rand.Reader, nil, message); err == nil {
		t.Error("should fail with no key pairs")
	}
}

func TestWeighted(t *testing.T) {
	scheme, err := aggsig.New(&bjj.BJJ{})
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("weighted session")

	signers := make([]*WeightedSigner, 3)
	pks := make([]group.Point, 3)
	shares := make([]*aggsig.Share, 3)
	for i := range signers {
		keys, _, err := scheme.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		signers[i], err = NewWeightedSigner(scheme, keys, WithLogger(zaptest.NewLogger(t)))
		if err != nil {
			t.Fatal(err)
		}
		pks[i] = signers[i].PublicKey()
		shares[i], err = signers[i].Sign(message)
		if err != nil {
			t.Fatal(err)
		}
	}

	sig, apk, err := CombineWeighted(scheme, message, shares, pks)
	if err != nil {
		t.Fatalf("CombineWeighted failed: %v", err)
	}
	if err := scheme.VerifyHashed(sig, message, apk); err != nil {
		t.Error("weighted signature verification failed")
	}

	t.Run("WrongSigner", func(t *testing.T) {
		swapped := []*aggsig.Share{shares[0], shares[2], shares[1]}
		_, _, err := CombineWeighted(scheme, message, swapped, pks)
		var shareErr *ShareError
		if !errors.As(err, &shareErr) || shareErr.Index != 1 {
			t.Fatalf("expected fault at signer 1, got %v", err)
		}
	})

	t.Run("ForgedShareNotDetected", func(t *testing.T) {
		// Share checks are algebraic only: a share built without signer 2's
		// private key still combines.
		g := scheme.Group()
		S, err := g.RandomScalar(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		k, err := (&aggsig.GroupHasher{}).MessageChallenge(g, message)
		if err != nil {
			t.Fatal(err)
		}
		R := g.NewPoint().Sub(
			g.NewPoint().ScalarMult(S, g.Generator()),
			g.NewPoint().ScalarMult(k, pks[2]),
		)
		forged := &aggsig.Share{Mode: aggsig.ModeWeighted, Signature: aggsig.Signature{R: R, S: S}}

		sig, apk, err := CombineWeighted(scheme, message, []*aggsig.Share{shares[0], shares[1], forged}, pks)
		if err != nil {
			t.Fatalf("forged share rejected: %v", err)
		}
		if err := scheme.VerifyHashed(sig, message, apk); err != nil {
			t.Errorf("combined signature should verify: %v", err)
		}
	})

	t.Run("InteractiveShare", func(t *testing.T) {
		c := newCosigners(t, &bjj.BJJ{}, 3)
		tr := c.sign(t, message)
		_, _, err := CombineWeighted(c.scheme, message, tr.shares, c.pks)
		if !errors.Is(err, aggsig.ErrProtocol) {
			t.Errorf("expected ErrProtocol, got %v", err)
		}
	})
}
