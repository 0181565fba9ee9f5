package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/group"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShareError attributes a failed round to the cosigner at Index.
type ShareError struct {
	Index int
	Err   error
}

func (e *ShareError) Error() string {
	return fmt.Sprintf("share from signer %d: %v", e.Index, e.Err)
}

func (e *ShareError) Unwrap() error {
	return e.Err
}

// Coordinator collects the messages and shares of one group of cosigners,
// checks every share and combines them. It holds no secrets.
type Coordinator struct {
	scheme *aggsig.Scheme
	pks    []group.Point
	coeffs []group.Scalar
	apk    group.Point
	log    *zap.Logger
}

// NewCoordinator creates a coordinator for the cosigners with public keys
// pks, in the order the cosigners agreed on.
func NewCoordinator(scheme *aggsig.Scheme, pks []group.Point, opts ...Option) (*Coordinator, error) {
	if scheme == nil {
		return nil, errors.New("scheme is required")
	}
	coeffs, apk, err := scheme.KeyCoefficients(pks)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate keys: %w", err)
	}
	pksCopy := make([]group.Point, len(pks))
	copy(pksCopy, pks)

	return &Coordinator{
		scheme: scheme,
		pks:    pksCopy,
		coeffs: coeffs,
		apk:    apk,
		log:    applyOptions(opts).logger,
	}, nil
}

// AggregatedKey returns the aggregated public key.
func (c *Coordinator) AggregatedKey() group.Point {
	return c.apk
}

// VerifyShares checks a complete round: every reveal must open its
// commitment, every share must carry the aggregated nonce and pass
// [aggsig.Scheme.VerifyShare]. Shares are checked concurrently.
//
// A misbehaving cosigner is reported as a *ShareError naming the lowest
// faulty index.
func (c *Coordinator) VerifyShares(
	ctx context.Context,
	message []byte,
	firsts []*aggsig.SignFirstMsg,
	seconds []*aggsig.SignSecondMsg,
	shares []*aggsig.Share,
) error {
	n := len(c.pks)
	if len(firsts) != n || len(seconds) != n || len(shares) != n {
		return fmt.Errorf("%w: expected %d messages of each kind", aggsig.ErrProtocol, n)
	}

	for i := range firsts {
		if err := c.scheme.VerifyReveal(firsts[i], seconds[i]); err != nil {
			return &ShareError{Index: i, Err: err}
		}
	}
	rTot, err := c.scheme.AggregateNonces(firsts, seconds)
	if err != nil {
		return err
	}

	faults := make([]error, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := range shares {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sh := shares[i]
			if sh == nil || sh.R == nil {
				faults[i] = fmt.Errorf("%w: missing share", aggsig.ErrProtocol)
				return nil
			}
			if !sh.R.Equal(rTot) {
				faults[i] = fmt.Errorf("%w: share is not over the aggregated nonce", aggsig.ErrProtocol)
				return nil
			}
			faults[i] = c.scheme.VerifyShare(sh, message, c.coeffs[i], seconds[i].R, c.pks[i], c.apk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, err := range faults {
		if err != nil {
			c.log.Warn("invalid share", zap.Int("signer", i), zap.Error(err))
			return &ShareError{Index: i, Err: err}
		}
	}
	return nil
}

// Combine verifies the round with [Coordinator.VerifyShares] and combines
// the shares into the final signature.
func (c *Coordinator) Combine(
	ctx context.Context,
	message []byte,
	firsts []*aggsig.SignFirstMsg,
	seconds []*aggsig.SignSecondMsg,
	shares []*aggsig.Share,
) (*aggsig.Signature, error) {
	if err := c.VerifyShares(ctx, message, firsts, seconds, shares); err != nil {
		return nil, err
	}
	sig, err := c.scheme.Combine(shares)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(message, sig); err != nil {
		return nil, err
	}
	c.log.Info("signature combined", zap.Int("cosigners", len(shares)))
	return sig, nil
}

// Verify checks whether a signature is valid for the given message under
// the aggregated key.
//
// Returns nil if the signature is valid, or an error describing why it's invalid.
func (c *Coordinator) Verify(message []byte, sig *aggsig.Signature) error {
	return c.scheme.Verify(sig, message, c.apk)
}

// QuickSign performs a complete signing operation when all key pairs are local.
//
// This is useful for testing or single-host custody setups where all
// cosigners are in the same process. For distributed signing, use
// [SigningSession] instead. It returns the signature and the aggregated key.
func QuickSign(
	scheme *aggsig.Scheme,
	rng io.Reader,
	keys []*aggsig.ExpandedKeyPair,
	message []byte,
) (*aggsig.Signature, group.Point, error) {
	if len(keys) == 0 {
		return nil, nil, errors.New("no key pairs provided")
	}

	pks := make([]group.Point, len(keys))
	for i, k := range keys {
		if k == nil {
			return nil, nil, fmt.Errorf("missing key pair %d", i)
		}
		pks[i] = k.PublicKey
	}

	// Round 1: commit to nonces
	sessions := make([]*SigningSession, len(keys))
	firsts := make([]*aggsig.SignFirstMsg, len(keys))
	for i, k := range keys {
		signer, err := NewSigner(scheme, k, pks, i)
		if err != nil {
			return nil, nil, err
		}
		sess, err := signer.NewSigningSession(rng, message)
		if err != nil {
			return nil, nil, err
		}
		sessions[i] = sess
		firsts[i] = sess.FirstMessage()
	}

	// Round 2: reveal nonces
	seconds := make([]*aggsig.SignSecondMsg, len(keys))
	for i, sess := range sessions {
		second, err := sess.SecondMessage(firsts)
		if err != nil {
			return nil, nil, err
		}
		seconds[i] = second
	}

	// Sign and combine
	shares := make([]*aggsig.Share, len(keys))
	for i, sess := range sessions {
		share, err := sess.Sign(seconds)
		if err != nil {
			return nil, nil, err
		}
		shares[i] = share
	}

	coord, err := NewCoordinator(scheme, pks)
	if err != nil {
		return nil, nil, err
	}
	sig, err := coord.Combine(context.Background(), message, firsts, seconds, shares)
	if err != nil {
		return nil, nil, err
	}
	return sig, coord.AggregatedKey(), nil
}
