package session

import (
	"errors"
	"fmt"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/group"
	"go.uber.org/zap"
)

// WeightedSigner produces shares for the non-interactive weighted scheme.
// It needs no rounds: each cosigner signs on its own and a combiner
// collects the shares with [CombineWeighted].
//
// Weighted signatures verify with [aggsig.Scheme.VerifyHashed] only. They
// are kept apart from the interactive types so the two cannot be mixed.
//
// The weighted challenge binds no key, so anyone can produce a share or a
// combined signature that verifies without a private key. Use this signer
// only where the signer set and the share transport are authenticated out
// of band.
type WeightedSigner struct {
	scheme *aggsig.Scheme
	keys   *aggsig.ExpandedKeyPair
	log    *zap.Logger
}

// NewWeightedSigner creates a signer for the weighted scheme.
func NewWeightedSigner(scheme *aggsig.Scheme, keys *aggsig.ExpandedKeyPair, opts ...Option) (*WeightedSigner, error) {
	if scheme == nil {
		return nil, errors.New("scheme is required")
	}
	if keys == nil {
		return nil, errors.New("key pair is required")
	}
	return &WeightedSigner{
		scheme: scheme,
		keys:   keys,
		log:    applyOptions(opts).logger,
	}, nil
}

// PublicKey returns the signer's public key.
func (w *WeightedSigner) PublicKey() group.Point {
	return w.keys.PublicKey
}

// Sign produces this signer's weighted share of message.
func (w *WeightedSigner) Sign(message []byte) (*aggsig.Share, error) {
	share, err := w.scheme.SignHashed(w.keys, message)
	if err != nil {
		return nil, err
	}
	w.log.Debug("weighted share produced", zap.Int("msg_len", len(message)))
	return share, nil
}

// CombineWeighted combines weighted shares. shares[i] must come from the
// owner of pks[i] over an authenticated channel. It returns the signature
// and the aggregated key it verifies under.
//
// Each share is checked with [aggsig.Scheme.VerifyHashed], which catches
// corrupted or mismatched shares. It does not prove that the owner of
// pks[i] produced shares[i]: a share that passes can be forged without the
// private key.
func CombineWeighted(
	scheme *aggsig.Scheme,
	message []byte,
	shares []*aggsig.Share,
	pks []group.Point,
) (*aggsig.Signature, group.Point, error) {
	if len(shares) != len(pks) {
		return nil, nil, fmt.Errorf("%w: %d shares for %d keys", aggsig.ErrProtocol, len(shares), len(pks))
	}
	for i, sh := range shares {
		if sh == nil {
			return nil, nil, &ShareError{Index: i, Err: aggsig.ErrProtocol}
		}
		if sh.Mode != aggsig.ModeWeighted {
			return nil, nil, &ShareError{Index: i, Err: fmt.Errorf("%w: not a weighted share", aggsig.ErrProtocol)}
		}
		if err := scheme.VerifyHashed(&sh.Signature, message, pks[i]); err != nil {
			return nil, nil, &ShareError{Index: i, Err: err}
		}
	}

	sig, apk, err := scheme.CombineWeighted(shares, pks)
	if err != nil {
		return nil, nil, err
	}
	if err := scheme.VerifyHashed(sig, message, apk); err != nil {
		return nil, nil, err
	}
	return sig, apk, nil
}
