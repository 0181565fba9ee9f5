package session

import (
	"errors"
	"fmt"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/group"
	"go.uber.org/zap"
)

// Option configures a [Signer], [WeightedSigner] or [Coordinator].
type Option func(*options)

type options struct {
	logger *zap.Logger
}

func defaultOptions() *options {
	return &options{logger: zap.NewNop()}
}

// WithLogger sets the logger used for protocol events. Secret values are
// never logged. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Signer holds one cosigner's long-term state: its key pair, the ordered
// public keys of all cosigners and the resulting key aggregation. Create
// instances using [NewSigner].
//
// A Signer can run any number of signing sessions, one per message.
type Signer struct {
	scheme *aggsig.Scheme
	keys   *aggsig.ExpandedKeyPair
	pks    []group.Point
	index  int
	agg    *aggsig.KeyAgg
	log    *zap.Logger
}

// NewSigner creates the signer at position ownIndex of pks.
//
// Parameters:
//   - scheme: the signature scheme, shared by all cosigners
//   - keys: this signer's key pair; keys.PublicKey must equal pks[ownIndex]
//   - pks: the public keys of all cosigners, in the agreed order
//   - ownIndex: this signer's position in pks
func NewSigner(scheme *aggsig.Scheme, keys *aggsig.ExpandedKeyPair, pks []group.Point, ownIndex int, opts ...Option) (*Signer, error) {
	if scheme == nil {
		return nil, errors.New("scheme is required")
	}
	if keys == nil || keys.PublicKey == nil {
		return nil, errors.New("key pair is required")
	}

	agg, err := scheme.AggregateKeys(pks, ownIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate keys: %w", err)
	}
	if !pks[ownIndex].Equal(keys.PublicKey) {
		return nil, fmt.Errorf("public key at index %d does not belong to this signer", ownIndex)
	}

	o := applyOptions(opts)
	pksCopy := make([]group.Point, len(pks))
	copy(pksCopy, pks)

	s := &Signer{
		scheme: scheme,
		keys:   keys,
		pks:    pksCopy,
		index:  ownIndex,
		agg:    agg,
		log:    o.logger.With(zap.Int("signer", ownIndex)),
	}
	s.log.Debug("signer ready",
		zap.String("group", scheme.Group().Name()),
		zap.Int("cosigners", len(pks)),
		zap.Binary("apk", agg.APK.Bytes()),
	)
	return s, nil
}

// Index returns this signer's position in the key list.
func (s *Signer) Index() int {
	return s.index
}

// Size returns the number of cosigners.
func (s *Signer) Size() int {
	return len(s.pks)
}

// KeyAgg returns this signer's key aggregation.
func (s *Signer) KeyAgg() *aggsig.KeyAgg {
	return s.agg
}

// AggregatedKey returns the aggregated public key signatures verify under.
func (s *Signer) AggregatedKey() group.Point {
	return s.agg.APK
}

// Scheme returns the underlying scheme for advanced use cases.
func (s *Signer) Scheme() *aggsig.Scheme {
	return s.scheme
}
