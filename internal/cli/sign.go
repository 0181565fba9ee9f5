package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/group"
	"github.com/f3rmion/aggsig/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// weightedWarning accompanies every weighted-scheme result. The weighted
// challenge H(msg) binds no key, so these signatures can be forged.
const weightedWarning = "weighted signatures are forgeable without a secret key; " +
	"accept them only from an authenticated signer set"

// SignInput is the stdin document of the sign command.
type SignInput struct {
	Seeds   []string `json:"seeds"`   // one per cosigner, in key order (secret)
	Message string   `json:"message"` // hex
}

// SignOutput is written by the sign command.
type SignOutput struct {
	Mode          string `json:"mode"`
	AggregatedKey string `json:"aggregated_key"`
	Signature     string `json:"signature"` // R || S
	Warning       string `json:"warning,omitempty"`
}

// CombineInput is the stdin document of the combine command. Every list is
// in key order.
type CombineInput struct {
	PublicKeys []string `json:"public_keys"`
	Message    string   `json:"message"`
	FirstMsgs  []string `json:"first_msgs"`  // CBOR, interactive only
	SecondMsgs []string `json:"second_msgs"` // CBOR, interactive only
	Shares     []string `json:"shares"`      // CBOR
}

// CombineOutput is written by the combine command.
type CombineOutput struct {
	Mode          string `json:"mode"`
	AggregatedKey string `json:"aggregated_key"`
	Signature     string `json:"signature"`
	Valid         bool   `json:"valid"`
	Warning       string `json:"warning,omitempty"`
}

// VerifyInput is the stdin document of the verify command.
type VerifyInput struct {
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
	Signature string `json:"signature"` // R || S
}

// VerifyOutput is written by the verify command. Valid reports the
// verification equation. Authenticated is set only when a valid signature
// also proves knowledge of the key, which never holds for the weighted
// scheme.
type VerifyOutput struct {
	Valid         bool   `json:"valid"`
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

func newSignCmd(cfg *Config) *cobra.Command {
	var weighted bool
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with locally held cosigner seeds",
		Long: `sign runs a complete signing round for cosigners whose seeds are all
available to this process. With --weighted it runs the non-interactive
weighted scheme instead. Weighted signatures can be forged without a
secret key and must only be accepted from an authenticated signer set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cfg.scheme()
			if err != nil {
				return err
			}
			log, err := cfg.logger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var in SignInput
			if err := readJSON(cmd.InOrStdin(), &in); err != nil {
				return err
			}
			msg, err := decodeHex("message", in.Message)
			if err != nil {
				return err
			}
			keys, err := expandSeeds(s, in.Seeds)
			defer zeroizeAll(keys)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				return errors.New("no seeds provided")
			}

			var (
				sig  *aggsig.Signature
				apk  group.Point
				mode = aggsig.ModeInteractive
			)
			if weighted {
				mode = aggsig.ModeWeighted
				sig, apk, err = signWeighted(s, keys, msg, log)
			} else {
				sig, apk, err = session.QuickSign(s, rand.Reader, keys, msg)
			}
			if err != nil {
				return err
			}
			log.Info("message signed", zap.Stringer("mode", mode), zap.Int("cosigners", len(keys)))

			out := SignOutput{
				Mode:          mode.String(),
				AggregatedKey: hex.EncodeToString(apk.Bytes()),
				Signature:     hex.EncodeToString(sig.Bytes()),
			}
			if weighted {
				out.Warning = weightedWarning
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&weighted, "weighted", false,
		"use the weighted scheme (forgeable: only for authenticated signer sets)")
	return cmd
}

func signWeighted(s *aggsig.Scheme, keys []*aggsig.ExpandedKeyPair, msg []byte, log *zap.Logger) (*aggsig.Signature, group.Point, error) {
	shares := make([]*aggsig.Share, len(keys))
	pks := make([]group.Point, len(keys))
	for i, k := range keys {
		w, err := session.NewWeightedSigner(s, k, session.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		if shares[i], err = w.Sign(msg); err != nil {
			return nil, nil, err
		}
		pks[i] = w.PublicKey()
	}
	return session.CombineWeighted(s, msg, shares, pks)
}

func newCombineCmd(cfg *Config) *cobra.Command {
	var weighted bool
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Check shares produced by remote cosigners and combine them",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cfg.scheme()
			if err != nil {
				return err
			}
			log, err := cfg.logger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var in CombineInput
			if err := readJSON(cmd.InOrStdin(), &in); err != nil {
				return err
			}
			msg, err := decodeHex("message", in.Message)
			if err != nil {
				return err
			}
			pks, err := decodePoints(s, "public_keys", in.PublicKeys)
			if err != nil {
				return err
			}
			shares, err := decodeMessages("shares", in.Shares, s.EmptyShare)
			if err != nil {
				return err
			}

			var (
				sig  *aggsig.Signature
				apk  group.Point
				mode = aggsig.ModeInteractive
			)
			if weighted {
				mode = aggsig.ModeWeighted
				sig, apk, err = session.CombineWeighted(s, msg, shares, pks)
			} else {
				sig, apk, err = combineInteractive(cmd.Context(), s, in, msg, pks, shares, log)
			}
			if err != nil {
				return err
			}

			out := CombineOutput{
				Mode:          mode.String(),
				AggregatedKey: hex.EncodeToString(apk.Bytes()),
				Signature:     hex.EncodeToString(sig.Bytes()),
				Valid:         true,
			}
			if weighted {
				out.Warning = weightedWarning
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&weighted, "weighted", false,
		"combine weighted-scheme shares (forgeable: only for authenticated signer sets)")
	return cmd
}

func combineInteractive(
	ctx context.Context,
	s *aggsig.Scheme,
	in CombineInput,
	msg []byte,
	pks []group.Point,
	shares []*aggsig.Share,
	log *zap.Logger,
) (*aggsig.Signature, group.Point, error) {
	firsts, err := decodeMessages("first_msgs", in.FirstMsgs, func() *aggsig.SignFirstMsg {
		return &aggsig.SignFirstMsg{}
	})
	if err != nil {
		return nil, nil, err
	}
	seconds, err := decodeMessages("second_msgs", in.SecondMsgs, s.EmptySecondMsg)
	if err != nil {
		return nil, nil, err
	}

	coord, err := session.NewCoordinator(s, pks, session.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	sig, err := coord.Combine(ctx, msg, firsts, seconds, shares)
	if err != nil {
		return nil, nil, err
	}
	return sig, coord.AggregatedKey(), nil
}

func newVerifyCmd(cfg *Config) *cobra.Command {
	var weighted bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature under a public or aggregated key",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cfg.scheme()
			if err != nil {
				return err
			}
			var in VerifyInput
			if err := readJSON(cmd.InOrStdin(), &in); err != nil {
				return err
			}
			msg, err := decodeHex("message", in.Message)
			if err != nil {
				return err
			}
			pk, err := decodePoint(s, "public_key", in.PublicKey)
			if err != nil {
				return err
			}
			raw, err := decodeHex("signature", in.Signature)
			if err != nil {
				return err
			}

			var out VerifyOutput
			sig, err := splitSignature(s, raw)
			if err == nil {
				if weighted {
					err = s.VerifyHashed(sig, msg, pk)
				} else {
					err = s.Verify(sig, msg, pk)
				}
			}
			out.Valid = err == nil
			out.Authenticated = out.Valid && !weighted
			if err != nil {
				out.Error = err.Error()
			}
			if weighted {
				out.Warning = weightedWarning
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&weighted, "weighted", false,
		"check a weighted-scheme signature (forgeable: never authenticates the signer)")
	return cmd
}

// splitSignature decodes the R || S encoding produced by Signature.Bytes.
func splitSignature(s *aggsig.Scheme, raw []byte) (*aggsig.Signature, error) {
	pointLen := len(s.Group().Generator().Bytes())
	if len(raw) <= pointLen {
		return nil, errors.New("signature too short")
	}
	sig := s.EmptySignature()
	if _, err := sig.R.SetBytes(raw[:pointLen]); err != nil {
		return nil, err
	}
	if _, err := sig.S.SetBytes(raw[pointLen:]); err != nil {
		return nil, err
	}
	return sig, nil
}
