package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/spf13/cobra"
)

// KeyOutput describes one generated cosigner key.
type KeyOutput struct {
	Index     int    `json:"index"`
	Seed      string `json:"seed"`       // 32 bytes (secret)
	PublicKey string `json:"public_key"` // 32 bytes compressed
}

// KeygenOutput is written by the keygen command.
type KeygenOutput struct {
	Group         string      `json:"group"`
	AggregatedKey string      `json:"aggregated_key"`
	Keys          []KeyOutput `json:"keys"`
}

// AggregateKeysInput is the stdin document of the aggregate-keys command.
type AggregateKeysInput struct {
	PublicKeys []string `json:"public_keys"`
}

// AggregateKeysOutput is written by the aggregate-keys command.
// Coefficients are in key order; WeightedKey is the weighted-scheme key.
type AggregateKeysOutput struct {
	AggregatedKey string   `json:"aggregated_key"`
	Coefficients  []string `json:"coefficients"`
	WeightedKey   string   `json:"weighted_key"`
}

func newKeygenCmd(cfg *Config) *cobra.Command {
	var total int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate cosigner key seeds and the aggregated key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if total < 1 {
				return errors.New("at least one cosigner is required")
			}
			s, err := cfg.scheme()
			if err != nil {
				return err
			}

			out := KeygenOutput{Group: s.Group().Name(), Keys: make([]KeyOutput, total)}
			pks := make([]string, total)
			for i := range total {
				keys, seed, err := s.GenerateKey(rand.Reader)
				if err != nil {
					return err
				}
				pks[i] = hex.EncodeToString(keys.PublicKey.Bytes())
				out.Keys[i] = KeyOutput{
					Index:     i,
					Seed:      hex.EncodeToString(seed),
					PublicKey: pks[i],
				}
				keys.Zeroize()
				clear(seed)
			}

			points, err := decodePoints(s, "public_keys", pks)
			if err != nil {
				return err
			}
			_, apk, err := s.KeyCoefficients(points)
			if err != nil {
				return err
			}
			out.AggregatedKey = hex.EncodeToString(apk.Bytes())
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVarP(&total, "total", "n", 3, "number of cosigners")
	return cmd
}

func newAggregateKeysCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate-keys",
		Short: "Compute the aggregated key and every cosigner's coefficient",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cfg.scheme()
			if err != nil {
				return err
			}
			var in AggregateKeysInput
			if err := readJSON(cmd.InOrStdin(), &in); err != nil {
				return err
			}
			pks, err := decodePoints(s, "public_keys", in.PublicKeys)
			if err != nil {
				return err
			}

			coeffs, apk, err := s.KeyCoefficients(pks)
			if err != nil {
				return err
			}
			weighted, err := s.AggregateWeightedKeys(pks)
			if err != nil {
				return err
			}

			out := AggregateKeysOutput{
				AggregatedKey: hex.EncodeToString(apk.Bytes()),
				Coefficients:  make([]string, len(coeffs)),
				WeightedKey:   hex.EncodeToString(weighted.Bytes()),
			}
			for i, c := range coeffs {
				out.Coefficients[i] = hex.EncodeToString(c.Bytes())
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}
