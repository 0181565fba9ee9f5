package cli

import (
	"fmt"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/bjj"
	"github.com/f3rmion/aggsig/ed25519"
	"github.com/f3rmion/aggsig/group"
	"github.com/f3rmion/aggsig/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Config holds the global flags shared by all commands.
type Config struct {
	Group    string
	Hasher   string
	LogLevel string
}

// NewRootCommand builds the aggsig-helper command tree.
func NewRootCommand() *cobra.Command {
	cfg := &Config{}

	rootCmd := &cobra.Command{
		Use:   "aggsig-helper",
		Short: "Aggregated Schnorr signature helper",
		Long: `aggsig-helper generates cosigner keys, aggregates public keys,
signs with locally held keys and combines or verifies signatures
produced elsewhere.

Commands read a JSON document on stdin and write JSON to stdout.
Keys, points, scalars and messages are hex encoded; protocol messages
are hex encoded CBOR.

Supported groups:
  - ed25519:    edwards25519, signatures verify as RFC 8032 Ed25519
  - babyjubjub: Baby Jubjub over BN254`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfg.Group, "group", "g", "ed25519",
		"group to use (ed25519, babyjubjub)")
	rootCmd.PersistentFlags().StringVar(&cfg.Hasher, "hasher", "default",
		"hash suite (default, blake2b)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "warn",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(newKeygenCmd(cfg))
	rootCmd.AddCommand(newAggregateKeysCmd(cfg))
	rootCmd.AddCommand(newSignCmd(cfg))
	rootCmd.AddCommand(newCombineCmd(cfg))
	rootCmd.AddCommand(newVerifyCmd(cfg))
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (c *Config) scheme() (*aggsig.Scheme, error) {
	var g group.Group
	switch c.Group {
	case "ed25519":
		g = &ed25519.Ed25519{}
	case "babyjubjub", "bjj":
		g = &bjj.BJJ{}
	default:
		return nil, fmt.Errorf("unknown group %q", c.Group)
	}

	switch c.Hasher {
	case "default":
		return aggsig.New(g)
	case "blake2b":
		return aggsig.NewWithHasher(g, aggsig.NewBlake2bHasher())
	default:
		return nil, fmt.Errorf("unknown hasher %q", c.Hasher)
	}
}

func (c *Config) logger() (*zap.Logger, error) {
	return logging.NewLogger(c.LogLevel)
}
