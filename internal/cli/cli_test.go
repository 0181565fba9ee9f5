package cli

import (
	"bytes"
	stded25519 "crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/bjj"
	"github.com/f3rmion/aggsig/ed25519"
	"github.com/f3rmion/aggsig/group"
	"github.com/f3rmion/aggsig/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line args with input as stdin and decodes the
// JSON written to stdout into out.
func run(t *testing.T, input any, out any, args ...string) error {
	t.Helper()
	var stdin bytes.Buffer
	if input != nil {
		require.NoError(t, json.NewEncoder(&stdin).Encode(input))
	}
	var stdout bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(&stdin)
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		return err
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), out))
	}
	return nil
}

func keygen(t *testing.T, n int, args ...string) KeygenOutput {
	t.Helper()
	var out KeygenOutput
	require.NoError(t, run(t, nil, &out, append([]string{"keygen", "-n", strconv.Itoa(n)}, args...)...))
	require.Len(t, out.Keys, n)
	return out
}

func seedsOf(k KeygenOutput) ([]string, []string) {
	seeds := make([]string, len(k.Keys))
	pks := make([]string, len(k.Keys))
	for i, key := range k.Keys {
		seeds[i] = key.Seed
		pks[i] = key.PublicKey
	}
	return seeds, pks
}

func TestSignAndVerify(t *testing.T) {
	for _, grp := range []string{"ed25519", "babyjubjub"} {
		t.Run(grp, func(t *testing.T) {
			kg := keygen(t, 3, "--group", grp)
			seeds, pks := seedsOf(kg)
			msg := hex.EncodeToString([]byte("cli message"))

			var agg AggregateKeysOutput
			require.NoError(t, run(t, AggregateKeysInput{PublicKeys: pks}, &agg, "aggregate-keys", "--group", grp))
			assert.Equal(t, kg.AggregatedKey, agg.AggregatedKey)
			assert.Len(t, agg.Coefficients, 3)

			var signed SignOutput
			require.NoError(t, run(t, SignInput{Seeds: seeds, Message: msg}, &signed, "sign", "--group", grp))
			assert.Equal(t, "interactive", signed.Mode)
			assert.Equal(t, kg.AggregatedKey, signed.AggregatedKey)

			var verified VerifyOutput
			in := VerifyInput{PublicKey: signed.AggregatedKey, Message: msg, Signature: signed.Signature}
			require.NoError(t, run(t, in, &verified, "verify", "--group", grp))
			assert.True(t, verified.Valid, verified.Error)
			assert.True(t, verified.Authenticated)
			assert.Empty(t, verified.Warning)

			in.Message = hex.EncodeToString([]byte("other"))
			require.NoError(t, run(t, in, &verified, "verify", "--group", grp))
			assert.False(t, verified.Valid)
			assert.NotEmpty(t, verified.Error)
		})
	}
}

func TestSignMatchesStdlib(t *testing.T) {
	kg := keygen(t, 2)
	seeds, _ := seedsOf(kg)
	msg := []byte("cli ed25519")

	var signed SignOutput
	require.NoError(t, run(t, SignInput{Seeds: seeds, Message: hex.EncodeToString(msg)}, &signed, "sign"))

	pk, err := hex.DecodeString(signed.AggregatedKey)
	require.NoError(t, err)
	sig, err := hex.DecodeString(signed.Signature)
	require.NoError(t, err)
	assert.True(t, stded25519.Verify(pk, msg, sig))
}

func TestWeighted(t *testing.T) {
	kg := keygen(t, 3, "--group", "babyjubjub")
	seeds, pks := seedsOf(kg)
	msg := hex.EncodeToString([]byte("weighted cli"))

	var signed SignOutput
	require.NoError(t, run(t, SignInput{Seeds: seeds, Message: msg}, &signed, "sign", "--weighted", "-g", "babyjubjub"))
	assert.Equal(t, "weighted", signed.Mode)
	assert.NotEmpty(t, signed.Warning)

	var agg AggregateKeysOutput
	require.NoError(t, run(t, AggregateKeysInput{PublicKeys: pks}, &agg, "aggregate-keys", "-g", "babyjubjub"))
	assert.Equal(t, agg.WeightedKey, signed.AggregatedKey)

	var verified VerifyOutput
	in := VerifyInput{PublicKey: signed.AggregatedKey, Message: msg, Signature: signed.Signature}
	require.NoError(t, run(t, in, &verified, "verify", "--weighted", "-g", "babyjubjub"))
	assert.True(t, verified.Valid, verified.Error)
	assert.False(t, verified.Authenticated)
	assert.Equal(t, weightedWarning, verified.Warning)

	verified = VerifyOutput{}
	require.NoError(t, run(t, in, &verified, "verify", "-g", "babyjubjub"))
	assert.False(t, verified.Valid, "weighted signature must not verify as interactive")
}

func TestWeightedForgeryIsFlagged(t *testing.T) {
	g := &bjj.BJJ{}
	kg := keygen(t, 2, "-g", "babyjubjub")
	_, pks := seedsOf(kg)
	msg := []byte("never signed")

	var agg AggregateKeysOutput
	require.NoError(t, run(t, AggregateKeysInput{PublicKeys: pks}, &agg, "aggregate-keys", "-g", "babyjubjub"))
	raw, err := hex.DecodeString(agg.WeightedKey)
	require.NoError(t, err)
	apk, err := g.NewPoint().SetBytes(raw)
	require.NoError(t, err)

	// R = S*G - H(msg)*apk needs no private key.
	S, err := g.RandomScalar(rand.Reader)
	require.NoError(t, err)
	k, err := (&aggsig.GroupHasher{}).MessageChallenge(g, msg)
	require.NoError(t, err)
	R := g.NewPoint().Sub(g.NewPoint().ScalarMult(S, g.Generator()), g.NewPoint().ScalarMult(k, apk))
	forged := (&aggsig.Signature{R: R, S: S}).Bytes()

	var verified VerifyOutput
	in := VerifyInput{PublicKey: agg.WeightedKey, Message: hex.EncodeToString(msg), Signature: hex.EncodeToString(forged)}
	require.NoError(t, run(t, in, &verified, "verify", "--weighted", "-g", "babyjubjub"))
	assert.True(t, verified.Valid)
	assert.False(t, verified.Authenticated, "a weighted signature never authenticates its signer")
	assert.NotEmpty(t, verified.Warning)
}

func TestCombine(t *testing.T) {
	s, err := aggsig.New(&ed25519.Ed25519{})
	require.NoError(t, err)
	msg := []byte("remote cosigners")

	const n = 3
	keys := make([]*aggsig.ExpandedKeyPair, n)
	pks := make([]group.Point, n)
	for i := range keys {
		keys[i], _, err = s.GenerateKey(rand.Reader)
		require.NoError(t, err)
		pks[i] = keys[i].PublicKey
	}

	ephs := make([]*aggsig.EphemeralKey, n)
	firsts := make([]*aggsig.SignFirstMsg, n)
	seconds := make([]*aggsig.SignSecondMsg, n)
	for i := range keys {
		ephs[i], firsts[i], seconds[i], err = s.Commit(rand.Reader, keys[i], msg)
		require.NoError(t, err)
	}
	rTot, err := s.AggregateNonces(firsts, seconds)
	require.NoError(t, err)

	in := CombineInput{Message: hex.EncodeToString(msg)}
	for i := range keys {
		agg, err := s.AggregateKeys(pks, i)
		require.NoError(t, err)
		share, err := s.PartialSign(ephs[i], keys[i], agg.Coefficient, rTot, agg.APK, msg)
		require.NoError(t, err)

		in.PublicKeys = append(in.PublicKeys, hex.EncodeToString(pks[i].Bytes()))
		in.FirstMsgs = append(in.FirstMsgs, mustEncode(t, firsts[i]))
		in.SecondMsgs = append(in.SecondMsgs, mustEncode(t, seconds[i]))
		in.Shares = append(in.Shares, mustEncode(t, share))
	}

	var out CombineOutput
	require.NoError(t, run(t, in, &out, "combine"))
	assert.True(t, out.Valid)

	pk, _ := hex.DecodeString(out.AggregatedKey)
	sig, _ := hex.DecodeString(out.Signature)
	assert.True(t, stded25519.Verify(pk, msg, sig))

	t.Run("TamperedShare", func(t *testing.T) {
		bad := in
		bad.Shares = []string{in.Shares[0], in.Shares[2], in.Shares[1]}
		err := run(t, bad, nil, "combine")
		assert.ErrorIs(t, err, aggsig.ErrProof)

		var shareErr *session.ShareError
		require.ErrorAs(t, err, &shareErr)
		assert.Equal(t, 1, shareErr.Index)
	})
}

func mustEncode(t *testing.T, m interface{ MarshalBinary() ([]byte, error) }) string {
	t.Helper()
	s, err := encodeBinary(m)
	require.NoError(t, err)
	return s
}

func TestInvalidFlags(t *testing.T) {
	assert.Error(t, run(t, nil, nil, "keygen", "--group", "p256"))
	assert.Error(t, run(t, nil, nil, "keygen", "--hasher", "md5"))
	assert.Error(t, run(t, nil, nil, "keygen", "-n", "0"))
	assert.Error(t, run(t, SignInput{Message: "00"}, nil, "sign"))
	assert.Error(t, run(t, SignInput{Seeds: []string{"zz"}, Message: "00"}, nil, "sign"))
	assert.Error(t, run(t, SignInput{Seeds: []string{"00"}, Message: "00"}, nil, "sign", "--log-level", "loud"))
}

func TestBlake2bHasher(t *testing.T) {
	kg := keygen(t, 3, "--hasher", "blake2b")
	seeds, _ := seedsOf(kg)
	msg := hex.EncodeToString([]byte("blake2b"))

	var signed SignOutput
	require.NoError(t, run(t, SignInput{Seeds: seeds, Message: msg}, &signed, "sign", "--hasher", "blake2b"))

	var verified VerifyOutput
	in := VerifyInput{PublicKey: signed.AggregatedKey, Message: msg, Signature: signed.Signature}
	require.NoError(t, run(t, in, &verified, "verify", "--hasher", "blake2b"))
	assert.True(t, verified.Valid, verified.Error)

	require.NoError(t, run(t, in, &verified, "verify"))
	assert.False(t, verified.Valid)
}
