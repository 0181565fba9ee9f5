package cli

import (
	"encoding"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/f3rmion/aggsig/aggsig"
	"github.com/f3rmion/aggsig/group"
)

func readJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}

func decodePoint(s *aggsig.Scheme, field, h string) (group.Point, error) {
	b, err := decodeHex(field, h)
	if err != nil {
		return nil, err
	}
	p, err := s.Group().NewPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return p, nil
}

func decodePoints(s *aggsig.Scheme, field string, hs []string) ([]group.Point, error) {
	out := make([]group.Point, len(hs))
	for i, h := range hs {
		p, err := decodePoint(s, fmt.Sprintf("%s[%d]", field, i), h)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func encodeBinary(m encoding.BinaryMarshaler) (string, error) {
	b, err := m.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// decodeMessages decodes hex CBOR messages into values created by empty.
func decodeMessages[T encoding.BinaryUnmarshaler](field string, hs []string, empty func() T) ([]T, error) {
	out := make([]T, len(hs))
	for i, h := range hs {
		b, err := decodeHex(fmt.Sprintf("%s[%d]", field, i), h)
		if err != nil {
			return nil, err
		}
		v := empty()
		if err := v.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func expandSeeds(s *aggsig.Scheme, hs []string) ([]*aggsig.ExpandedKeyPair, error) {
	keys := make([]*aggsig.ExpandedKeyPair, len(hs))
	for i, h := range hs {
		seed, err := decodeHex(fmt.Sprintf("seeds[%d]", i), h)
		if err != nil {
			zeroizeAll(keys)
			return nil, err
		}
		k, err := s.ExpandSeed(seed)
		clear(seed)
		if err != nil {
			zeroizeAll(keys)
			return nil, fmt.Errorf("seeds[%d]: %w", i, err)
		}
		keys[i] = k
	}
	return keys, nil
}

func zeroizeAll(keys []*aggsig.ExpandedKeyPair) {
	for _, k := range keys {
		k.Zeroize()
	}
}
