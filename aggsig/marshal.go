package aggsig

import (
	"errors"
	"fmt"

	"github.com/f3rmion/aggsig/commit"
	"github.com/fxamacker/cbor/v2"
)

// EmptySignature creates an empty Signature bound to the scheme's group,
// ready for unmarshalling.
//
// This needs to be used for unmarshalling, otherwise the points on the curve
// can't be decoded.
func (s *Scheme) EmptySignature() *Signature {
	return &Signature{R: s.group.NewPoint(), S: s.group.NewScalar()}
}

// EmptyShare creates an empty Share bound to the scheme's group, ready for
// unmarshalling.
func (s *Scheme) EmptyShare() *Share {
	return &Share{Signature: *s.EmptySignature()}
}

// EmptySecondMsg creates an empty SignSecondMsg bound to the scheme's
// group, ready for unmarshalling.
func (s *Scheme) EmptySecondMsg() *SignSecondMsg {
	return &SignSecondMsg{R: s.group.NewPoint()}
}

// EmptyKeyAgg creates an empty KeyAgg bound to the scheme's group, ready
// for unmarshalling.
func (s *Scheme) EmptyKeyAgg() *KeyAgg {
	return &KeyAgg{APK: s.group.NewPoint(), Coefficient: s.group.NewScalar()}
}

type signatureMarshal struct {
	R []byte `cbor:"1,keyasint"`
	S []byte `cbor:"2,keyasint"`
}

type shareMarshal struct {
	Mode Mode   `cbor:"1,keyasint"`
	R    []byte `cbor:"2,keyasint"`
	S    []byte `cbor:"3,keyasint"`
}

type firstMsgMarshal struct {
	Commitment []byte `cbor:"1,keyasint"`
}

type secondMsgMarshal struct {
	R     []byte `cbor:"1,keyasint"`
	Blind []byte `cbor:"2,keyasint"`
}

type keyAggMarshal struct {
	APK         []byte `cbor:"1,keyasint"`
	Coefficient []byte `cbor:"2,keyasint"`
}

// MarshalBinary encodes the signature as CBOR.
func (sig *Signature) MarshalBinary() ([]byte, error) {
	if sig.R == nil || sig.S == nil {
		return nil, errors.New("aggsig: incomplete signature")
	}
	return cbor.Marshal(&signatureMarshal{R: sig.R.Bytes(), S: sig.S.Bytes()})
}

// UnmarshalBinary decodes a CBOR signature. sig must come from
// [Scheme.EmptySignature].
func (sig *Signature) UnmarshalBinary(data []byte) error {
	if sig.R == nil || sig.S == nil {
		return errors.New("aggsig: signature must be initialized using EmptySignature")
	}
	var m signatureMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	return setSignature(sig, m.R, m.S)
}

func (sh *Share) MarshalBinary() ([]byte, error) {
	if sh.R == nil || sh.S == nil {
		return nil, errors.New("aggsig: incomplete share")
	}
	return cbor.Marshal(&shareMarshal{Mode: sh.Mode, R: sh.R.Bytes(), S: sh.S.Bytes()})
}

// UnmarshalBinary decodes a CBOR share and rejects unknown modes. sh must
// come from [Scheme.EmptyShare].
func (sh *Share) UnmarshalBinary(data []byte) error {
	if sh.R == nil || sh.S == nil {
		return errors.New("aggsig: share must be initialized using EmptyShare")
	}
	var m shareMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	if m.Mode != ModeInteractive && m.Mode != ModeWeighted {
		return fmt.Errorf("aggsig: unknown share mode %d", m.Mode)
	}
	if err := setSignature(&sh.Signature, m.R, m.S); err != nil {
		return err
	}
	sh.Mode = m.Mode
	return nil
}

func (m *SignFirstMsg) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&firstMsgMarshal{Commitment: m.Commitment})
}

func (m *SignFirstMsg) UnmarshalBinary(data []byte) error {
	var fm firstMsgMarshal
	if err := cbor.Unmarshal(data, &fm); err != nil {
		return err
	}
	c := commit.Commitment(fm.Commitment)
	if err := c.Validate(); err != nil {
		return err
	}
	m.Commitment = c
	return nil
}

func (m *SignSecondMsg) MarshalBinary() ([]byte, error) {
	if m.R == nil {
		return nil, errors.New("aggsig: incomplete second message")
	}
	return cbor.Marshal(&secondMsgMarshal{R: m.R.Bytes(), Blind: m.Blind})
}

// UnmarshalBinary decodes a CBOR reveal. m must come from
// [Scheme.EmptySecondMsg].
func (m *SignSecondMsg) UnmarshalBinary(data []byte) error {
	if m.R == nil {
		return errors.New("aggsig: second message must be initialized using EmptySecondMsg")
	}
	var sm secondMsgMarshal
	if err := cbor.Unmarshal(data, &sm); err != nil {
		return err
	}
	blind := commit.Blind(sm.Blind)
	if err := blind.Validate(); err != nil {
		return err
	}
	if _, err := m.R.SetBytes(sm.R); err != nil {
		return fmt.Errorf("aggsig: nonce point: %w", err)
	}
	m.Blind = blind
	return nil
}

func (k *KeyAgg) MarshalBinary() ([]byte, error) {
	if k.APK == nil || k.Coefficient == nil {
		return nil, errors.New("aggsig: incomplete key aggregation")
	}
	return cbor.Marshal(&keyAggMarshal{APK: k.APK.Bytes(), Coefficient: k.Coefficient.Bytes()})
}

// UnmarshalBinary decodes a CBOR KeyAgg. k must come from
// [Scheme.EmptyKeyAgg].
func (k *KeyAgg) UnmarshalBinary(data []byte) error {
	if k.APK == nil || k.Coefficient == nil {
		return errors.New("aggsig: key aggregation must be initialized using EmptyKeyAgg")
	}
	var m keyAggMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	if _, err := k.APK.SetBytes(m.APK); err != nil {
		return fmt.Errorf("aggsig: aggregated key: %w", err)
	}
	if _, err := k.Coefficient.SetBytes(m.Coefficient); err != nil {
		return fmt.Errorf("aggsig: coefficient: %w", err)
	}
	return nil
}

func setSignature(sig *Signature, r, s []byte) error {
	if _, err := sig.R.SetBytes(r); err != nil {
		return fmt.Errorf("aggsig: signature point: %w", err)
	}
	if _, err := sig.S.SetBytes(s); err != nil {
		return fmt.Errorf("aggsig: signature scalar: %w", err)
	}
	return nil
}
