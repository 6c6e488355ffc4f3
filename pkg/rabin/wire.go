// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rabin

import (
	"encoding/hex"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"ESRabin/pkg/BigInt"
	"ESRabin/pkg/hash"
)

// Field numbers of the wire encodings. Values are protobuf compatible:
//
//	message Signature { bytes message = 1; bytes r = 2; bytes b = 3; }
//	message PublicKey { bytes n = 1; uint32 hash = 2; }
const (
	sigMessageField protowire.Number = 1
	sigRField       protowire.Number = 2
	sigBField       protowire.Number = 3

	pubNField    protowire.Number = 1
	pubHashField protowire.Number = 2
)

// MarshalWire encodes the signature with protobuf wire format.
func (sig *Signature) MarshalWire() ([]byte, error) {
	if sig.R == nil || sig.B == nil {
		return nil, ErrMalformedSignature
	}
	var b []byte
	b = protowire.AppendTag(b, sigMessageField, protowire.BytesType)
	b = protowire.AppendBytes(b, sig.Message)
	b = protowire.AppendTag(b, sigRField, protowire.BytesType)
	b = protowire.AppendBytes(b, sig.R.Bytes())
	b = protowire.AppendTag(b, sigBField, protowire.BytesType)
	b = protowire.AppendBytes(b, sig.B.Bytes())
	return b, nil
}

// UnmarshalWire decodes a signature produced by MarshalWire. Unknown fields are skipped.
func (sig *Signature) UnmarshalWire(b []byte) error {
	var out Signature
	err := consumeFields(b, func(num protowire.Number, v []byte) error {
		var err error
		switch num {
		case sigMessageField:
			out.Message = append([]byte(nil), v...)
		case sigRField:
			out.R, err = natFromWire(v)
		case sigBField:
			out.B, err = natFromWire(v)
		}
		return err
	}, nil)
	if err != nil {
		return err
	}
	if out.R == nil || out.B == nil {
		return fmt.Errorf("%w: missing randomizer or root", ErrMalformedSignature)
	}
	if out.Message == nil {
		out.Message = []byte{}
	}
	*sig = out
	return nil
}

// MarshalWire encodes the public key with protobuf wire format.
func (pk *PublicKey) MarshalWire() ([]byte, error) {
	if pk.N == nil {
		return nil, ErrKeyMismatch
	}
	var b []byte
	b = protowire.AppendTag(b, pubNField, protowire.BytesType)
	b = protowire.AppendBytes(b, pk.N.Bytes())
	b = protowire.AppendTag(b, pubHashField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(pk.Hash))
	return b, nil
}

// UnmarshalWire decodes a public key produced by MarshalWire.
func (pk *PublicKey) UnmarshalWire(b []byte) error {
	var out PublicKey
	err := consumeFields(b, func(num protowire.Number, v []byte) error {
		if num != pubNField {
			return nil
		}
		var err error
		out.N, err = natFromWire(v)
		return err
	}, func(num protowire.Number, v uint64) error {
		if num == pubHashField {
			out.Hash = hash.ID(v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if out.N == nil {
		return fmt.Errorf("%w: missing modulus", ErrKeyMismatch)
	}
	if !out.Hash.Valid() {
		return fmt.Errorf("%w: %v", hash.ErrUnknown, out.Hash)
	}
	*pk = out
	return nil
}

// consumeFields walks b and hands bytes and varint fields to the callbacks.
// Fields of other types, and fields without a callback, are skipped.
func consumeFields(b []byte, onBytes func(protowire.Number, []byte) error, onVarint func(protowire.Number, uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedSignature, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case typ == protowire.BytesType && onBytes != nil:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformedSignature, protowire.ParseError(n))
			}
			if err := onBytes(num, v); err != nil {
				return err
			}
			b = b[n:]
		case typ == protowire.VarintType && onVarint != nil:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformedSignature, protowire.ParseError(n))
			}
			if err := onVarint(num, v); err != nil {
				return err
			}
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformedSignature, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// natFromWire rejects values longer than a Single instead of truncating them.
func natFromWire(v []byte) (*BigInt.Nat, error) {
	if len(v) > BigInt.Single.Bits()/8 {
		return nil, fmt.Errorf("%w: %d byte value", ErrMalformedSignature, len(v))
	}
	return BigInt.NewSingle().SetBytes(v), nil
}

// SignatureFromHex decodes a hex string holding a MarshalWire encoding.
func SignatureFromHex(s string) (*Signature, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	sig := new(Signature)
	if err = sig.UnmarshalWire(b); err != nil {
		return nil, err
	}
	return sig, nil
}

// PublicKeyFromHex decodes a hex string holding a PublicKey.MarshalWire encoding.
func PublicKeyFromHex(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	pub := new(PublicKey)
	if err = pub.UnmarshalWire(b); err != nil {
		return nil, err
	}
	return pub, nil
}
