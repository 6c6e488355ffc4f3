// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

const hexDigits = "0123456789ABCDEF"

// hexValue converts a single hex character, returning -1 for anything else.
func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// SetHex modifies the value of z to hold a hex string, returning z
//
// The hex string must be in big endian order. If it contains characters
// other than 0..9, a..f, A..F, the value of z will be undefined, and an error will
// be returned. Strings longer than width/4 digits keep their least significant digits.
func (z *Nat) SetHex(hex string) (*Nat, error) {
	for i := 0; i < len(hex); i++ {
		if hexValue(hex[i]) < 0 {
			return z, opError("SetHex", fmt.Errorf("%w %q at position %d", ErrBadHexDigit, hex[i], i))
		}
	}
	if max := int(z.width) / 4; len(hex) > max {
		log.Warnf("BigInt: hex string of %d digits truncated to %d", len(hex), max)
		hex = hex[len(hex)-max:]
	}
	z.SetZero()
	for k := 0; k < len(hex); k++ {
		z.orField(4*k, uint32(hexValue(hex[len(hex)-1-k])))
	}
	z.normalize()
	return z, nil
}

// Hex will represent this Nat as a Hex string of exactly width/4 upper-case digits.
func (z *Nat) Hex() string {
	digits := int(z.width) / 4
	out := make([]byte, digits)
	for k := 0; k < digits; k++ {
		out[digits-1-k] = hexDigits[z.field(4*k, 4)]
	}
	return string(out)
}

// SetBytes interprets buf as a number in big-endian format, stores it in z, and returns z.
//
// At most width/8 bytes are used; longer input keeps its least significant bytes.
func (z *Nat) SetBytes(buf []byte) *Nat {
	if max := int(z.width) / 8; len(buf) > max {
		log.Warnf("BigInt: %d bytes truncated to %d", len(buf), max)
		buf = buf[len(buf)-max:]
	}
	z.SetZero()
	for k := 0; k < len(buf); k++ {
		z.orField(8*k, uint32(buf[len(buf)-1-k]))
	}
	z.normalize()
	return z
}

// Bytes creates a slice containing the contents of this Nat, in big endian.
//
// The slice always holds width/8 bytes.
func (z *Nat) Bytes() []byte {
	n := int(z.width) / 8
	out := make([]byte, n)
	for k := 0; k < n; k++ {
		out[n-1-k] = byte(z.field(8*k, 8))
	}
	return out
}

// SetWords fills z from little-endian 32-bit words, as produced by a random word source.
// Words past the width are ignored.
func (z *Nat) SetWords(words []uint32) *Nat {
	z.SetZero()
	for k, w := range words {
		z.orField(32*k, w&0xFFFF)
		z.orField(32*k+16, w>>16)
	}
	z.normalize()
	return z
}

// widthTag identifies the width in the binary encoding.
func widthTag(w Width) byte {
	return byte(w / 1024)
}

// MarshalBinary implements encoding.BinaryMarshaler.
//
// The encoding is one byte holding width/1024 followed by Bytes().
func (z *Nat) MarshalBinary() ([]byte, error) {
	if z.blocks == nil {
		return nil, opError("MarshalBinary", fmt.Errorf("%w: uninitialised Nat", ErrPrecondition))
	}
	return append([]byte{widthTag(z.width)}, z.Bytes()...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (z *Nat) UnmarshalBinary(buf []byte) error {
	if len(buf) == 0 {
		return opError("UnmarshalBinary", fmt.Errorf("%w: empty buffer", ErrMalformed))
	}
	w := Width(int(buf[0]) * 1024)
	if !w.valid() {
		return opError("UnmarshalBinary", fmt.Errorf("%w: unknown width tag %d", ErrMalformed, buf[0]))
	}
	if len(buf)-1 != int(w)/8 {
		return opError("UnmarshalBinary", fmt.Errorf("%w: length does not match width", ErrMalformed))
	}
	if z.width != w || z.blocks == nil {
		*z = Nat{blocks: make([]uint32, w.Blocks()), width: w}
	}
	z.SetBytes(buf[1:])
	return nil
}
