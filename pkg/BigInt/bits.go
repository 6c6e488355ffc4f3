// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

import "math/bits"

// Bit returns the value of the i'th bit of z. Positions outside the width read as 0.
func (z *Nat) Bit(i int) uint32 {
	if i < 0 || i >= int(z.width) {
		return 0
	}
	return z.blocks[i/blockBits] >> uint(i%blockBits) & 1
}

// SetBit sets the i'th bit of z and returns z.
func (z *Nat) SetBit(i int) *Nat {
	if i < 0 || i >= int(z.width) {
		return z
	}
	z.blocks[i/blockBits] |= 1 << uint(i%blockBits)
	z.normalize()
	return z
}

// ClearBit clears the i'th bit of z and returns z.
func (z *Nat) ClearBit(i int) *Nat {
	if i < 0 || i >= int(z.width) {
		return z
	}
	z.blocks[i/blockBits] &^= 1 << uint(i%blockBits)
	z.normalize()
	return z
}

// BitLen return the length of z in bits; 0 has length 0.
func (z *Nat) BitLen() int {
	n := z.usedBlocks()
	if n == 0 {
		return 0
	}
	return (n-1)*blockBits + bits.Len32(z.blocks[n-1])
}

// MostSignificantBit returns the position of the highest set bit, or -1 for 0.
func (z *Nat) MostSignificantBit() int {
	return z.BitLen() - 1
}

// field returns n <= 30 bits of z starting at bit pos.
func (z *Nat) field(pos, n int) uint32 {
	i, off := pos/blockBits, uint(pos%blockBits)
	v := uint64(z.block(i)) >> off
	if int(off)+n > blockBits {
		v |= uint64(z.block(i+1)) << (blockBits - off)
	}
	return uint32(v & (1<<uint(n) - 1))
}

// orField ors v, at most 30 bits wide, into z at bit pos. Bits past the width are dropped
// once the caller normalizes.
func (z *Nat) orField(pos int, v uint32) {
	i, off := pos/blockBits, uint(pos%blockBits)
	w := uint64(v) << off
	if i < len(z.blocks) {
		z.blocks[i] |= uint32(w & blockMask)
	}
	if i+1 < len(z.blocks) {
		z.blocks[i+1] |= uint32(w >> blockBits)
	}
}

// ShiftLeftBlock shifts z left by n whole blocks (30·n bits) and returns z.
func (z *Nat) ShiftLeftBlock(n int) *Nat {
	if n <= 0 {
		return z
	}
	if n >= len(z.blocks) {
		return z.SetZero()
	}
	copy(z.blocks[n:], z.blocks[:len(z.blocks)-n])
	for i := 0; i < n; i++ {
		z.blocks[i] = 0
	}
	z.normalize()
	return z
}

// ShiftRightBlock shifts z right by n whole blocks (30·n bits) and returns z.
func (z *Nat) ShiftRightBlock(n int) *Nat {
	if n <= 0 {
		return z
	}
	if n >= len(z.blocks) {
		return z.SetZero()
	}
	copy(z.blocks, z.blocks[n:])
	for i := len(z.blocks) - n; i < len(z.blocks); i++ {
		z.blocks[i] = 0
	}
	return z
}

// ShiftLeft calculates z <- z << n modulo 2^width and returns z.
func (z *Nat) ShiftLeft(n int) *Nat {
	if n <= 0 {
		return z
	}
	if n >= int(z.width) {
		return z.SetZero()
	}
	z.ShiftLeftBlock(n / blockBits)
	s := uint(n % blockBits)
	if s == 0 {
		return z
	}
	var carry uint64
	for i, b := range z.blocks {
		v := uint64(b)<<s | carry
		z.blocks[i] = uint32(v & blockMask)
		carry = v >> blockBits
	}
	z.normalize()
	return z
}

// ShiftRight calculates z <- z >> n and returns z.
func (z *Nat) ShiftRight(n int) *Nat {
	if n <= 0 {
		return z
	}
	if n >= int(z.width) {
		return z.SetZero()
	}
	z.ShiftRightBlock(n / blockBits)
	s := uint(n % blockBits)
	if s == 0 {
		return z
	}
	var carry uint32
	for i := len(z.blocks) - 1; i >= 0; i-- {
		b := z.blocks[i]
		z.blocks[i] = b>>s | carry
		carry = (b & (1<<s - 1)) << (blockBits - s)
	}
	return z
}

// ShiftRightBit shifts z right by a single bit and returns z.
func (z *Nat) ShiftRightBit() *Nat {
	return z.ShiftRight(1)
}
