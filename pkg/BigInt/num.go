// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

import (
	"fmt"
	"strings"
)

const (
	blockBits = 30
	blockMask = 1<<blockBits - 1
	// markerBit sits just above an ordinary block; Sub borrows from it.
	markerBit = 1 << blockBits
)

// Width is the fixed bit length of a Nat.
type Width int

const (
	// Single is the width of keys, hashes and every modular operand.
	Single Width = 1024
	// Double holds products of two Single values before they are reduced.
	Double Width = 2048
)

// Bits returns the number of bits of the width.
func (w Width) Bits() int {
	return int(w)
}

// Blocks returns the number of 30-bit blocks needed to hold the width.
func (w Width) Blocks() int {
	return (int(w) + blockBits - 1) / blockBits
}

// LastBlockBits returns the number of significant bits in the most significant block.
func (w Width) LastBlockBits() int {
	if r := int(w) % blockBits; r != 0 {
		return r
	}
	return blockBits
}

// LastBlockMask returns the largest legal value of the most significant block.
func (w Width) LastBlockMask() uint32 {
	return 1<<uint(w.LastBlockBits()) - 1
}

func (w Width) valid() bool {
	return w == Single || w == Double
}

// Nat is a non-negative integer of fixed width.
//
// The value is stored as little-endian blocks of 30 bits each, except for the
// last block which holds Width.LastBlockBits bits. Arithmetic wraps modulo 2^width.
type Nat struct {
	blocks []uint32
	width  Width
	// table is set while this value acts as a modulus, see InitModularReduction.
	table *ReductionTable
}

// New returns a zero Nat of width w. It panics if w is neither Single nor Double.
func New(w Width) *Nat {
	if !w.valid() {
		panic(fmt.Sprintf("BigInt: unsupported width %d", w))
	}
	return &Nat{blocks: make([]uint32, w.Blocks()), width: w}
}

// NewSingle returns a zero Nat of width Single.
func NewSingle() *Nat {
	return New(Single)
}

// NewDouble returns a zero Nat of width Double.
func NewDouble() *Nat {
	return New(Double)
}

// Width returns the fixed width of z.
func (z *Nat) Width() Width {
	return z.width
}

// block returns the i'th block of z, or 0 past the end.
func (z *Nat) block(i int) uint32 {
	if i < len(z.blocks) {
		return z.blocks[i]
	}
	return 0
}

// usedBlocks returns the number of blocks up to and including the top non-zero one.
func (z *Nat) usedBlocks() int {
	n := len(z.blocks)
	for n > 0 && z.blocks[n-1] == 0 {
		n--
	}
	return n
}

// normalize masks the last block to its legal range.
func (z *Nat) normalize() {
	z.blocks[len(z.blocks)-1] &= z.width.LastBlockMask()
}

// SetZero sets z to 0 and returns z.
func (z *Nat) SetZero() *Nat {
	for i := range z.blocks {
		z.blocks[i] = 0
	}
	return z
}

// SetMax sets z to 2^width - 1 and returns z.
func (z *Nat) SetMax() *Nat {
	for i := range z.blocks {
		z.blocks[i] = blockMask
	}
	z.normalize()
	return z
}

// SetUint64 sets z to x, and returns z
func (z *Nat) SetUint64(x uint64) *Nat {
	z.SetZero()
	for i := 0; x != 0 && i < len(z.blocks); i++ {
		z.blocks[i] = uint32(x & blockMask)
		x >>= blockBits
	}
	z.normalize()
	return z
}

// Uint64 returns the low 64 bits of z.
func (z *Nat) Uint64() uint64 {
	return uint64(z.block(0)) | uint64(z.block(1))<<blockBits | uint64(z.block(2))<<(2*blockBits)
}

// IsZero reports whether z == 0.
func (z *Nat) IsZero() bool {
	return z.usedBlocks() == 0
}

// IsOne reports whether z == 1.
func (z *Nat) IsOne() bool {
	return z.blocks[0] == 1 && z.usedBlocks() == 1
}

// IsEven reports whether the lowest bit of z is clear.
func (z *Nat) IsEven() bool {
	return z.blocks[0]&1 == 0
}

// Clone returns a copy of this value.
//
// This copy can safely be mutated without affecting the original. The reduction
// table, if any, is not copied.
func (z *Nat) Clone() *Nat {
	c := New(z.width)
	copy(c.blocks, z.blocks)
	return c
}

// CopyContent copies the overlapping low blocks of x into z and clears the rest.
// x may have any width; a Double value copied into a Single one is truncated modulo 2^1024.
func (z *Nat) CopyContent(x *Nat) *Nat {
	if z == x {
		return z
	}
	n := copy(z.blocks, x.blocks)
	for i := n; i < len(z.blocks); i++ {
		z.blocks[i] = 0
	}
	z.normalize()
	return z
}

// Swap exchanges the values of z and x, which must have the same width.
func (z *Nat) Swap(x *Nat) error {
	if z.width != x.width {
		return opError("Swap", ErrWidthMismatch)
	}
	z.blocks, x.blocks = x.blocks, z.blocks
	return nil
}

// Cmp compares two Nats, returning:
//
//	-1 if z <  x
//	 0 if z == x
//	+1 if z >  x
//
// The widths may differ.
func (z *Nat) Cmp(x *Nat) int {
	zn, xn := len(z.blocks), len(x.blocks)
	n := zn
	if xn < n {
		n = xn
	}
	for i := zn - 1; i >= n; i-- {
		if z.blocks[i] != 0 {
			return 1
		}
	}
	for i := xn - 1; i >= n; i-- {
		if x.blocks[i] != 0 {
			return -1
		}
	}
	for i := n - 1; i >= 0; i-- {
		switch {
		case z.blocks[i] > x.blocks[i]:
			return 1
		case z.blocks[i] < x.blocks[i]:
			return -1
		}
	}
	return 0
}

// Cmp3 compares two Nats, returning results for (>, =, <) in that order.
//
// Because these relations are mutually exclusive, exactly one of these values
// will be 1.
func (z *Nat) Cmp3(x *Nat) (int, int, int) {
	switch z.Cmp(x) {
	case 1:
		return 1, 0, 0
	case 0:
		return 0, 1, 0
	default:
		return 0, 0, 1
	}
}

// Eq checks if z = x.
func (z *Nat) Eq(x *Nat) bool {
	return z.Cmp(x) == 0
}

// add adds x into z block by block and returns the carry out of the top block of z.
// Blocks of x past the width of z are ignored.
func (z *Nat) add(x *Nat) uint32 {
	var carry uint32
	last := len(z.blocks) - 1
	for i := 0; i < last; i++ {
		s := z.blocks[i] + x.block(i) + carry
		carry = s >> blockBits
		z.blocks[i] = s & blockMask
	}
	s := z.blocks[last] + x.block(last) + carry
	carry = s >> uint(z.width.LastBlockBits())
	z.blocks[last] = s & z.width.LastBlockMask()
	return carry
}

// sub subtracts x from z and returns the borrow out of the top block of z.
// Every block is first lifted by the marker bit above it; a cleared marker after the
// subtraction means the block borrowed.
func (z *Nat) sub(x *Nat) uint32 {
	var borrow uint32
	last := len(z.blocks) - 1
	for i := 0; i < last; i++ {
		d := (z.blocks[i] | markerBit) - x.block(i) - borrow
		borrow = 1 ^ (d >> blockBits & 1)
		z.blocks[i] = d & blockMask
	}
	lastBits := uint(z.width.LastBlockBits())
	d := (z.blocks[last] | 1<<lastBits) - x.block(last) - borrow
	borrow = 1 ^ (d >> lastBits & 1)
	z.blocks[last] = d & z.width.LastBlockMask()
	return borrow
}

// Add calculates z <- z + x modulo 2^width and returns the carry out (0 or 1).
func (z *Nat) Add(x *Nat) (uint32, error) {
	if z.width != x.width {
		return 0, opError("Add", ErrWidthMismatch)
	}
	return z.add(x), nil
}

// Sub calculates z <- z - x modulo 2^width and returns the borrow out (0 or 1).
func (z *Nat) Sub(x *Nat) (uint32, error) {
	if z.width != x.width {
		return 0, opError("Sub", ErrWidthMismatch)
	}
	return z.sub(x), nil
}

// String will represent this Nat as a Hex string without leading zeros.
func (z *Nat) String() string {
	s := strings.TrimLeft(z.Hex(), "0")
	if s == "" {
		return "0"
	}
	return s
}
