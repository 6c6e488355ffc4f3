// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

// Mul calculates z <- x * y with schoolbook multiplication and return an error when the
// product does not fit the width of z. x, y and z may have any width and may alias.
func (z *Nat) Mul(x, y *Nat) error {
	nx, ny := x.usedBlocks(), y.usedBlocks()
	if nx == 0 || ny == 0 {
		z.SetZero()
		return nil
	}
	acc := make([]uint64, nx+ny)
	for i := 0; i < nx; i++ {
		var carry uint64
		xi := uint64(x.blocks[i])
		for j := 0; j < ny; j++ {
			t := acc[i+j] + xi*uint64(y.blocks[j]) + carry
			acc[i+j] = t & blockMask
			carry = t >> blockBits
		}
		acc[i+ny] = carry
	}
	n := len(acc)
	for n > 0 && acc[n-1] == 0 {
		n--
	}
	last := len(z.blocks) - 1
	if n > len(z.blocks) || (n == len(z.blocks) && uint32(acc[last]) > z.width.LastBlockMask()) {
		return opError("Mul", ErrOverflow)
	}
	z.SetZero()
	for i := 0; i < n; i++ {
		z.blocks[i] = uint32(acc[i])
	}
	return nil
}

// MulHalf calculates z <- x * y where both factors fit in half the width of z, so the
// product always fits.
func (z *Nat) MulHalf(x, y *Nat) error {
	half := int(z.width) / 2
	if x.BitLen() > half || y.BitLen() > half {
		return opError("MulHalf", ErrOperandRange)
	}
	return z.Mul(x, y)
}

// ModWord returns z mod d for a small divisor d.
func (z *Nat) ModWord(d uint32) (uint32, error) {
	if d == 0 {
		return 0, opError("ModWord", ErrDivisionByZero)
	}
	var rem uint64
	for i := len(z.blocks) - 1; i >= 0; i-- {
		rem = (rem<<blockBits | uint64(z.blocks[i])) % uint64(d)
	}
	return uint32(rem), nil
}

// IsDivisibleBy reports whether d divides z. d must be non-zero.
func (z *Nat) IsDivisibleBy(d uint32) (bool, error) {
	r, err := z.ModWord(d)
	if err != nil {
		return false, err
	}
	return r == 0, nil
}
