// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

// GCD sets out to the greatest common divisor of z and a using the binary algorithm.
// z and a must have the same width; gcd(0, a) = a.
func (z *Nat) GCD(a, out *Nat) error {
	if z.width != a.width {
		return opError("GCD", ErrWidthMismatch)
	}
	x, y := z.Clone(), a.Clone()
	if x.IsZero() {
		out.CopyContent(y)
		return nil
	}
	if y.IsZero() {
		out.CopyContent(x)
		return nil
	}
	// common powers of two
	shift := 0
	for x.IsEven() && y.IsEven() {
		x.ShiftRightBit()
		y.ShiftRightBit()
		shift++
	}
	for x.IsEven() {
		x.ShiftRightBit()
	}
	// x stays odd from here on
	for !y.IsZero() {
		for y.IsEven() {
			y.ShiftRightBit()
		}
		if x.Cmp(y) > 0 {
			x.blocks, y.blocks = y.blocks, x.blocks
		}
		y.sub(x)
	}
	out.CopyContent(x.ShiftLeft(shift))
	return nil
}

// Coprime reports whether gcd(z, a) == 1.
func (z *Nat) Coprime(a *Nat) (bool, error) {
	g := New(z.width)
	if err := z.GCD(a, g); err != nil {
		return false, err
	}
	return g.IsOne(), nil
}
