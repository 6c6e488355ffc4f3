// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

// WindowBits is the exponent window used by Exp.
const WindowBits = 5

// SplitToRWords splits z into k-bit words, most significant word first.
// Zero splits into no words.
func (z *Nat) SplitToRWords(k int) []uint32 {
	n := (z.BitLen() + k - 1) / k
	words := make([]uint32, n)
	for j := 0; j < n; j++ {
		words[n-1-j] = z.field(j*k, k)
	}
	return words
}

// Exp sets out = z**e mod m, and returns an error if m has no active reduction table.
//
// The exponent is consumed in WindowBits-wide windows from the top; each window costs
// WindowBits squarings plus one multiplication when the window is non-zero.
// out may alias z or e.
func (z *Nat) Exp(e, m, out *Nat) error {
	if _, err := m.activeTable("Exp"); err != nil {
		return err
	}
	base := NewDouble().CopyContent(z)
	if err := base.Reduce(m); err != nil {
		return err
	}
	b := NewSingle().CopyContent(base)

	one := NewSingle().SetUint64(1)
	if err := one.Mod(m); err != nil {
		return err
	}
	windows := e.SplitToRWords(WindowBits)
	if len(windows) == 0 {
		out.CopyContent(one)
		return nil
	}

	var powers [1 << WindowBits]*Nat
	powers[0] = one
	for i := 1; i < len(powers); i++ {
		powers[i] = NewSingle()
		if err := powers[i-1].MulMont(b, m, powers[i]); err != nil {
			return err
		}
	}

	acc := one.Clone()
	for i, w := range windows {
		if i > 0 {
			for j := 0; j < WindowBits; j++ {
				if err := acc.MulMont(acc, m, acc); err != nil {
					return err
				}
			}
		}
		if w != 0 {
			if err := acc.MulMont(powers[w], m, acc); err != nil {
				return err
			}
		}
	}
	out.CopyContent(acc)
	return nil
}
