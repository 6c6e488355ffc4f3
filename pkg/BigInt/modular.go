// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

// ReductionTable caches the powers of two a modulus needs for table driven reduction.
//
// powers[i] = 2^(msb+i) mod m for i in 0..msb+1. The extra last entry lets Mod accept
// values up to 2·msb+2 bits, which is the length of a shifted Montgomery product.
type ReductionTable struct {
	// modulus is a snapshot of the value the table was built for.
	modulus *Nat
	msb     int
	powers  []*Nat
	active  bool
}

// MostSignificantBit returns the position of the top bit of the modulus.
func (t *ReductionTable) MostSignificantBit() int {
	return t.msb
}

// IsActive reports whether the table may be used.
func (t *ReductionTable) IsActive() bool {
	return t != nil && t.active
}

// InitModularReduction builds the reduction table for z acting as a modulus.
//
// z must be a non-zero Single value. The table stays active until
// ShutDownModularReduction; z must not be modified in between.
func (z *Nat) InitModularReduction() error {
	if z.table.IsActive() {
		return opError("InitModularReduction", ErrTableActive)
	}
	if z.width != Single {
		return opError("InitModularReduction", ErrWidthMismatch)
	}
	if z.IsZero() {
		return opError("InitModularReduction", ErrZeroModulus)
	}
	msb := z.MostSignificantBit()
	t := &ReductionTable{
		modulus: z.Clone(),
		msb:     msb,
		powers:  make([]*Nat, msb+2),
	}
	v := NewDouble().SetBit(msb)
	if v.Cmp(z) >= 0 {
		v.sub(z)
	}
	for i := range t.powers {
		if i > 0 {
			v.ShiftLeft(1)
			if v.Cmp(z) >= 0 {
				v.sub(z)
			}
		}
		t.powers[i] = NewSingle().CopyContent(v)
	}
	t.active = true
	z.table = t
	return nil
}

// ShutDownModularReduction releases the reduction table of z.
func (z *Nat) ShutDownModularReduction() error {
	if !z.table.IsActive() {
		return opError("ShutDownModularReduction", ErrNoReductionTable)
	}
	z.table.active = false
	z.table = nil
	return nil
}

// ReductionTable returns the table of z, or nil when z is not an active modulus.
func (z *Nat) ReductionTable() *ReductionTable {
	if !z.table.IsActive() {
		return nil
	}
	return z.table
}

// activeTable returns the table of m after checking it is usable.
func (m *Nat) activeTable(op string) (*ReductionTable, error) {
	if !m.table.IsActive() {
		return nil, opError(op, ErrNoReductionTable)
	}
	if m.Cmp(m.table.modulus) != 0 {
		return nil, opError(op, ErrModulusChanged)
	}
	return m.table, nil
}

// Mod calculates z <- z mod m in place using the reduction table of m.
//
// Every set bit i of z above msb(m) is replaced by the cached 2^i mod m. z may be
// Single or Double but must not be longer than 2·msb(m)+2 bits.
func (z *Nat) Mod(m *Nat) error {
	t, err := m.activeTable("Mod")
	if err != nil {
		return err
	}
	n := t.modulus
	bitLen := z.BitLen()
	if bitLen > 2*t.msb+2 {
		return opError("Mod", ErrReductionRange)
	}
	if bitLen > t.msb+1 {
		acc := NewDouble()
		for i := bitLen - 1; i > t.msb; i-- {
			if z.Bit(i) == 0 {
				continue
			}
			z.ClearBit(i)
			acc.add(t.powers[i-t.msb])
			if acc.Cmp(n) >= 0 {
				acc.sub(n)
			}
		}
		acc.add(z)
		for acc.Cmp(n) >= 0 {
			acc.sub(n)
		}
		z.CopyContent(acc)
		return nil
	}
	for z.Cmp(n) >= 0 {
		z.sub(n)
	}
	return nil
}

// Reduce calculates z <- z mod m for a value of any length.
//
// Values Mod can handle go through the table; longer ones are folded in from the top
// bit by bit with shift and subtract.
func (z *Nat) Reduce(m *Nat) error {
	t, err := m.activeTable("Reduce")
	if err != nil {
		return err
	}
	bitLen := z.BitLen()
	if bitLen <= 2*t.msb+2 {
		return z.Mod(m)
	}
	acc := NewDouble()
	for i := bitLen - 1; i >= 0; i-- {
		acc.ShiftLeft(1)
		if z.Bit(i) == 1 {
			acc.SetBit(0)
		}
		if acc.Cmp(t.modulus) >= 0 {
			acc.sub(t.modulus)
		}
	}
	z.CopyContent(acc)
	return nil
}

// MulMont calculates out <- z * y mod m with bit-serial Montgomery multiplication.
//
// The loop yields z·y·2^-(msb+1) mod m; the result is shifted back up and reduced
// with Mod, so out holds the ordinary product. m must be odd with an active table,
// z and y must not be longer than m. out may alias z or y.
func (z *Nat) MulMont(y, m, out *Nat) error {
	t, err := m.activeTable("MulMont")
	if err != nil {
		return err
	}
	n := t.modulus
	if n.IsEven() {
		return opError("MulMont", ErrEvenModulus)
	}
	k := t.msb + 1
	if z.BitLen() > k || y.BitLen() > k {
		return opError("MulMont", ErrOperandRange)
	}

	a := NewSingle()
	// hi holds the bits of the accumulator above the Single width
	var hi uint32
	top := Single.Bits() - 1
	y0 := y.Bit(0)
	for i := 0; i < k; i++ {
		xi := z.Bit(i)
		u := (a.Bit(0) + xi&y0) & 1
		if xi == 1 {
			hi += a.add(y)
		}
		if u == 1 {
			hi += a.add(n)
		}
		a.ShiftRightBit()
		if hi&1 == 1 {
			a.SetBit(top)
		}
		hi >>= 1
	}

	r := NewDouble().CopyContent(a)
	for j := 0; hi != 0; j++ {
		if hi&1 == 1 {
			r.SetBit(Single.Bits() + j)
		}
		hi >>= 1
	}
	for r.Cmp(n) >= 0 {
		r.sub(n)
	}
	r.ShiftLeft(k)
	if err = r.Mod(m); err != nil {
		return err
	}
	out.CopyContent(r)
	return nil
}
