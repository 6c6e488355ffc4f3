// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package arith

import (
	"errors"
	"fmt"

	"ESRabin/pkg/BigInt"
)

// ErrNotBlum is returned when a factor is not congruent to 3 mod 4, so square roots
// cannot be taken with a single exponentiation.
var ErrNotBlum = errors.New("arith: factor is not 3 mod 4")

// Modulus holds n = p⋅q with its factorization and enables CRT arithmetic mod n.
// When n = p⋅q, xᵉ (mod n) can be computed with only two exponentiations
// with p and q respectively.
//
// The reduction tables of p and q must stay active while the Modulus is used.
type Modulus struct {
	// represents modulus n
	n *BigInt.Nat
	// n = p⋅q
	p, q *BigInt.Nat
	// pInv = p⁻¹ (mod q)
	pInv *BigInt.Nat
}

// ModulusFromFactors creates the necessary cached values to accelerate
// exponentiation mod n. p and q must be distinct primes with active reduction tables.
//
// p⁻¹ (mod q) is computed as p^(q-2) (mod q).
func ModulusFromFactors(p, q *BigInt.Nat) (*Modulus, error) {
	n := BigInt.NewSingle()
	if err := n.Mul(p, q); err != nil {
		return nil, err
	}
	two := BigInt.NewSingle().SetUint64(2)
	e := q.Clone()
	if _, err := e.Sub(two); err != nil {
		return nil, err
	}
	pInv := BigInt.NewSingle()
	if err := p.Exp(e, q, pInv); err != nil {
		return nil, fmt.Errorf("arith: p⁻¹ mod q: %w", err)
	}
	return &Modulus{
		n:    n,
		p:    p,
		q:    q,
		pInv: pInv,
	}, nil
}

// N returns a copy of n.
func (m *Modulus) N() *BigInt.Nat {
	return m.n.Clone()
}

// BitLen return the length of n in Modulus
func (m *Modulus) BitLen() int {
	return m.n.BitLen()
}

// PInv returns a copy of p⁻¹ (mod q).
func (m *Modulus) PInv() *BigInt.Nat {
	return m.pInv.Clone()
}

// Combine sets out to the unique x < n with x = xp (mod p) and x = xq (mod q), using
// Garner's formula
//
//	x = xp + p ⋅ [(xq - xp) ⋅ p⁻¹ (mod q)]
//
// xp must be reduced mod p and xq mod q.
func (m *Modulus) Combine(xp, xq, out *BigInt.Nat) error {
	// xp (mod q)
	t := BigInt.NewSingle().CopyContent(xp)
	if err := t.Reduce(m.q); err != nil {
		return err
	}
	d := BigInt.NewSingle().CopyContent(xq)
	if d.Cmp(t) < 0 {
		if _, err := d.Add(m.q); err != nil {
			return err
		}
	}
	if _, err := d.Sub(t); err != nil {
		return err
	}
	if err := d.MulMont(m.pInv, m.q, d); err != nil {
		return err
	}
	r := BigInt.NewSingle()
	if err := r.Mul(m.p, d); err != nil {
		return err
	}
	if _, err := r.Add(BigInt.NewSingle().CopyContent(xp)); err != nil {
		return err
	}
	out.CopyContent(r)
	return nil
}

// IsQuadraticResidue applies Euler's criterion mod p and mod q: x is a square mod n
// iff x^((p-1)/2) = 1 (mod p) and x^((q-1)/2) = 1 (mod q).
// Values sharing a factor with n are reported as non-residues.
func (m *Modulus) IsQuadraticResidue(x *BigInt.Nat) (bool, error) {
	res := BigInt.NewSingle()
	for _, f := range []*BigInt.Nat{m.p, m.q} {
		// f is odd, so f >> 1 is (f-1)/2
		e := f.Clone().ShiftRightBit()
		if err := x.Exp(e, f, res); err != nil {
			return false, err
		}
		if !res.IsOne() {
			return false, nil
		}
	}
	return true, nil
}

// Sqrt sets out to a square root of x mod n, assuming x is a quadratic residue.
// With p = q = 3 (mod 4) the roots are x^((p+1)/4) mod p and x^((q+1)/4) mod q.
func (m *Modulus) Sqrt(x, out *BigInt.Nat) error {
	one := BigInt.NewSingle().SetUint64(1)
	roots := [2]*BigInt.Nat{BigInt.NewSingle(), BigInt.NewSingle()}
	for i, f := range []*BigInt.Nat{m.p, m.q} {
		rem, err := f.ModWord(4)
		if err != nil {
			return err
		}
		if rem != 3 {
			return ErrNotBlum
		}
		e := f.Clone()
		if _, err = e.Add(one); err != nil {
			return err
		}
		e.ShiftRight(2)
		if err = x.Exp(e, f, roots[i]); err != nil {
			return err
		}
	}
	return m.Combine(roots[0], roots[1], out)
}
