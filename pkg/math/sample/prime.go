// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"ESRabin/pkg/BigInt"
)

// primes generates an array containing all the odd prime numbers < below
func primes(below uint32) []uint32 {
	sieve := make([]bool, below)
	// Initially, all numbers starting from 2 are considered prime
	for i := 2; i < len(sieve); i++ {
		sieve[i] = true
	}
	// Now, we remove the multiples of every prime number we encounter
	for p := 2; p*p < len(sieve); p++ {
		if !sieve[p] {
			continue
		}
		for i := p << 1; i < len(sieve); i += p {
			sieve[i] = false
		}
	}
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF))+1)
	for p := uint32(3); p < below; p++ {
		if sieve[p] {
			out = append(out, p)
		}
	}
	return out
}

// smallPrimes is the trial division list 3, 5, 7, ..., 37.
var smallPrimes = primes(38)

// DefaultRounds is the number of Miller-Rabin rounds used when a caller passes zero.
const DefaultRounds = 3

// HalfBits is the size of each factor of a Blum integer.
const HalfBits = 512

// ErrBitSize is returned when a requested prime size does not fit a Single value.
var ErrBitSize = errors.New("sample: prime size must be between 3 and 1024 bits")

// TestSimpleDivision reports whether x has no factor among the small primes.
// A value equal to one of them passes. Even values fail, except 2.
func TestSimpleDivision(x *BigInt.Nat) bool {
	if x.IsEven() {
		return x.BitLen() == 2 && x.Uint64() == 2
	}
	small := x.BitLen() <= 6
	for _, p := range smallPrimes {
		divisible, err := x.IsDivisibleBy(p)
		if err != nil {
			return false
		}
		if divisible && !(small && x.Uint64() == uint64(p)) {
			return false
		}
	}
	return true
}

// TestMillerRabin runs k rounds of the Miller-Rabin test on x with witnesses drawn from
// src. The reduction table of x is built for the duration of the test, so x must not
// already be an active modulus.
func TestMillerRabin(src WordSource, x *BigInt.Nat, k int) (bool, error) {
	if x.Width() != BigInt.Single {
		return false, fmt.Errorf("sample: Miller-Rabin: %w", BigInt.ErrWidthMismatch)
	}
	if x.BitLen() <= 2 {
		// 2 and 3
		return x.BitLen() == 2, nil
	}
	if x.IsEven() {
		return false, nil
	}
	if err := x.InitModularReduction(); err != nil {
		return false, err
	}
	defer func() { _ = x.ShutDownModularReduction() }()

	one := BigInt.NewSingle().SetUint64(1)
	minusOne := x.Clone()
	_, _ = minusOne.Sub(one)

	d := minusOne.Clone()
	s := 0
	for d.IsEven() {
		d.ShiftRightBit()
		s++
	}

	res := BigInt.NewSingle()
	for i := 0; i < k; i++ {
		w := Witness(src, x)
		coprime, err := w.Coprime(x)
		if err != nil {
			return false, err
		}
		if !coprime {
			return false, nil
		}
		if err = w.Exp(d, x, res); err != nil {
			return false, err
		}
		if res.IsOne() || res.Eq(minusOne) {
			continue
		}
		witness := false
		for r := 1; r < s; r++ {
			if err = res.MulMont(res, x, res); err != nil {
				return false, err
			}
			if res.Eq(minusOne) {
				witness = true
				break
			}
			if res.IsOne() {
				return false, nil
			}
		}
		if !witness {
			return false, nil
		}
	}
	return true, nil
}

// IsProbablePrime combines trial division with k Miller-Rabin rounds.
func IsProbablePrime(src WordSource, x *BigInt.Nat, k int) (bool, error) {
	if !TestSimpleDivision(x) {
		return false, nil
	}
	return TestMillerRabin(src, x, k)
}

func checkBits(bits int) error {
	if bits < 3 || bits > BigInt.Single.Bits() {
		return ErrBitSize
	}
	return nil
}

func rounds(k int) int {
	if k <= 0 {
		return DefaultRounds
	}
	return k
}

// GeneratePrime draws odd candidates with exactly bits bits until one passes trial
// division and k Miller-Rabin rounds.
func GeneratePrime(ctx context.Context, src WordSource, bits, k int) (*BigInt.Nat, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	for tries := 1; ; tries++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := Random(src, BigInt.Single, bits).SetBit(0).SetBit(bits - 1)
		ok, err := IsProbablePrime(src, candidate, rounds(k))
		if err != nil {
			return nil, err
		}
		if ok {
			log.Debugf("prime of %d bits found after %d candidates", bits, tries)
			return candidate, nil
		}
	}
}

// GenerateBlumPrime draws a prime p with exactly bits bits and p = 3 mod 4.
// Candidates whose two low bits are not both set are rejected before any test runs.
func GenerateBlumPrime(ctx context.Context, src WordSource, bits, k int) (*BigInt.Nat, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	for tries := 1; ; tries++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := Random(src, BigInt.Single, bits)
		if candidate.Bit(0)&candidate.Bit(1) != 1 {
			continue
		}
		candidate.SetBit(bits - 1)
		ok, err := IsProbablePrime(src, candidate, rounds(k))
		if err != nil {
			return nil, err
		}
		if ok {
			log.Debugf("Blum prime of %d bits found after %d draws", bits, tries)
			return candidate, nil
		}
	}
}

// GenerateBlumPrimes returns two distinct HalfBits Blum primes r < s and their product
// n = r·s.
func GenerateBlumPrimes(ctx context.Context, src WordSource, k int) (n, r, s *BigInt.Nat, err error) {
	log.Debug("r part of the Blum integer generating...")
	if r, err = GenerateBlumPrime(ctx, src, HalfBits, k); err != nil {
		return nil, nil, nil, err
	}
	log.Debug("s part of the Blum integer generating...")
	for {
		if s, err = GenerateBlumPrime(ctx, src, HalfBits, k); err != nil {
			return nil, nil, nil, err
		}
		if !s.Eq(r) {
			break
		}
	}
	if r.Cmp(s) > 0 {
		r, s = s, r
	}
	n = BigInt.NewSingle()
	if err = n.MulHalf(r, s); err != nil {
		return nil, nil, nil, err
	}
	return n, r, s, nil
}

// GenerateBlumInteger returns only the product of GenerateBlumPrimes.
func GenerateBlumInteger(ctx context.Context, src WordSource, k int) (*BigInt.Nat, error) {
	n, _, _, err := GenerateBlumPrimes(ctx, src, k)
	return n, err
}
