// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"fmt"
	"io"

	"ESRabin/pkg/BigInt"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// words draws n words from src.
func words(src WordSource, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = src.Next32()
	}
	return out
}

// Random returns a uniformly random value of width w with at most bits bits.
func Random(src WordSource, w BigInt.Width, bits int) *BigInt.Nat {
	if bits > w.Bits() {
		bits = w.Bits()
	}
	out := BigInt.New(w)
	if bits <= 0 {
		return out
	}
	out.SetWords(words(src, (bits+31)/32))
	for i := bits; i < (bits+31)/32*32; i++ {
		out.ClearBit(i)
	}
	return out
}

// ModN returns a value in [0, n) by rejection sampling on BitLen(n) bits.
func ModN(src WordSource, n *BigInt.Nat) *BigInt.Nat {
	bits := n.BitLen()
	for {
		out := Random(src, n.Width(), bits)
		if out.Cmp(n) < 0 {
			return out
		}
	}
}

// Witness returns a value in (1, n) for a Miller-Rabin round. n must be larger than 3.
func Witness(src WordSource, n *BigInt.Nat) *BigInt.Nat {
	one := BigInt.New(n.Width()).SetUint64(1)
	for {
		x := ModN(src, n)
		if x.Cmp(one) > 0 {
			return x
		}
	}
}
