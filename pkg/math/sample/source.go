// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mrand "math/rand"

	"github.com/zeebo/blake3"
)

// WordSource produces the random 32-bit words used to fill candidates, witnesses and
// signature randomizers.
type WordSource interface {
	Next32() uint32
}

// ReaderSource reads words from an io.Reader such as crypto/rand.Reader.
//
// A reader that keeps failing makes Next32 panic with ErrMaxIterations.
type ReaderSource struct {
	r   io.Reader
	buf [4]byte
}

// NewReaderSource wraps r. A nil r selects crypto/rand.Reader.
func NewReaderSource(r io.Reader) *ReaderSource {
	if r == nil {
		r = rand.Reader
	}
	return &ReaderSource{r: r}
}

func (s *ReaderSource) Next32() uint32 {
	mustReadBits(s.r, s.buf[:])
	return binary.LittleEndian.Uint32(s.buf[:])
}

const (
	mushLagA = 55
	mushTapA = 24
	mushLagB = 52
	mushTapB = 19
)

// Mush combines two additive lagged Fibonacci generators:
//
//	A[i] = A[i-55] + A[i-24] mod 2³²
//	B[i] = B[i-52] + B[i-19] mod 2³²
//
// and outputs the XOR of their newest words. When one generator overflows on a step,
// the other generator is stepped one extra time before the next output.
//
// Mush is deterministic for a given seed and is not safe for concurrent use.
type Mush struct {
	a         [mushLagA]uint32
	b         [mushLagB]uint32
	ia, ib    int
	overflowA bool
	overflowB bool
}

func newMush(words func() uint32) *Mush {
	m := new(Mush)
	for i := range m.a {
		m.a[i] = words()
	}
	for i := range m.b {
		m.b[i] = words()
	}
	return m
}

// NewMush seeds a generator from crypto/rand.
func NewMush() *Mush {
	return newMush(NewReaderSource(rand.Reader).Next32)
}

// NewMushFromSeed seeds a generator deterministically from an integer, for tests and demos.
func NewMushFromSeed(seed int64) *Mush {
	r := mrand.New(mrand.NewSource(seed))
	return newMush(r.Uint32)
}

// NewMushFromBytes expands seed with the BLAKE3 extendable output function and fills
// the generator state from it.
func NewMushFromBytes(seed []byte) *Mush {
	h := blake3.New()
	_, _ = h.Write(seed)
	return newMush(NewReaderSource(h.Digest()).Next32)
}

// stepA advances A in its ring buffer. ia always points at the oldest word, A[i-55].
func (m *Mush) stepA() {
	old := m.a[m.ia]
	tap := m.a[(m.ia+mushLagA-mushTapA)%mushLagA]
	sum := uint64(old) + uint64(tap)
	m.overflowA = sum > 0xFFFFFFFF
	m.a[m.ia] = uint32(sum)
	m.ia = (m.ia + 1) % mushLagA
}

func (m *Mush) stepB() {
	old := m.b[m.ib]
	tap := m.b[(m.ib+mushLagB-mushTapB)%mushLagB]
	sum := uint64(old) + uint64(tap)
	m.overflowB = sum > 0xFFFFFFFF
	m.b[m.ib] = uint32(sum)
	m.ib = (m.ib + 1) % mushLagB
}

func (m *Mush) Next32() uint32 {
	if m.overflowA {
		m.stepB()
	}
	if m.overflowB {
		m.stepA()
	}
	m.stepA()
	m.stepB()
	newestA := m.a[(m.ia+mushLagA-1)%mushLagA]
	newestB := m.b[(m.ib+mushLagB-1)%mushLagB]
	return newestA ^ newestB
}
