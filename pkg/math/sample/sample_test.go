// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	gobig "math/big"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"

	"ESRabin/pkg/BigInt"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// shiftMush steps the generator by moving every word down, like a textbook lagged
// Fibonacci register.
type shiftMush struct {
	a, b       []uint32
	ovfA, ovfB bool
}

func (m *shiftMush) runA() {
	sum := uint64(m.a[0]) + uint64(m.a[55-24])
	m.ovfA = sum > 0xFFFFFFFF
	m.a = append(m.a[1:], uint32(sum))
}

func (m *shiftMush) runB() {
	sum := uint64(m.b[0]) + uint64(m.b[52-19])
	m.ovfB = sum > 0xFFFFFFFF
	m.b = append(m.b[1:], uint32(sum))
}

func (m *shiftMush) next() uint32 {
	if m.ovfA {
		m.runB()
	}
	if m.ovfB {
		m.runA()
	}
	m.runA()
	m.runB()
	return m.a[len(m.a)-1] ^ m.b[len(m.b)-1]
}

func TestMushMatchesShiftRegister(t *testing.T) {
	m := NewMushFromSeed(7)
	ref := &shiftMush{
		a: append([]uint32(nil), m.a[:]...),
		b: append([]uint32(nil), m.b[:]...),
	}
	for i := 0; i < 2000; i++ {
		require.Equal(t, ref.next(), m.Next32(), "word %d", i)
	}
}

func TestMushSeeding(t *testing.T) {
	a, b := NewMushFromSeed(1), NewMushFromSeed(1)
	c := NewMushFromSeed(2)
	same, differ := true, false
	for i := 0; i < 100; i++ {
		x, y, z := a.Next32(), b.Next32(), c.Next32()
		same = same && x == y
		differ = differ || x != z
	}
	assert.True(t, same)
	assert.True(t, differ)

	d, e := NewMushFromBytes([]byte("seed")), NewMushFromBytes([]byte("seed"))
	assert.Equal(t, d.Next32(), e.Next32())
	assert.NotEqual(t, NewMushFromBytes([]byte("seed")).a, NewMushFromBytes([]byte("seeD")).a)

	// crypto seeded generators differ
	assert.NotEqual(t, NewMush().a, NewMush().a)
}

func TestReaderSource(t *testing.T) {
	src := NewReaderSource(bytes.NewReader([]byte{0x04, 0x03, 0x02, 0x01, 0xFF, 0, 0, 0}))
	assert.Equal(t, uint32(0x01020304), src.Next32())
	assert.Equal(t, uint32(0xFF), src.Next32())

	failing := NewReaderSource(iotest.ErrReader(errors.New("broken")))
	assert.PanicsWithValue(t, ErrMaxIterations, func() { failing.Next32() })

	assert.Equal(t, rand.Reader, NewReaderSource(nil).r)
}

func TestFromMnemonic(t *testing.T) {
	k1, s1, err := FromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	k2, s2, err := FromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	k3, _, err := FromMnemonic(testMnemonic, "TREZOR")
	require.NoError(t, err)

	assert.Equal(t, k1.a, k2.a)
	assert.Equal(t, s1.b, s2.b)
	assert.NotEqual(t, k1.a, s1.a, "keygen and signing sources must be independent")
	assert.NotEqual(t, k1.a, k3.a, "passphrase must change the sources")

	_, _, err = FromMnemonic("abandon abandon abandon", "")
	assert.Error(t, err)

	m, err := NewMnemonic()
	require.NoError(t, err)
	assert.True(t, bip39.IsMnemonicValid(m))
	_, _, err = FromMnemonic(m, "")
	assert.NoError(t, err)
}

func TestRandom(t *testing.T) {
	src := NewMushFromSeed(3)
	for _, bits := range []int{0, 1, 31, 32, 33, 500, 1024, 2000} {
		x := Random(src, BigInt.Single, bits)
		assert.LessOrEqual(t, x.BitLen(), bits)
		assert.Equal(t, BigInt.Single, x.Width())
	}
	n := BigInt.NewSingle().SetUint64(3 * 11 * 65519)
	for i := 0; i < 50; i++ {
		assert.Equal(t, -1, ModN(src, n).Cmp(n))
		w := Witness(src, BigInt.NewSingle().SetUint64(5))
		assert.True(t, w.Uint64() > 1 && w.Uint64() < 5)
	}
}

func TestPrimes(t *testing.T) {
	assert.Equal(t, []uint32{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}, smallPrimes)
}

func TestSimpleDivisionCases(t *testing.T) {
	cases := []struct {
		x    uint64
		want bool
	}{
		{2, true}, {3, true}, {37, true}, {41, true}, {43 * 47, true},
		{4, false}, {9, false}, {3 * 41, false}, {37 * 1009, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TestSimpleDivision(BigInt.NewSingle().SetUint64(c.x)), "%d", c.x)
	}
}

func natFromBig(x *gobig.Int) *BigInt.Nat {
	return BigInt.NewSingle().SetBytes(x.Bytes())
}

func TestMillerRabinKnownValues(t *testing.T) {
	src := NewMushFromSeed(11)
	one := gobig.NewInt(1)
	m61 := new(gobig.Int).Sub(new(gobig.Int).Lsh(one, 61), one)
	m127 := new(gobig.Int).Sub(new(gobig.Int).Lsh(one, 127), one)
	m31 := new(gobig.Int).Sub(new(gobig.Int).Lsh(one, 31), one)

	known := []*gobig.Int{gobig.NewInt(2), gobig.NewInt(3), gobig.NewInt(5), gobig.NewInt(7),
		gobig.NewInt(65537), m61, m127}
	for _, p := range known {
		ok, err := TestMillerRabin(src, natFromBig(p), 10)
		require.NoError(t, err)
		assert.True(t, ok, "%s is prime", p)
	}

	composites := []*gobig.Int{gobig.NewInt(1), gobig.NewInt(9), gobig.NewInt(561), gobig.NewInt(41041),
		new(gobig.Int).Mul(m61, m31), new(gobig.Int).Mul(m127, m61)}
	for _, c := range composites {
		ok, err := TestMillerRabin(src, natFromBig(c), 20)
		require.NoError(t, err)
		assert.False(t, ok, "%s is composite", c)
	}

	_, err := TestMillerRabin(src, BigInt.NewDouble().SetUint64(7), 3)
	assert.True(t, errors.Is(err, BigInt.ErrWidthMismatch))

	// the table is released after the test
	x := BigInt.NewSingle().SetUint64(65537)
	_, err = TestMillerRabin(src, x, 3)
	require.NoError(t, err)
	assert.Nil(t, x.ReductionTable())
}

func TestGeneratePrime(t *testing.T) {
	src := NewMushFromSeed(13)
	for _, bits := range []int{16, 128, 256} {
		p, err := GeneratePrime(context.Background(), src, bits, DefaultRounds)
		require.NoError(t, err)
		assert.Equal(t, bits, p.BitLen())
		assert.True(t, TestSimpleDivision(p))
		ok, err := TestMillerRabin(src, p, DefaultRounds)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, new(gobig.Int).SetBytes(p.Bytes()).ProbablyPrime(20), "%s", p)
	}

	_, err := GeneratePrime(context.Background(), src, 2, 0)
	assert.ErrorIs(t, err, ErrBitSize)
	_, err = GeneratePrime(context.Background(), src, 1025, 0)
	assert.ErrorIs(t, err, ErrBitSize)
}

func TestGenerateBlumPrime(t *testing.T) {
	src := NewMushFromSeed(17)
	for i := 0; i < 3; i++ {
		p, err := GenerateBlumPrime(context.Background(), src, 160, 0)
		require.NoError(t, err)
		rem, err := p.ModWord(4)
		require.NoError(t, err)
		assert.Equal(t, uint32(3), rem)
		assert.Equal(t, 160, p.BitLen())
		assert.True(t, new(gobig.Int).SetBytes(p.Bytes()).ProbablyPrime(20))
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GeneratePrime(ctx, NewMushFromSeed(1), 512, 0)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = GenerateBlumInteger(ctx, NewMushFromSeed(1), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBlumPrimes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full size Blum integer generation in short mode")
	}
	n, r, s, err := GenerateBlumPrimes(context.Background(), NewMushFromSeed(19), 0)
	require.NoError(t, err)
	assert.Equal(t, -1, r.Cmp(s))
	for _, p := range []*BigInt.Nat{r, s} {
		assert.Equal(t, HalfBits, p.BitLen())
		rem, _ := p.ModWord(4)
		assert.Equal(t, uint32(3), rem)
	}
	want := new(gobig.Int).Mul(new(gobig.Int).SetBytes(r.Bytes()), new(gobig.Int).SetBytes(s.Bytes()))
	assert.Equal(t, 0, want.Cmp(new(gobig.Int).SetBytes(n.Bytes())))
	assert.GreaterOrEqual(t, n.BitLen(), 2*HalfBits-1)
}

// This exists to save the results of functions we want to benchmark, to avoid
// having them optimized away.
var resultNat *BigInt.Nat

func BenchmarkGeneratePrime256(b *testing.B) {
	src := NewMushFromSeed(23)
	for i := 0; i < b.N; i++ {
		resultNat, _ = GeneratePrime(context.Background(), src, 256, 0)
	}
}
