// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package BigInt

import (
	"errors"
	gobig "math/big"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// activeModulus returns m with its reduction table built and registers the shutdown.
func activeModulus(t *testing.T, m *Nat) *Nat {
	t.Helper()
	require.NoError(t, m.InitModularReduction())
	t.Cleanup(func() {
		if m.ReductionTable() != nil {
			_ = m.ShutDownModularReduction()
		}
	})
	return m
}

func TestMulMontVectors(t *testing.T) {
	cases := []struct{ x, y, m, want string }{
		{"3", "5", "11", "F"},
		{"4cd", "16a0", "11bbf", "11AC1"},
		{"4B", "4B", "6D", "42"},
	}
	for _, c := range cases {
		m := activeModulus(t, mustHex(t, Single, c.m))
		out := NewSingle()
		require.NoError(t, mustHex(t, Single, c.x).MulMont(mustHex(t, Single, c.y), m, out))
		assert.Equal(t, c.want, out.String(), "%s * %s mod %s", c.x, c.y, c.m)
	}
}

func TestModVectors(t *testing.T) {
	m := activeModulus(t, mustHex(t, Single, "11bbf"))

	x := mustHex(t, Single, "f7b15cdf")
	require.NoError(t, x.Mod(m))
	assert.Equal(t, "FA57", x.String())

	y := mustHex(t, Single, "34fd")
	require.NoError(t, y.Mod(m))
	assert.Equal(t, "34FD", y.String())

	z := mustHex(t, Single, "11bbf")
	require.NoError(t, z.Mod(m))
	assert.True(t, z.IsZero())
}

func TestReductionTableContents(t *testing.T) {
	r := mrand.New(mrand.NewSource(21))
	for _, bits := range []int{2, 17, 300, 1024} {
		m := activeModulus(t, randomNat(r, Single, bits))
		table := m.ReductionTable()
		require.NotNil(t, table)
		require.Equal(t, bits-1, table.MostSignificantBit())
		require.Len(t, table.powers, bits+1)
		mb := natToBig(m)
		for i, p := range table.powers {
			want := new(gobig.Int).Lsh(gobig.NewInt(1), uint(table.msb+i))
			want.Mod(want, mb)
			assert.Equal(t, 0, want.Cmp(natToBig(p)), "bits %d entry %d", bits, i)
		}
	}
}

func TestModMatchesBig(t *testing.T) {
	r := mrand.New(mrand.NewSource(23))
	for _, bits := range []int{5, 64, 511, 512, 1000, 1024} {
		m := activeModulus(t, randomNat(r, Single, bits))
		mb := natToBig(m)
		for i := 0; i < 20; i++ {
			x := randomNat(r, Double, 1+r.Intn(2*bits))
			want := new(gobig.Int).Mod(natToBig(x), mb)
			require.NoError(t, x.Mod(m))
			assert.Equal(t, 0, want.Cmp(natToBig(x)), "modulus bits %d", bits)
		}
	}
}

func TestReduceLongValues(t *testing.T) {
	r := mrand.New(mrand.NewSource(27))
	for _, bits := range []int{1, 2, 9, 127, 700} {
		m := activeModulus(t, randomNat(r, Single, bits))
		mb := natToBig(m)
		for _, xbits := range []int{bits, 2*bits + 3, 2048} {
			x := randomNat(r, Double, xbits)
			want := new(gobig.Int).Mod(natToBig(x), mb)
			require.NoError(t, x.Reduce(m))
			assert.Equal(t, 0, want.Cmp(natToBig(x)), "modulus bits %d, value bits %d", bits, xbits)
		}
	}
}

func TestMulMontMatchesBig(t *testing.T) {
	r := mrand.New(mrand.NewSource(29))
	for _, bits := range []int{2, 31, 257, 512, 1023, 1024} {
		m := randomNat(r, Single, bits)
		m.SetBit(0)
		activeModulus(t, m)
		mb := natToBig(m)
		for i := 0; i < 10; i++ {
			x := NewSingle().CopyContent(randomNat(r, Single, bits))
			y := NewSingle().CopyContent(randomNat(r, Single, bits))
			require.NoError(t, x.Mod(m))
			require.NoError(t, y.Mod(m))
			want := new(gobig.Int).Mul(natToBig(x), natToBig(y))
			want.Mod(want, mb)

			out := NewSingle()
			require.NoError(t, x.MulMont(y, m, out))
			assert.Equal(t, 0, want.Cmp(natToBig(out)), "modulus bits %d", bits)

			// out may alias an operand
			sq := new(gobig.Int).Mul(natToBig(x), natToBig(x))
			sq.Mod(sq, mb)
			require.NoError(t, x.MulMont(x, m, x))
			assert.Equal(t, 0, sq.Cmp(natToBig(x)))
		}
	}
}

func TestMulMontLargeModulusCarry(t *testing.T) {
	// m close to 2^1024 makes the accumulator overflow the Single width
	m := NewSingle().SetMax()
	activeModulus(t, m)
	x := NewSingle().SetMax()
	_, _ = x.Sub(NewSingle().SetUint64(1))
	out := NewSingle()
	require.NoError(t, x.MulMont(x, m, out))
	// (m-1)^2 = 1 mod m
	assert.True(t, out.IsOne())
}

func TestModularPreconditions(t *testing.T) {
	x := NewSingle().SetUint64(10)
	m := NewSingle().SetUint64(17)
	out := NewSingle()

	err := x.MulMont(x, m, out)
	assert.True(t, errors.Is(err, ErrNoReductionTable))
	assert.True(t, errors.Is(x.Mod(m), ErrNoReductionTable))
	assert.True(t, errors.Is(x.Exp(x, m, out), ErrPrecondition))
	assert.True(t, errors.Is(m.ShutDownModularReduction(), ErrNoReductionTable))

	assert.True(t, errors.Is(NewSingle().InitModularReduction(), ErrZeroModulus))
	assert.True(t, errors.Is(NewDouble().SetUint64(5).InitModularReduction(), ErrWidthMismatch))

	require.NoError(t, m.InitModularReduction())
	assert.True(t, errors.Is(m.InitModularReduction(), ErrTableActive))

	big := NewSingle().SetBit(40)
	assert.True(t, errors.Is(big.Mod(m), ErrReductionRange))
	assert.True(t, errors.Is(big.MulMont(x, m, out), ErrOperandRange))

	m.SetUint64(19)
	assert.True(t, errors.Is(x.Mod(m), ErrModulusChanged))
	m.SetUint64(17)
	require.NoError(t, x.Mod(m))
	require.NoError(t, m.ShutDownModularReduction())
	assert.Nil(t, m.ReductionTable())

	even := activeModulus(t, NewSingle().SetUint64(16))
	assert.True(t, errors.Is(x.MulMont(x, even, out), ErrEvenModulus))
	require.NoError(t, x.Mod(even))
	assert.Equal(t, uint64(10), x.Uint64())
}

func BenchmarkMulMont(b *testing.B) {
	r := mrand.New(mrand.NewSource(31))
	m := randomNat(r, Single, 1024)
	m.SetBit(0)
	if err := m.InitModularReduction(); err != nil {
		b.Fatal(err)
	}
	x := randomNat(r, Single, 1000)
	y := randomNat(r, Single, 1000)
	out := NewSingle()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = x.MulMont(y, m, out)
	}
}
