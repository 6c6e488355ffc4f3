// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package save

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ESRabin/pkg/BigInt"
	"ESRabin/pkg/hash"
	"ESRabin/pkg/rabin"
)

type MickeyMouse struct {
	Test1 string
	Test2 string
}

func testKeys() (*rabin.PublicKey, *rabin.PrivateKey) {
	p := BigInt.NewSingle().SetUint64(0xFFFFFFFB)
	q := BigInt.NewSingle().SetUint64(0xFFFFFFBF)
	n := BigInt.NewSingle()
	_ = n.Mul(p, q)
	return &rabin.PublicKey{N: n, Hash: hash.BLAKE3}, &rabin.PrivateKey{P: p, Q: q}
}

// TestKeyPairRoundTrip saves a key pair and loads it back
func TestKeyPairRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")
	pub, priv := testKeys()
	require.NoError(t, SaveKeyPair(dir, pub, priv))

	info, err := os.Stat(filepath.Join(dir, privateKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loadedPub, loadedPriv, err := LoadKeyPair(dir)
	require.NoError(t, err)
	assert.True(t, pub.N.Eq(loadedPub.N))
	assert.Equal(t, hash.BLAKE3, loadedPub.Hash)
	assert.True(t, priv.P.Eq(loadedPriv.P))
	assert.True(t, priv.Q.Eq(loadedPriv.Q))
	assert.Equal(t, BigInt.Single, loadedPriv.Q.Width())

	onlyPub, err := LoadPublicKey(dir)
	require.NoError(t, err)
	assert.True(t, pub.N.Eq(onlyPub.N))

	// saving again replaces the keys
	pub.Hash = hash.SHA256
	require.NoError(t, SaveKeyPair(dir, pub, priv))
	onlyPub, err = LoadPublicKey(dir)
	require.NoError(t, err)
	assert.Equal(t, hash.SHA256, onlyPub.Hash)
}

func TestLoadKeyPairErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LoadKeyPair(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	data, _ := cbor.Marshal(&MickeyMouse{Test1: "test 115", Test2: "test 222"})
	require.NoError(t, WriteFixtureFile(data, filepath.Join(dir, publicKeyFile), true))
	_, err = LoadPublicKey(dir)
	assert.Error(t, err)

	require.NoError(t, WriteFixtureFile([]byte{0xFF, 0x00}, filepath.Join(dir, publicKeyFile), true))
	_, err = LoadPublicKey(dir)
	assert.Error(t, err)
}

func TestSignatureFiles(t *testing.T) {
	dir := t.TempDir()
	sig := &rabin.Signature{
		Message: []byte("hello"),
		R:       BigInt.NewSingle().SetUint64(42),
		B:       BigInt.NewSingle().SetBit(1000),
	}
	require.NoError(t, SaveSignature(dir, "first", sig))
	require.NoError(t, SaveSignature(dir, "second_one", sig))
	assert.ErrorIs(t, SaveSignature(dir, "first", sig), ErrExists)

	loaded, err := LoadSignature(dir, "first")
	require.NoError(t, err)
	assert.Equal(t, sig.Message, loaded.Message)
	assert.True(t, sig.R.Eq(loaded.R))
	assert.True(t, sig.B.Eq(loaded.B))

	pub, priv := testKeys()
	require.NoError(t, SaveKeyPair(dir, pub, priv))
	names, err := ListSignatures(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second_one"}, names)

	require.NoError(t, DeleteSignature(dir, "first"))
	_, err = LoadSignature(dir, "first")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Error(t, DeleteSignature(dir, "first"))
}

// test ReadFixtureFile on a file larger than one read buffer
func TestReadFixtureFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "big.data")
	data := make([]byte, 100000)
	data[len(data)-1] = 7
	require.NoError(t, WriteFixtureFile(data, fileName, false))
	result, err := ReadFixtureFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestClearFixtureFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0755))
	for _, name := range []string{"a.data", "b.data"} {
		require.NoError(t, WriteFixtureFile([]byte(name), filepath.Join(dir, name), false))
	}
	require.NoError(t, ClearFixtureFiles(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}
