// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package hash

import (
	"crypto/sha256"
	"errors"
	"fmt"
	gohash "hash"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"

	"ESRabin/pkg/BigInt"
)

// ID names a digest function. The zero value is invalid; SHA256 is the default.
type ID uint8

const (
	SHA256 ID = iota + 1
	SHA3_256
	BLAKE3
)

// DigestSize is the output length of every registered function, in bytes.
const DigestSize = 32

var ErrUnknown = errors.New("hash: unknown hash function")

var names = map[ID]string{
	SHA256:   "SHA256",
	SHA3_256: "SHA3-256",
	BLAKE3:   "BLAKE3",
}

var constructors = map[ID]func() gohash.Hash{
	SHA256:   sha256.New,
	SHA3_256: sha3.New256,
	BLAKE3:   func() gohash.Hash { return blake3.New() },
}

func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("hash.ID(%d)", uint8(id))
}

// Valid reports whether id is registered.
func (id ID) Valid() bool {
	_, ok := constructors[id]
	return ok
}

// Parse maps a name such as "SHA256", "sha3-256" or "blake3" to its ID. The empty
// string selects SHA256.
func Parse(name string) (ID, error) {
	if name == "" {
		return SHA256, nil
	}
	normalized := strings.ToUpper(strings.ReplaceAll(name, "_", "-"))
	for id, n := range names {
		if n == normalized {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Hash accumulates the encoding of several values into one digest.
type Hash struct {
	h gohash.Hash
}

// New returns an empty Hash for id.
func New(id ID) (*Hash, error) {
	c, ok := constructors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknown, id)
	}
	return &Hash{h: c()}, nil
}

// Write implements io.Writer.
func (hash *Hash) Write(data []byte) (int, error) {
	return hash.h.Write(data)
}

// WriteAny appends the values, in order, with no separator.
// Byte slices and strings are written as is and a Nat as its fixed-width Bytes().
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var toBeWritten []byte
		switch t := d.(type) {
		case []byte:
			toBeWritten = t
		case string:
			toBeWritten = []byte(t)
		case *BigInt.Nat:
			if t == nil {
				return errors.New("hash.WriteAny: nil *BigInt.Nat")
			}
			toBeWritten = t.Bytes()
		default:
			return fmt.Errorf("hash.WriteAny: invalid type provided as input: %T", d)
		}
		if _, err := hash.h.Write(toBeWritten); err != nil {
			return err
		}
	}
	return nil
}

// Sum returns the digest of everything written so far.
func (hash *Hash) Sum() []byte {
	return hash.h.Sum(nil)
}
