// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package rabin implements the ES-Rabin signature scheme over Blum integers.
//
// A signature on a message is a pair (R, B) where R is a random randomizer and
// B² = H(message ∥ R) (mod n). Only the holder of the factors p and q of n can
// take the square root.
package rabin

import (
	"ESRabin/pkg/BigInt"
	"ESRabin/pkg/hash"
)

// RandomizerBits is the size of the randomizer R drawn for every signing attempt.
const RandomizerBits = 256

// PublicKey is the Blum modulus n with the hash function bound to it.
type PublicKey struct {
	N    *BigInt.Nat
	Hash hash.ID
}

// PrivateKey holds the factors of n, both 3 mod 4.
type PrivateKey struct {
	P *BigInt.Nat
	Q *BigInt.Nat
}

// Signature binds the message to its randomizer R and square root B.
type Signature struct {
	Message []byte
	R       *BigInt.Nat
	B       *BigInt.Nat
}

// Clone returns a copy with its own N and no reduction table.
func (pk *PublicKey) Clone() *PublicKey {
	return &PublicKey{N: pk.N.Clone(), Hash: pk.Hash}
}

// Clone returns a copy with its own factors and no reduction tables.
func (sk *PrivateKey) Clone() *PrivateKey {
	return &PrivateKey{P: sk.P.Clone(), Q: sk.Q.Clone()}
}

// digest computes H = hash(message ∥ R) as a Single value.
func digest(id hash.ID, message []byte, r *BigInt.Nat) (*BigInt.Nat, error) {
	h, err := hash.New(id)
	if err != nil {
		return nil, err
	}
	if err = h.WriteAny(message, r); err != nil {
		return nil, err
	}
	return BigInt.NewSingle().SetBytes(h.Sum()), nil
}
