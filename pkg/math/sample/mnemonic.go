// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package sample

import (
	"fmt"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

const (
	// KeygenChild is the hardened BIP32 child index whose key seeds key generation.
	KeygenChild uint32 = bip32.FirstHardenedChild + 0
	// SigningChild is the hardened BIP32 child index whose key seeds signature randomizers.
	SigningChild uint32 = bip32.FirstHardenedChild + 1
)

// NewMnemonic returns a fresh 24 word BIP39 mnemonic.
func NewMnemonic() (string, error) {
	//Generate a random entropy of 256 bits
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// FromMnemonic derives two independent Mush generators from a BIP39 mnemonic: one for
// key generation and one for signing. The same mnemonic and passphrase always give
// the same keys.
func FromMnemonic(mnemonic, passphrase string) (keygen, signing *Mush, err error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("sample: invalid mnemonic: %w", err)
	}
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("sample: master key: %w", err)
	}
	keygen, err = childMush(masterKey, KeygenChild)
	if err != nil {
		return nil, nil, err
	}
	signing, err = childMush(masterKey, SigningChild)
	if err != nil {
		return nil, nil, err
	}
	return keygen, signing, nil
}

func childMush(master *bip32.Key, index uint32) (*Mush, error) {
	child, err := master.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("sample: child key %d: %w", index-bip32.FirstHardenedChild, err)
	}
	material := make([]byte, 0, len(child.Key)+len(child.ChainCode))
	material = append(material, child.Key...)
	material = append(material, child.ChainCode...)
	return NewMushFromBytes(material), nil
}
