// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package save

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	log "github.com/sirupsen/logrus"

	"ESRabin/pkg/rabin"
)

const (
	publicKeyFile       = "public_key.data"
	privateKeyFile      = "private_key.data"
	signatureFilePrefix = "signature_"
	signatureFileFormat = signatureFilePrefix + "%s.data"
)

// ErrExists is returned when a signature file would be overwritten.
var ErrExists = errors.New("save: file already exists")

// SaveKeyPair writes the public and the private key to dir as cbor files.
// The private key file is only readable by the owner.
func SaveKeyPair(dir string, pub *rabin.PublicKey, priv *rabin.PrivateKey) error {
	//marshal the public key
	marshalledPub, err := cbor.Marshal(pub)
	if err != nil {
		log.Errorf("fail to marshal public key, err is %v", err)
		return err
	}
	marshalledPriv, err := cbor.Marshal(priv)
	if err != nil {
		log.Errorf("fail to marshal private key, err is %v", err)
		return err
	}
	if err = WriteFixtureFile(marshalledPub, filepath.Join(dir, publicKeyFile), true); err != nil {
		return err
	}
	return WriteFixtureFile(marshalledPriv, filepath.Join(dir, privateKeyFile), true)
}

// LoadPublicKey reads the public key saved in dir.
func LoadPublicKey(dir string) (*rabin.PublicKey, error) {
	fileResult, err := ReadFixtureFile(filepath.Join(dir, publicKeyFile))
	if err != nil {
		return nil, err
	}
	pub := new(rabin.PublicKey)
	if err = cbor.Unmarshal(fileResult, pub); err != nil {
		return nil, err
	}
	if pub.N == nil {
		return nil, fmt.Errorf("save: %s has no modulus", publicKeyFile)
	}
	return pub, nil
}

// LoadKeyPair reads both keys saved in dir. The pair is not validated; the manager
// does that when the keys are loaded.
func LoadKeyPair(dir string) (*rabin.PublicKey, *rabin.PrivateKey, error) {
	pub, err := LoadPublicKey(dir)
	if err != nil {
		return nil, nil, err
	}
	fileResult, err := ReadFixtureFile(filepath.Join(dir, privateKeyFile))
	if err != nil {
		return nil, nil, err
	}
	priv := new(rabin.PrivateKey)
	if err = cbor.Unmarshal(fileResult, priv); err != nil {
		return nil, nil, err
	}
	if priv.P == nil || priv.Q == nil {
		return nil, nil, fmt.Errorf("save: %s has no factors", privateKeyFile)
	}
	return pub, priv, nil
}

// SaveSignature writes sig to dir under name. An existing signature is never overwritten.
func SaveSignature(dir, name string, sig *rabin.Signature) error {
	marshalledSig, err := cbor.Marshal(sig)
	if err != nil {
		log.Errorf("fail to marshal signature %s, err is %v", name, err)
		return err
	}
	return WriteFixtureFile(marshalledSig, signaturePath(dir, name), false)
}

// LoadSignature reads the signature saved in dir under name.
func LoadSignature(dir, name string) (*rabin.Signature, error) {
	fileResult, err := ReadFixtureFile(signaturePath(dir, name))
	if err != nil {
		return nil, err
	}
	sig := new(rabin.Signature)
	if err = cbor.Unmarshal(fileResult, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

// DeleteSignature removes the signature saved in dir under name.
func DeleteSignature(dir, name string) error {
	return DeleteFixtureFile(signaturePath(dir, name))
}

// ListSignatures returns the names of the signatures saved in dir, sorted.
func ListSignatures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), signatureFilePrefix) {
			continue
		}
		names = append(names, nameWithEntryName(entry.Name()))
	}
	sort.Strings(names)
	return names, nil
}

func signaturePath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf(signatureFileFormat, name))
}

// WriteFixtureFile saves the []byte type result to a file, creating its directory.
// When overwrite is false an existing file is left alone and ErrExists is returned.
func WriteFixtureFile(result []byte, fileName string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		log.Errorln(err)
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	// open file
	fd, err := os.OpenFile(fileName, flags, 0600)
	if errors.Is(err, os.ErrExist) {
		log.Errorf("%s already exists, will not overwrite file", fileName)
		return fmt.Errorf("%w: %s", ErrExists, fileName)
	}
	if err != nil {
		log.Errorf("unable to open save file %s for writing", fileName)
		return err
	}
	if _, err = fd.Write(result); err != nil {
		log.Errorf("unable to write save file %s", fileName)
		_ = fd.Close()
		return err
	}
	// close file
	if err = fd.Close(); err != nil {
		log.Errorf("unable to close save file %s", fileName)
		return err
	}
	log.Infof("done wrote save file %s", fileName)
	return nil
}

// ReadFixtureFile reads a whole save file.
func ReadFixtureFile(fileName string) ([]byte, error) {
	result, err := os.ReadFile(fileName)
	if err != nil {
		log.Errorf("unable to read save file %s", fileName)
		return nil, err
	}
	log.Debugf("done read save file %s", fileName)
	return result, nil
}

// DeleteFixtureFile deletes a save file.
func DeleteFixtureFile(fileName string) error {
	if err := os.Remove(fileName); err != nil {
		log.Errorf("unable to delete fixture file %s", fileName)
		return err
	}
	log.Infof("done delete fixture file %s", fileName)
	return nil
}

// ClearFixtureFiles removes every regular file in dir.
func ClearFixtureFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err = os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// nameWithEntryName strips the signature prefix and the extension from a file name.
func nameWithEntryName(entryName string) string {
	return strings.TrimSuffix(strings.TrimPrefix(entryName, signatureFilePrefix), filepath.Ext(entryName))
}
