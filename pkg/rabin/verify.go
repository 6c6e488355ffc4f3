// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rabin

import (
	"context"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Verifier checks signatures against a public key without the private key.
// It owns a copy of N with an active reduction table until Close.
type Verifier struct {
	pub *PublicKey
}

// NewVerifier copies pub and activates the reduction table of the copy.
func NewVerifier(pub *PublicKey) (*Verifier, error) {
	if pub == nil || pub.N == nil {
		return nil, ErrKeyMismatch
	}
	if !pub.Hash.Valid() {
		return nil, ErrKeyMismatch
	}
	own := pub.Clone()
	if err := own.N.InitModularReduction(); err != nil {
		return nil, err
	}
	return &Verifier{pub: own}, nil
}

// Verify reports whether sig is valid for the public key.
func (v *Verifier) Verify(sig *Signature) (bool, error) {
	return verify(v.pub, sig)
}

// Close releases the reduction table.
func (v *Verifier) Close() error {
	return v.pub.N.ShutDownModularReduction()
}

// VerifyBatch checks sigs on up to workers goroutines; workers <= 0 uses GOMAXPROCS.
// Each worker verifies with its own copy of the public key. results[i] holds the
// verdict for sigs[i]. The first error cancels the remaining work.
func VerifyBatch(ctx context.Context, pub *PublicKey, sigs []*Signature, workers int) ([]bool, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(sigs) {
		workers = len(sigs)
	}
	results := make([]bool, len(sigs))
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			v, err := NewVerifier(pub)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()
			for i := w; i < len(sigs); i += workers {
				if err = ctx.Err(); err != nil {
					return err
				}
				if results[i], err = v.Verify(sigs[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorf("batch verification: %v", err)
		return nil, err
	}
	return results, nil
}
