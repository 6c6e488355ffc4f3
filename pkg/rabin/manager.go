// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rabin

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ESRabin/pkg/BigInt"
	"ESRabin/pkg/hash"
	"ESRabin/pkg/math/arith"
	"ESRabin/pkg/math/sample"
)

// maxSignAttempts bounds the randomizer loop of SignMessage. About one randomizer in
// four gives a residue, so the bound is never reached in practice.
const maxSignAttempts = 1 << 12

// State is the lifecycle stage of a Manager.
type State uint8

const (
	Uninitialized State = iota
	KeysGenerated
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case KeysGenerated:
		return "KeysGenerated"
	case Finalized:
		return "Finalized"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Manager generates or loads one key pair and signs and verifies with it.
//
// The manager owns the reduction tables of n, p and q from GenerateKeys or LoadKeys
// until FinalizeKeys. It is not safe for concurrent use.
type Manager struct {
	keygen  sample.WordSource
	signing sample.WordSource
	hashID  hash.ID
	rounds  int

	state State
	pub   *PublicKey
	priv  *PrivateKey
	crt   *arith.Modulus
}

// Option configures a Manager.
type Option func(*Manager)

// WithHash binds generated keys to id instead of SHA256.
func WithHash(id hash.ID) Option {
	return func(m *Manager) { m.hashID = id }
}

// WithRounds sets the Miller-Rabin rounds used by key generation.
func WithRounds(k int) Option {
	return func(m *Manager) { m.rounds = k }
}

// WithSigningSource draws signature randomizers from src instead of the key
// generation source.
func WithSigningSource(src sample.WordSource) Option {
	return func(m *Manager) { m.signing = src }
}

// NewManager returns a manager drawing key material from src.
func NewManager(src sample.WordSource, opts ...Option) *Manager {
	m := &Manager{
		keygen:  src,
		signing: src,
		hashID:  hash.SHA256,
		rounds:  sample.DefaultRounds,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle stage.
func (m *Manager) State() State {
	return m.state
}

// PublicKey returns a copy of the active public key, or nil before keys exist.
func (m *Manager) PublicKey() *PublicKey {
	if m.pub == nil {
		return nil
	}
	return m.pub.Clone()
}

// PrivateKey returns a copy of the active private key, or nil before keys exist.
func (m *Manager) PrivateKey() *PrivateKey {
	if m.priv == nil {
		return nil
	}
	return m.priv.Clone()
}

func (m *Manager) fail(op string, err error) error {
	return Error{Op: op, State: m.state, Err: err}
}

// GenerateKeys draws a fresh Blum modulus n = p⋅q and activates its reduction tables.
// The returned keys are copies; the manager keeps its own.
func (m *Manager) GenerateKeys(ctx context.Context) (*PublicKey, *PrivateKey, error) {
	if m.state == KeysGenerated {
		return nil, nil, m.fail("GenerateKeys", ErrState)
	}
	log.Info("generating Blum modulus...")
	n, p, q, err := sample.GenerateBlumPrimes(ctx, m.keygen, m.rounds)
	if err != nil {
		return nil, nil, m.fail("GenerateKeys", err)
	}
	pub := &PublicKey{N: n, Hash: m.hashID}
	priv := &PrivateKey{P: p, Q: q}
	if err = m.activate(pub, priv); err != nil {
		return nil, nil, m.fail("GenerateKeys", err)
	}
	log.Infof("key pair generated: n has %d bits, hash %v", n.BitLen(), pub.Hash)
	return pub.Clone(), priv.Clone(), nil
}

// LoadKeys activates a persisted key pair. The keys are copied.
func (m *Manager) LoadKeys(pub *PublicKey, priv *PrivateKey) error {
	if m.state == KeysGenerated {
		return m.fail("LoadKeys", ErrState)
	}
	if pub == nil || priv == nil || pub.N == nil || priv.P == nil || priv.Q == nil {
		return m.fail("LoadKeys", ErrKeyMismatch)
	}
	if !pub.Hash.Valid() {
		return m.fail("LoadKeys", fmt.Errorf("%w: %v", hash.ErrUnknown, pub.Hash))
	}
	for _, f := range []*BigInt.Nat{priv.P, priv.Q} {
		if rem, err := f.ModWord(4); err != nil || rem != 3 {
			return m.fail("LoadKeys", ErrNotBlum)
		}
	}
	n := BigInt.NewSingle()
	if err := n.Mul(priv.P, priv.Q); err != nil || !n.Eq(pub.N) {
		return m.fail("LoadKeys", ErrKeyMismatch)
	}
	if err := m.activate(pub.Clone(), priv.Clone()); err != nil {
		return m.fail("LoadKeys", err)
	}
	log.Infof("key pair loaded: n has %d bits, hash %v", pub.N.BitLen(), pub.Hash)
	return nil
}

// activate builds the reduction tables of n, p and q and the CRT modulus.
func (m *Manager) activate(pub *PublicKey, priv *PrivateKey) error {
	active := make([]*BigInt.Nat, 0, 3)
	release := func() {
		for _, x := range active {
			_ = x.ShutDownModularReduction()
		}
	}
	for _, x := range []*BigInt.Nat{pub.N, priv.P, priv.Q} {
		if err := x.InitModularReduction(); err != nil {
			release()
			return err
		}
		active = append(active, x)
	}
	crt, err := arith.ModulusFromFactors(priv.P, priv.Q)
	if err != nil {
		release()
		return err
	}
	m.pub, m.priv, m.crt = pub, priv, crt
	m.state = KeysGenerated
	return nil
}

// SignMessage draws randomizers R until H = hash(message ∥ R) is a square mod p and
// mod q, then returns the square root B of H mod n.
func (m *Manager) SignMessage(message []byte) (*Signature, error) {
	if m.state != KeysGenerated {
		return nil, m.fail("SignMessage", ErrState)
	}
	sig := &Signature{Message: append([]byte(nil), message...)}
	for attempt := 1; attempt <= maxSignAttempts; attempt++ {
		r := sample.Random(m.signing, BigInt.Single, RandomizerBits)
		h, err := digest(m.pub.Hash, sig.Message, r)
		if err != nil {
			return nil, m.fail("SignMessage", err)
		}
		residue, err := m.crt.IsQuadraticResidue(h)
		if err != nil {
			return nil, m.fail("SignMessage", err)
		}
		if !residue {
			log.Debugf("H = %v is not a quadratic residue, drawing a new randomizer", h)
			continue
		}
		b := BigInt.NewSingle()
		if err = m.crt.Sqrt(h, b); err != nil {
			return nil, m.fail("SignMessage", err)
		}
		log.Debugf("message signed after %d randomizers", attempt)
		sig.R, sig.B = r, b
		return sig, nil
	}
	return nil, m.fail("SignMessage", ErrSignAttempts)
}

// CheckSignature reports whether B² = hash(message ∥ R) (mod n) for the active key.
func (m *Manager) CheckSignature(sig *Signature) (bool, error) {
	if m.state != KeysGenerated {
		return false, m.fail("CheckSignature", ErrState)
	}
	ok, err := verify(m.pub, sig)
	if err != nil {
		return false, m.fail("CheckSignature", err)
	}
	return ok, nil
}

// FinalizeKeys releases the reduction tables. Keys must be generated or loaded again
// before the next signature.
func (m *Manager) FinalizeKeys() error {
	if m.state != KeysGenerated {
		return m.fail("FinalizeKeys", ErrState)
	}
	for _, x := range []*BigInt.Nat{m.pub.N, m.priv.P, m.priv.Q} {
		if err := x.ShutDownModularReduction(); err != nil {
			return m.fail("FinalizeKeys", err)
		}
	}
	m.crt = nil
	m.state = Finalized
	log.Info("key pair finalized")
	return nil
}

// verify checks sig against pub, whose N must have an active reduction table.
func verify(pub *PublicKey, sig *Signature) (bool, error) {
	if sig == nil || sig.R == nil || sig.B == nil {
		return false, ErrMalformedSignature
	}
	if sig.B.Width() != BigInt.Single {
		return false, ErrMalformedSignature
	}
	if sig.B.Cmp(pub.N) >= 0 {
		return false, nil
	}
	h, err := digest(pub.Hash, sig.Message, sig.R)
	if err != nil {
		return false, err
	}
	res := BigInt.NewSingle()
	if err = sig.B.MulMont(sig.B, pub.N, res); err != nil {
		return false, err
	}
	return res.Eq(h), nil
}
