// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"ESRabin/pkg/hash"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "./config/esrabinConfig.json"

const (
	defaultKeyDir        = "./keys"
	defaultLogLevel      = "info"
	defaultTimeOutSecond = 600
)

var ErrInvalid = errors.New("config: invalid configuration")

// LocalConfig struct represents the local configuration for the application.
type LocalConfig struct {
	//Name of the hash function bound to generated keys: SHA256, SHA3-256 or BLAKE3.
	HashFunc string `json:"hashFunc"`
	//Number of Miller-Rabin rounds for each prime candidate.
	MillerRabinRounds int `json:"millerRabinRounds"`
	//Derive key generation and signing randomness from Mnemonic instead of crypto/rand.
	UseMnemonic bool `json:"useMnemonic"`
	//BIP39 mnemonic, used when UseMnemonic is set.
	Mnemonic string `json:"mnemonic"`
	//Optional BIP39 passphrase.
	Passphrase string `json:"passphrase"`
	//Directory holding key and signature files.
	KeyDir string `json:"keyDir"`
	//logrus level name.
	LogLevel string `json:"logLevel"`
	//Upper bound for key generation.
	TimeOutSecond int `json:"timeOutSecond"`
}

// Default returns the configuration used when no file exists.
func Default() *LocalConfig {
	c := &LocalConfig{}
	c.applyDefaults()
	return c
}

func (c *LocalConfig) applyDefaults() {
	if c.HashFunc == "" {
		c.HashFunc = hash.SHA256.String()
	}
	if c.MillerRabinRounds == 0 {
		c.MillerRabinRounds = 3
	}
	if c.KeyDir == "" {
		c.KeyDir = defaultKeyDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.TimeOutSecond == 0 {
		c.TimeOutSecond = defaultTimeOutSecond
	}
}

// Validate checks the fields that cannot be defaulted.
func (c *LocalConfig) Validate() error {
	if _, err := hash.Parse(c.HashFunc); err != nil {
		return fmt.Errorf("%w: hashFunc: %v", ErrInvalid, err)
	}
	if c.MillerRabinRounds < 1 {
		return fmt.Errorf("%w: millerRabinRounds must be positive", ErrInvalid)
	}
	if c.TimeOutSecond < 0 {
		return fmt.Errorf("%w: timeOutSecond must not be negative", ErrInvalid)
	}
	if c.UseMnemonic && c.Mnemonic == "" {
		return fmt.Errorf("%w: useMnemonic is set without a mnemonic", ErrInvalid)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: logLevel: %v", ErrInvalid, err)
	}
	return nil
}

// Hash returns the parsed HashFunc.
func (c *LocalConfig) Hash() hash.ID {
	id, _ := hash.Parse(c.HashFunc)
	return id
}

// Level returns the parsed LogLevel.
func (c *LocalConfig) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// TimeOut returns TimeOutSecond as a duration.
func (c *LocalConfig) TimeOut() time.Duration {
	return time.Duration(c.TimeOutSecond) * time.Second
}

// Load reads the configuration from path, or DefaultPath when path is empty.
// A missing default file yields Default(); a missing explicit file is an error.
func Load(path string) (*LocalConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	jsonFile, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			log.Infof("%s not found, using default configuration", path)
			return Default(), nil
		}
		log.Errorf("fail open %s", path)
		return nil, err
	}
	log.Debugf("successfully open %s", path)
	defer jsonFile.Close()

	// Read the contents of the file
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, err
	}
	c := &LocalConfig{}
	if err = json.Unmarshal(byteValue, c); err != nil {
		log.Errorf("fail unmarshal %s", path)
		return nil, err
	}
	c.applyDefaults()
	if err = c.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("done unmarshal %s", path)
	return c, nil
}
