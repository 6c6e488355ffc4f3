// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

/*
*
The file where main is located, as an example
 1. keygen generates a Blum key pair and saves it to the key directory
 2. sign signs a message with the saved key pair and saves the signature
 3. verify checks one saved or hex-encoded signature, verify-all checks every saved signature
 4. demo runs key generation, signing and verification in memory
*/
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"ESRabin/internal/config"
	"ESRabin/internal/save"
	"ESRabin/pkg/math/sample"
	"ESRabin/pkg/rabin"
)

var commands = []*cli.Command{
	{
		Name:  "keygen",
		Usage: "Generate a key pair and save it to the key directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "new-mnemonic",
				Usage: "Draw a fresh BIP39 mnemonic, print it and derive the keys from it",
			},
		},
		Action: KeyGen,
	},
	{
		Name:  "sign",
		Usage: "Sign a message with the saved key pair",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "message",
				Aliases:  []string{"m"},
				Usage:    "Message to sign",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Name the signature is saved under",
				Required: true,
			},
		},
		Action: Sign,
	},
	{
		Name:  "verify",
		Usage: "Verify a saved or hex-encoded signature",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Name of a saved signature",
			},
			&cli.StringFlag{
				Name:  "wire",
				Usage: "Hex wire encoding of the signature, as printed by sign",
			},
			&cli.StringFlag{
				Name:  "public-key",
				Usage: "Hex wire encoding of the public key, as printed by keygen; defaults to the saved key",
			},
		},
		Action: Verify,
	},
	{
		Name:  "verify-all",
		Usage: "Verify every saved signature in parallel",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of verifying goroutines, 0 for one per CPU",
			},
		},
		Action: VerifyAll,
	},
	{
		Name:  "demo",
		Usage: "Generate keys, sign and verify a message without touching the disk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Value:   "Hello, World!",
				Usage:   "Message to sign",
			},
		},
		Action: Demo,
	},
}

// loadConfig reads the configuration named by --config and applies its log level.
func loadConfig(cCtx *cli.Context) (*config.LocalConfig, error) {
	conf, err := config.Load(cCtx.String("config"))
	if err != nil {
		log.Errorln(err)
		return nil, err
	}
	log.SetLevel(conf.Level())
	return conf, nil
}

// sources returns the key generation and signing randomness selected by the configuration.
func sources(conf *config.LocalConfig) (keygen, signing sample.WordSource, err error) {
	if conf.UseMnemonic {
		k, s, err := sample.FromMnemonic(conf.Mnemonic, conf.Passphrase)
		if err != nil {
			return nil, nil, err
		}
		return k, s, nil
	}
	return sample.NewMush(), sample.NewMush(), nil
}

func newManager(conf *config.LocalConfig) (*rabin.Manager, error) {
	keygen, signing, err := sources(conf)
	if err != nil {
		log.Errorln(err)
		return nil, err
	}
	return rabin.NewManager(keygen,
		rabin.WithSigningSource(signing),
		rabin.WithHash(conf.Hash()),
		rabin.WithRounds(conf.MillerRabinRounds),
	), nil
}

// KeyGen function is responsible for generating the key pair and saving it.
func KeyGen(cCtx *cli.Context) error {
	log.Infoln("step into KeyGen func")
	conf, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	if cCtx.Bool("new-mnemonic") {
		if conf.Mnemonic, err = sample.NewMnemonic(); err != nil {
			log.Errorln(err)
			return err
		}
		conf.UseMnemonic = true
		fmt.Println("mnemonic:", conf.Mnemonic)
	}
	manager, err := newManager(conf)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cCtx.Context, conf.TimeOut())
	defer cancel()
	pub, priv, err := manager.GenerateKeys(ctx)
	if err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = manager.FinalizeKeys() }()
	if err = save.SaveKeyPair(conf.KeyDir, pub, priv); err != nil {
		log.Errorln(err)
		return err
	}
	wire, err := pub.MarshalWire()
	if err != nil {
		return err
	}
	fmt.Println("N    =", pub.N)
	fmt.Println("hash =", pub.Hash)
	fmt.Println("wire =", hex.EncodeToString(wire))
	return nil
}

// Sign function is responsible for signing a message with the saved key pair.
func Sign(cCtx *cli.Context) error {
	log.Infoln("step into Sign func")
	conf, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	pub, priv, err := save.LoadKeyPair(conf.KeyDir)
	if err != nil {
		return err
	}
	manager, err := newManager(conf)
	if err != nil {
		return err
	}
	if err = manager.LoadKeys(pub, priv); err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = manager.FinalizeKeys() }()

	sig, err := manager.SignMessage([]byte(cCtx.String("message")))
	if err != nil {
		log.Errorln(err)
		return err
	}
	if err = save.SaveSignature(conf.KeyDir, cCtx.String("name"), sig); err != nil {
		return err
	}
	wire, err := sig.MarshalWire()
	if err != nil {
		return err
	}
	fmt.Println("R    =", sig.R)
	fmt.Println("B    =", sig.B)
	fmt.Println("wire =", hex.EncodeToString(wire))
	return nil
}

// verifyInputs resolves the public key and the signature named by the verify flags.
func verifyInputs(cCtx *cli.Context, conf *config.LocalConfig) (*rabin.PublicKey, *rabin.Signature, error) {
	var (
		pub *rabin.PublicKey
		sig *rabin.Signature
		err error
	)
	if s := cCtx.String("public-key"); s != "" {
		pub, err = rabin.PublicKeyFromHex(s)
	} else {
		pub, err = save.LoadPublicKey(conf.KeyDir)
	}
	if err != nil {
		return nil, nil, err
	}
	switch {
	case cCtx.String("wire") != "":
		sig, err = rabin.SignatureFromHex(cCtx.String("wire"))
	case cCtx.String("name") != "":
		sig, err = save.LoadSignature(conf.KeyDir, cCtx.String("name"))
	default:
		return nil, nil, cli.Exit("one of --name or --wire is required", 2)
	}
	if err != nil {
		return nil, nil, err
	}
	return pub, sig, nil
}

// Verify function is responsible for checking one signature.
func Verify(cCtx *cli.Context) error {
	conf, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	pub, sig, err := verifyInputs(cCtx, conf)
	if err != nil {
		log.Errorln(err)
		return err
	}
	verifier, err := rabin.NewVerifier(pub)
	if err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = verifier.Close() }()
	ok, err := verifier.Verify(sig)
	if err != nil {
		log.Errorln(err)
		return err
	}
	if !ok {
		return cli.Exit("Signature is wrong!", 1)
	}
	fmt.Println("Signature is correct!")
	return nil
}

// VerifyAll function is responsible for checking every saved signature.
func VerifyAll(cCtx *cli.Context) error {
	conf, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	pub, err := save.LoadPublicKey(conf.KeyDir)
	if err != nil {
		return err
	}
	names, err := save.ListSignatures(conf.KeyDir)
	if err != nil {
		return err
	}
	sigs := make([]*rabin.Signature, len(names))
	for i, name := range names {
		if sigs[i], err = save.LoadSignature(conf.KeyDir, name); err != nil {
			return err
		}
	}
	results, err := rabin.VerifyBatch(cCtx.Context, pub, sigs, cCtx.Int("workers"))
	if err != nil {
		return err
	}
	wrong := 0
	for i, ok := range results {
		fmt.Printf("%-20s %v\n", names[i], ok)
		if !ok {
			wrong++
		}
	}
	if wrong > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d signatures are wrong", wrong, len(results)), 1)
	}
	return nil
}

// Demo function runs the whole scheme once in memory.
func Demo(cCtx *cli.Context) error {
	conf, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	manager, err := newManager(conf)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cCtx.Context, conf.TimeOut())
	defer cancel()
	pub, priv, err := manager.GenerateKeys(ctx)
	if err != nil {
		log.Errorln(err)
		return err
	}
	sig, err := manager.SignMessage([]byte(cCtx.String("message")))
	if err != nil {
		log.Errorln(err)
		return err
	}

	log.Info("Public key data:")
	log.Infof("\t N = %v", pub.N)
	log.Infof("\t hash = %v", pub.Hash)
	log.Info("Private key data:")
	log.Infof("\t P = %v", priv.P)
	log.Infof("\t Q = %v", priv.Q)
	log.Info("Signature data:")
	log.Infof("\t B = %v", sig.B)
	log.Infof("\t R = %v", sig.R)
	log.Infof("\t message = %s", sig.Message)

	ok, err := manager.CheckSignature(sig)
	if err != nil {
		log.Errorln(err)
		return err
	}
	if ok {
		log.Info("Signature is correct!")
	} else {
		log.Error("Signature is wrong!")
	}
	return manager.FinalizeKeys()
}

func main() {
	app := &cli.App{
		Name:  "esrabin",
		Usage: "ES-Rabin signatures over 1024-bit Blum integers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the JSON configuration (default " + config.DefaultPath + ")",
			},
		},
		Commands: commands,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
