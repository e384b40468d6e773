package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/internal/keys"
	pkgconfig "github.com/Atomized-titan/qri/pkg/config"
	pkglog "github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/storage"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "config file; defaults to ./config/config.yaml")
		name       = pflag.StringP("name", "n", "signing", "key name; writes <name>.pem and <name>.pub.pem")
		algorithm  = pflag.StringP("algorithm", "a", "rsa", "key algorithm: rsa or ed25519")
		bits       = pflag.IntP("bits", "b", keys.DefaultRSABits, "RSA modulus size")
		force      = pflag.BoolP("force", "f", false, "overwrite existing keys")
	)
	pflag.Parse()

	pkglog.Init(pkglog.Config{Level: "info", Pretty: true, ServiceName: "qri-keygen"})
	logger := pkglog.L()
	ctx := pkglog.WithLogger(context.Background(), logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := storage.New(ctx, cfg.Keys.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open key storage")
	}

	var kp *keys.KeyPair
	switch *algorithm {
	case "rsa":
		kp, err = keys.GenerateRSA(*bits)
	case "ed25519":
		kp, err = keys.GenerateEd25519()
	default:
		err = fmt.Errorf("unsupported algorithm: %s", *algorithm)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate key pair")
	}

	privKey, pubKey, err := keys.Save(ctx, store, *name, kp, *force)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to save key pair")
	}

	logger.Info().
		Str("driver", cfg.Keys.Storage.Driver).
		Str("private_key", privKey).
		Str("public_key", pubKey).
		Str("algorithm", *algorithm).
		Msg("key pair written")
	fmt.Fprintln(os.Stdout, pubKey)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	v, err := pkgconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return config.FromViper(v)
}
