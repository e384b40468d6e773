package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/Atomized-titan/qri/internal/domain"
	qrigrpc "github.com/Atomized-titan/qri/internal/grpc"
	"github.com/Atomized-titan/qri/internal/keys"
	pkgconfig "github.com/Atomized-titan/qri/pkg/config"
	pkglog "github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/qri"
)

func main() {
	addr := pflag.String("addr", pkgconfig.GetEnv("QRI_GRPC_ADDR", ""), "qri-service gRPC address; empty runs the walk-through locally")
	pflag.Parse()

	pkglog.Init(pkglog.Config{Level: "warn"})

	var err error
	if *addr == "" {
		err = runLocal()
	} else {
		err = runRemote(*addr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLocal() error {
	kp, err := keys.GenerateRSA(keys.DefaultRSABits)
	if err != nil {
		return err
	}

	fmt.Println("Unsigned QRI:", qri.NewString())

	id, err := qri.Generate(qri.Options{PrivateKey: kp.PrivatePEM})
	if err != nil {
		return err
	}
	fmt.Println("Signed QRI:  ", id)

	parsed, err := qri.Parse(id.String())
	if err != nil {
		return err
	}
	fmt.Println("Timestamp:   ", parsed.Timestamp())
	fmt.Println("Random:      ", parsed.Random())
	fmt.Println("Checksum:    ", parsed.Checksum())
	fmt.Println("Valid:       ", qri.IsValid(parsed, kp.PublicPEM))

	ok, err := qri.ValidateSignature(parsed, kp.PublicPEM)
	if err != nil {
		return err
	}
	fmt.Println("Signature:   ", ok)
	return nil
}

func runRemote(addr string) error {
	client, err := qrigrpc.NewClient(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = pkglog.WithRequestID(ctx, uuid.New().String())

	gen, err := client.Generate(ctx, &domain.GenerateRequest{Sign: true})
	if err != nil {
		return err
	}
	fmt.Println("Signed QRI:  ", gen.QRI)
	fmt.Println("Key:         ", gen.KeyID)

	parsed, err := client.Parse(ctx, &domain.ParseRequest{QRI: gen.QRI})
	if err != nil {
		return err
	}
	fmt.Println("Timestamp:   ", parsed.Timestamp)

	valid, err := client.Validate(ctx, &domain.ValidateRequest{QRI: gen.QRI, KeyID: gen.KeyID})
	if err != nil {
		return err
	}
	fmt.Println("Valid:       ", valid.Valid, valid.Reason)

	verified, err := client.VerifySignature(ctx, &domain.ValidateRequest{QRI: gen.QRI, KeyID: gen.KeyID})
	if err != nil {
		return err
	}
	fmt.Println("Signature:   ", verified.Valid, verified.Reason)
	return nil
}
