package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// HS256 key should be at least as long as the hash output
const minSecretBytes = 32

func main() {
	fs := pflag.NewFlagSet("gensecret", pflag.ExitOnError)
	length := fs.IntP("bytes", "b", minSecretBytes, "Secret length in bytes")
	dotenv := fs.Bool("env", false, "Print as JWT_SECRET=<secret> line for .env file")
	_ = fs.Parse(os.Args[1:])

	secret, err := generate(*length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	if *dotenv {
		fmt.Printf("JWT_SECRET=%s\n", secret)
		return
	}
	fmt.Println(secret)
}

func generate(n int) (string, error) {
	if n < minSecretBytes {
		return "", fmt.Errorf("secret must be at least %d bytes, got %d", minSecretBytes, n)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
