package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const SecretKeyBytesLen = 32

// Prints fresh pair of token secrets in '.env' format
func main() {
	if err := writeSecrets(os.Stdout, rand.Reader); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

func writeSecrets(w io.Writer, random io.Reader) error {
	for _, name := range []string{"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET"} {
		b := make([]byte, SecretKeyBytesLen)
		if _, err := io.ReadFull(random, b); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s=%s\n", name, hex.EncodeToString(b)); err != nil {
			return err
		}
	}
	return nil
}
