package main

import (
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
)

func newKeygenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Long: `Generate an RSA key pair and write <id>.key (PKCS #1 private key) and
<id>.pub (SubjectPublicKeyInfo) into the output directory. The id is a
random UUID and is printed on success.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.keygen(cmd)
		},
	}
	cmd.Flags().Int("bits", 0, "modulus size in bits")
	cmd.Flags().Int("exponent", 0, "public exponent")
	cmd.Flags().String("out-dir", "", "directory for the key files")
	return cmd
}

func (a *app) keygen(cmd *cobra.Command) error {
	k, err := a.newKey()
	if err != nil {
		return err
	}
	defer k.Free()

	if err := k.MakeKey(a.cfg.Bits, a.cfg.Exponent, nil); err != nil {
		return err
	}
	priv, err := k.MarshalPrivateKeyDER()
	if err != nil {
		return err
	}
	defer rsaengine.ZeroizeBytes(priv)
	pub, err := k.MarshalPublicKeyDER()
	if err != nil {
		return err
	}

	dir, err := SecurePath(a.cfg.OutDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	id := uuid.New().String()
	privPEM := pem.EncodeToMemory(&pem.Block{Type: pemPrivate, Bytes: priv})
	defer rsaengine.ZeroizeBytes(privPEM)
	if err := writeFile(filepath.Join(dir, id+".key"), privPEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: pemPublic, Bytes: pub})
	if err := writeFile(filepath.Join(dir, id+".pub"), pubPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	a.logger.Info(cmd.Context(), "key pair generated", "id", id, "bits", k.BitLen())
	_, err = fmt.Fprintln(a.stdout, id)
	return err
}
