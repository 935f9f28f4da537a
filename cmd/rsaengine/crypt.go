package main

import (
	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
)

type ioFlags struct {
	key string
	in  string
	out string
}

func addPaddingFlags(cmd *cobra.Command) {
	cmd.Flags().String("padding", "", "padding: pkcs1v15 or oaep")
	cmd.Flags().String("hash", "", "OAEP hash: sha1, sha224, sha256, sha384 or sha512")
	cmd.Flags().String("mgf", "", "MGF1 hash; defaults to the OAEP hash")
	cmd.Flags().String("label", "", "OAEP label")
}

func addIOFlags(cmd *cobra.Command, f *ioFlags, keyUsage string) {
	cmd.Flags().StringVar(&f.key, "key", "", keyUsage)
	cmd.Flags().StringVar(&f.in, "in", "", "input file")
	cmd.Flags().StringVar(&f.out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
}

func newEncryptCmd(a *app) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file with a public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.encrypt(f)
		},
	}
	addIOFlags(cmd, &f, "public or private key file")
	addPaddingFlags(cmd)
	return cmd
}

func (a *app) encrypt(f ioFlags) error {
	opts, err := a.cfg.PaddingOptions()
	if err != nil {
		return err
	}
	k, err := a.loadKey(f.key, false)
	if err != nil {
		return err
	}
	defer k.Free()

	msg, err := readFile(f.in)
	if err != nil {
		return err
	}
	defer rsaengine.ZeroizeBytes(msg)

	ct := make([]byte, k.Size())
	if _, err := k.PublicEncrypt(msg, ct, nil, opts); err != nil {
		return err
	}
	return writeFile(f.out, ct, 0o644)
}

func newDecryptCmd(a *app) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a file with a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decrypt(cmd, f)
		},
	}
	addIOFlags(cmd, &f, "private key file")
	addPaddingFlags(cmd)
	return cmd
}

func (a *app) decrypt(cmd *cobra.Command, f ioFlags) error {
	opts, err := a.cfg.PaddingOptions()
	if err != nil {
		return err
	}
	k, err := a.loadKey(f.key, true)
	if err != nil {
		return err
	}
	defer k.Free()

	ct, err := readFile(f.in)
	if err != nil {
		return err
	}

	var msg []byte
	if a.queue == nil {
		msg, err = k.PrivateDecryptInline(ct, opts)
	} else {
		msg, err = a.decryptOffloaded(cmd, k, ct, opts)
	}
	if err != nil {
		return err
	}
	defer rsaengine.ZeroizeBytes(msg)
	return writeFile(f.out, msg, 0o600)
}

// decryptOffloaded runs the private exponentiation on the accelerator queue.
func (a *app) decryptOffloaded(cmd *cobra.Command, k *rsaengine.Key, ct []byte, opts *rsaengine.PaddingOptions) ([]byte, error) {
	if err := submit(cmd.Context(), k, ct, rsaengine.PrivateDecrypt); err != nil {
		return nil, err
	}
	return k.WaitDecrypt(cmd.Context(), opts)
}
