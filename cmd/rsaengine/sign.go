package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/padding"
)

func newSignCmd(a *app) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign the hash of a file with a private key",
		Long: `Hash the input file and write a PKCS #1 v1.5 signature over its
DigestInfo to the output file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sign(cmd, f)
		},
	}
	addIOFlags(cmd, &f, "private key file")
	cmd.Flags().String("hash", "", "digest: sha1, sha224, sha256, sha384 or sha512")
	return cmd
}

func (a *app) sign(cmd *cobra.Command, f ioFlags) error {
	h, digest, err := a.digestFile(f.in)
	if err != nil {
		return err
	}
	k, err := a.loadKey(f.key, true)
	if err != nil {
		return err
	}
	defer k.Free()

	var sig []byte
	if a.queue == nil {
		sig = make([]byte, k.Size())
		_, err = k.SignHash(h, digest, sig, nil)
	} else {
		sig, err = a.signOffloaded(cmd, k, h, digest)
	}
	if err != nil {
		return err
	}
	return writeFile(f.out, sig, 0o644)
}

// signOffloaded pads locally and runs the private exponentiation on the
// accelerator queue.
func (a *app) signOffloaded(cmd *cobra.Command, k *rsaengine.Key, h padding.HashType, digest []byte) ([]byte, error) {
	info, err := padding.DigestInfo(h, digest)
	if err != nil {
		return nil, err
	}
	em := make([]byte, k.Size())
	if err := padding.EncodePKCS1v15(em, info, padding.BlockType1, nil); err != nil {
		return nil, err
	}
	return a.privateRaw(cmd.Context(), k, em, rsaengine.PrivateEncrypt)
}

func (a *app) digestFile(path string) (padding.HashType, []byte, error) {
	h, err := a.cfg.HashType()
	if err != nil {
		return 0, nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return 0, nil, err
	}
	hh, err := h.New()
	if err != nil {
		return 0, nil, err
	}
	hh.Write(data)
	return h, hh.Sum(nil), nil
}

func newVerifyCmd(a *app) *cobra.Command {
	var key, in, sigPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature over a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, digest, err := a.digestFile(in)
			if err != nil {
				return err
			}
			sig, err := readFile(sigPath)
			if err != nil {
				return err
			}
			k, err := a.loadKey(key, false)
			if err != nil {
				return err
			}
			defer k.Free()

			if err := k.VerifyHash(h, digest, sig); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, "signature OK")
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "public or private key file")
	cmd.Flags().StringVar(&in, "in", "", "signed file")
	cmd.Flags().StringVar(&sigPath, "sig", "", "signature file")
	cmd.Flags().String("hash", "", "digest: sha1, sha224, sha256, sha384 or sha512")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}
