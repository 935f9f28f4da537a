package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

func newFlattenCmd(a *app) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Print the public exponent and modulus as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKey(key, false)
			if err != nil {
				return err
			}
			defer k.Free()

			e, n, err := k.PublicComponents()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "e: %s\nn: %s\n", hex.EncodeToString(e), hex.EncodeToString(n))
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "public or private key file")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
