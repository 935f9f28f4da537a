package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
)

func newVersionCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := fmt.Fprintf(a.stdout, "rsaengine %s\n", rsaengine.EngineVersion()); err != nil {
				return err
			}
			if verbose {
				_, err := fmt.Fprintf(a.stdout, "go: %s\nkey sizes: %d-%d bits\n", runtime.Version(), rsaengine.MinBits, rsaengine.MaxBits)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "display additional build information")
	return cmd
}
