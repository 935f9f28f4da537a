package main

import (
	"context"
	"encoding/pem"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/accel"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/logging"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/rng"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	cfg        Config
	logger     logging.Logger
	queue      *accel.Queue
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "rsaengine",
		Short: "RSA key generation, encryption and signatures",
		Long: `rsaengine generates RSA keys and encrypts, decrypts, signs and verifies
files with them. Keys are stored as PEM: PKCS #1 for private keys and
SubjectPublicKeyInfo for public keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.queue.Close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")
	pf.Bool("async", false, "offload private operations to the accelerator queue")
	pf.Int64("workers", 0, "accelerator queue workers")

	root.AddCommand(
		newKeygenCmd(a),
		newEncryptCmd(a),
		newDecryptCmd(a),
		newSignCmd(a),
		newVerifyCmd(a),
		newFlattenCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the config file, applies flag overrides, validates the result
// and builds the logger and accelerator queue.
func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = DefaultConfig()
	if a.configPath != "" {
		cfg, err := LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	fs := cmd.Flags()
	strs := map[string]*string{
		"log-level":  &a.cfg.LogLevel,
		"log-format": &a.cfg.LogFormat,
		"out-dir":    &a.cfg.OutDir,
		"padding":    &a.cfg.Padding,
		"hash":       &a.cfg.Hash,
		"mgf":        &a.cfg.MGF,
		"label":      &a.cfg.Label,
	}
	for name, dst := range strs {
		if fs.Changed(name) {
			v, err := fs.GetString(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	ints := map[string]*int{"bits": &a.cfg.Bits, "exponent": &a.cfg.Exponent}
	for name, dst := range ints {
		if fs.Changed(name) {
			v, err := fs.GetInt(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	if fs.Changed("async") {
		v, err := fs.GetBool("async")
		if err != nil {
			return err
		}
		a.cfg.Accelerator.Enabled = v
	}
	if fs.Changed("workers") {
		v, err := fs.GetInt64("workers")
		if err != nil {
			return err
		}
		a.cfg.Accelerator.Workers = v
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewHandler(a.stderr, a.cfg.LogFormat, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger.With("command", cmd.Name())

	if a.cfg.Accelerator.Enabled {
		q, err := accel.NewQueue(accel.Config{ID: 1, Workers: a.cfg.Accelerator.Workers, Logger: a.logger})
		if err != nil {
			return err
		}
		a.queue = q
	}
	return nil
}

// newKey returns an empty key wired to the logger, queue and system RNG.
func (a *app) newKey() (*rsaengine.Key, error) {
	k, err := rsaengine.NewKeyWithConfig(rsaengine.Config{Logger: a.logger, Device: a.queue})
	if err != nil {
		return nil, err
	}
	if err := k.SetRNG(rng.Default()); err != nil {
		k.Free()
		return nil, err
	}
	return k, nil
}

// loadKey reads a PEM key file. PKCS #1 private keys, PKCS #1 public keys and
// SubjectPublicKeyInfo public keys are accepted.
func (a *app) loadKey(path string, needPrivate bool) (*rsaengine.Key, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	defer rsaengine.ZeroizeBytes(data)

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block", path)
	}
	defer rsaengine.ZeroizeBytes(block.Bytes)

	k, err := a.newKey()
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case pemPrivate:
		_, err = k.DecodePrivateKey(block.Bytes)
	case pemPublic, pemPKCS1Public:
		if needPrivate {
			err = fmt.Errorf("%s holds a public key: %w", path, rsaengine.ErrKeyTypeMismatch)
		} else {
			_, err = k.DecodePublicKey(block.Bytes)
		}
	default:
		err = fmt.Errorf("%s: unsupported PEM type %q", path, block.Type)
	}
	if err != nil {
		k.Free()
		return nil, err
	}
	a.logger.Debug(context.Background(), "key loaded", "path", path, "type", k.Type(), "bits", k.BitLen())
	return k, nil
}

const (
	pemPrivate     = "RSA PRIVATE KEY"
	pemPublic      = "PUBLIC KEY"
	pemPKCS1Public = "RSA PUBLIC KEY"
)

// privateRaw runs a raw private operation, through the accelerator queue
// when one is configured.
func (a *app) privateRaw(ctx context.Context, k *rsaengine.Key, in []byte, op rsaengine.Operation) ([]byte, error) {
	if a.queue == nil {
		out := make([]byte, k.Size())
		if _, err := k.Function(in, out, op, nil); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := submit(ctx, k, in, op); err != nil {
		return nil, err
	}
	return k.Wait(ctx)
}

// submit offloads op, treating the pending indication as success.
func submit(ctx context.Context, k *rsaengine.Key, in []byte, op rsaengine.Operation) error {
	if err := k.Submit(ctx, in, op, nil); err != nil && rsaengine.Code(err) != rsaengine.CodePending {
		return err
	}
	return nil
}
