package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/padding"
)

// Config is the CLI configuration. It is read from YAML; command-line flags
// override individual fields.
type Config struct {
	Bits        int               `yaml:"bits" validate:"oneof=1024 2048 3072 4096"`
	Exponent    int               `yaml:"exponent" validate:"min=3,odd"`
	Padding     string            `yaml:"padding" validate:"oneof=pkcs1v15 oaep"`
	Hash        string            `yaml:"hash" validate:"oneof=sha1 sha224 sha256 sha384 sha512"`
	MGF         string            `yaml:"mgf" validate:"omitempty,oneof=sha1 sha224 sha256 sha384 sha512"`
	Label       string            `yaml:"label"`
	OutDir      string            `yaml:"out_dir" validate:"required"`
	LogLevel    string            `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string            `yaml:"log_format" validate:"oneof=text json"`
	Accelerator AcceleratorConfig `yaml:"accelerator"`
}

// AcceleratorConfig enables offloading private operations to a worker queue.
type AcceleratorConfig struct {
	Enabled bool  `yaml:"enabled"`
	Workers int64 `yaml:"workers" validate:"min=0,max=64"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Bits:      2048,
		Exponent:  rsaengine.DefaultExponent,
		Padding:   "oaep",
		Hash:      "sha256",
		OutDir:    ".",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig reads a YAML file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	absPath, err := SecurePath(path)
	if err != nil {
		return cfg, fmt.Errorf("secure path: %w", err)
	}
	f, err := os.Open(absPath) // #nosec G304 -- absPath validated by SecurePath
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("odd", isOdd); err != nil {
		panic(fmt.Sprintf("register odd validation: %v", err))
	}
	return v
}

func isOdd(fl validator.FieldLevel) bool {
	return fl.Field().Int()%2 == 1
}

// Validate checks every field and that the output directory stays inside
// the working directory.
func (c *Config) Validate() error {
	c.Padding = strings.ToLower(c.Padding)
	c.Hash = normalizeHash(c.Hash)
	c.MGF = normalizeHash(c.MGF)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := SecurePath(c.OutDir); err != nil {
		return fmt.Errorf("out_dir: %w", err)
	}
	return nil
}

func normalizeHash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "")
}

// HashType returns the configured hash.
func (c Config) HashType() (padding.HashType, error) {
	return padding.ParseHash(c.Hash)
}

// PaddingOptions translates the padding settings. PKCS #1 v1.5 yields nil.
func (c Config) PaddingOptions() (*rsaengine.PaddingOptions, error) {
	pt, err := padding.ParseType(c.Padding)
	if err != nil {
		return nil, err
	}
	if pt == padding.PKCS1v15 {
		return nil, nil
	}
	h, err := c.HashType()
	if err != nil {
		return nil, err
	}
	opts := &rsaengine.PaddingOptions{Padding: pt, Hash: h, MGF: padding.MGFFor(h)}
	if c.MGF != "" {
		mh, err := padding.ParseHash(c.MGF)
		if err != nil {
			return nil, err
		}
		opts.MGF = padding.MGFFor(mh)
	}
	if c.Label != "" {
		opts.Label = []byte(c.Label)
	}
	return opts, nil
}
