package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/hsiuhsiu/rsa-engine-go"

// enginePackages are the library packages that handle key material.
var enginePackages = []string{
	modulePath + "/pkg/rsaengine",
	modulePath + "/pkg/rsaengine/bignum",
	modulePath + "/pkg/rsaengine/padding",
	modulePath + "/pkg/rsaengine/accel",
	modulePath + "/pkg/rsaengine/rng",
}

func load(t *testing.T, mode packages.LoadMode, patterns ...string) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode | packages.NeedFiles | packages.NeedName}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	return pkgs
}
