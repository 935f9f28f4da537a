package rsaengine

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/bignum"
)

// DefaultExponent is the usual public exponent, F4.
const DefaultExponent = 65537

const maxPrimeAttempts = 1000

var bigOne = big.NewInt(1)

// MakeKey populates k with a fresh bits-bit key pair using public exponent
// e. bits must be even and within [MinBits, MaxBits]; e must be odd and at
// least 3. Candidate primes p with gcd(e, p-1) != 1 are discarded. random
// nil uses the key's bound source.
func (k *Key) MakeKey(bits int, e int, random io.Reader) error {
	const name = "make key"
	if err := k.populate(); err != nil {
		return opError(name, err)
	}
	if bits < MinBits || bits > MaxBits || bits%2 != 0 {
		return opError(name, fmt.Errorf("%w: %d bits, want an even size in [%d, %d]", ErrInvalidSize, bits, MinBits, MaxBits))
	}
	if e < 3 || e%2 == 0 {
		return opError(name, fmt.Errorf("%w: %d", ErrInvalidExponent, e))
	}
	if random == nil {
		random = k.rng
	}
	if random == nil {
		return opError(name, ErrRngUnavailable)
	}

	bigE := big.NewInt(int64(e))
	p, err := generatePrime(random, bits/2, bigE)
	if err != nil {
		return opError(name, err)
	}
	var q *big.Int
	n := new(big.Int)
	for i := 0; ; i++ {
		if i == maxPrimeAttempts {
			return opError(name, fmt.Errorf("%w: no suitable prime pair", ErrRngUnavailable))
		}
		if q, err = generatePrime(random, bits/2, bigE); err != nil {
			return opError(name, err)
		}
		if p.Cmp(q) != 0 && n.Mul(p, q).BitLen() == bits {
			break
		}
	}

	pm1 := new(big.Int).Sub(p, bigOne)
	qm1 := new(big.Int).Sub(q, bigOne)
	gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
	lambda := new(big.Int).Mul(pm1, qm1)
	lambda.Div(lambda, gcd)

	d := new(big.Int).ModInverse(bigE, lambda)
	if d == nil {
		return opError(name, fmt.Errorf("%w: %d not invertible", ErrInvalidExponent, e))
	}
	dP := new(big.Int).Mod(d, pm1)
	dQ := new(big.Int).Mod(d, qm1)
	u := new(big.Int).ModInverse(q, p)

	comps := []*big.Int{n, bigE, d, p, q, dP, dQ, u}
	err = k.setPrivate(bignum.FromBig(n), bignum.FromBig(bigE), bignum.FromBig(d),
		bignum.FromBig(p), bignum.FromBig(q), bignum.FromBig(dP), bignum.FromBig(dQ), bignum.FromBig(u))
	for _, x := range append(comps, pm1, qm1, lambda) {
		x.SetInt64(0)
	}
	if err != nil {
		return opError(name, err)
	}
	k.logger.Debug(context.Background(), "key generated", "bits", bits, "crt", k.crt)
	return nil
}

// generatePrime returns a bits-bit prime p with gcd(e, p-1) = 1.
func generatePrime(random io.Reader, bits int, e *big.Int) (*big.Int, error) {
	pm1 := new(big.Int)
	gcd := new(big.Int)
	for i := 0; i < maxPrimeAttempts; i++ {
		p, err := rand.Prime(random, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRngUnavailable, err)
		}
		pm1.Sub(p, bigOne)
		if gcd.GCD(nil, nil, e, pm1).Cmp(bigOne) == 0 {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no prime coprime to exponent", ErrInvalidExponent)
}
