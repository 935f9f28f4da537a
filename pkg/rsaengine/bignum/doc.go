// Package bignum adapts the constant-time natural-number arithmetic of
// github.com/cronokirby/safenum to the handful of operations the RSA engine
// needs: modular exponentiation, multiplication, subtraction and inversion,
// range checks and big-endian serialization.
//
// No other package in the module imports safenum directly. Values are
// immutable from the caller's point of view; every operation returns a fresh
// Int.
package bignum
