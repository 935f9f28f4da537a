// Package rsaengine implements RSA key handling and the RSA primitive:
// key generation, the raw permutation with CRT and blinding, PKCS #1 v1.5
// and OAEP encryption, PKCS #1 v1.5 signatures, and DER key encoding.
//
// A Key is created empty with NewKey or NewKeyWithConfig and populated once
// by MakeKey, DecodePrivateKey, DecodePublicKey or ImportRawPublicKey. All
// operations take caller buffers and report failures as *Error values
// wrapping the package sentinels; Code maps any error to an integer result.
//
// Decryption reports every padding failure as ErrInvalidPadding and
// verification reports every failure as ErrInvalidSignature, without
// revealing which check failed. Private operations are blinded; by default
// they fail with ErrRngUnavailable when no random source is available.
//
// Keys bound to an accel.Queue can offload the raw operation with Submit and
// collect it with Poll or Wait.
package rsaengine
