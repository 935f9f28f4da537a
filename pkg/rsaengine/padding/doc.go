// Package padding implements the RSA encoding schemes used by the engine:
// PKCS #1 v1.5 block types 1 (signatures) and 2 (encryption), OAEP with a
// selectable hash and MGF1 hash, and the DER DigestInfo wrapper used for
// hash-based PKCS #1 v1.5 signatures.
//
// Decoders validate the whole block with constant-time selection and report
// every malformed block with the single error ErrInvalidPadding, whatever
// check failed. The scan helpers in ct.go carry that property and are tested
// on their own.
package padding
