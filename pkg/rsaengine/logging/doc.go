// Package logging provides the structured logging facade used by the RSA
// engine.
//
// The Logger interface wraps the context-aware subset of log/slog:
//
//	logger := logging.New(nil) // slog.Default()
//	logger.Debug(ctx, "key populated", "bits", 2048, logging.Redacted("d"))
//
// The engine never logs key material, plaintexts or padded blocks. Attributes
// that would carry such values are emitted through Redacted so the record
// still shows that the field existed.
package logging
