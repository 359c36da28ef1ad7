// Package ir provides the value representation shared by the filter
// compiler and its backends.
//
// This package contains value types and their encodings only. Other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value is sealed; decoders never produce a nil Value (null is Null{})
//   - Integral JSON numbers decode to Int, never Float
//   - Canonical JSON (RFC 8785) is the only form used for fingerprints
package ir
