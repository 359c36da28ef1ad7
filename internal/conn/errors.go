package conn

import (
	"errors"
	"fmt"
)

// Error codes (E200-E299), reported by the CLI next to the message.
const (
	ErrCodeMalformed         = "E201" // connection string does not follow the grammar
	ErrCodeUnsupportedScheme = "E202" // scheme rejected by an allow-list
	ErrCodeClusterTarget     = "E203" // operation needs a single endpoint
)

// ErrMalformedConnectionString matches every *MalformedError via errors.Is.
var ErrMalformedConnectionString = errors.New("malformed connection string")

// ErrClusteredTarget is returned by adapters that can only address one endpoint.
var ErrClusteredTarget = errors.New("clustered target has more than one endpoint")

// Stage names the tokenizer step that rejected a connection string.
type Stage string

const (
	StageScheme      Stage = "scheme"
	StageSplit       Stage = "split"
	StageCredentials Stage = "credentials"
	StageHost        Stage = "host"
	StagePort        Stage = "port"
)

// MalformedError reports the stage and the fragment a connection string
// failed on. Fragment never contains the password.
type MalformedError struct {
	Stage    Stage
	Fragment string
	Reason   string
	Err      error // optional underlying cause
}

func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("%s: %s stage: %s", ErrMalformedConnectionString, e.Stage, e.Reason)
	if e.Fragment != "" {
		msg += fmt.Sprintf(" (at %q)", e.Fragment)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Code returns the CLI error code.
func (e *MalformedError) Code() string { return ErrCodeMalformed }

func (e *MalformedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedConnectionString) true.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedConnectionString
}

func malformed(stage Stage, fragment, reason string) *MalformedError {
	return &MalformedError{Stage: stage, Fragment: fragment, Reason: reason}
}

// UnsupportedSchemeError is returned when an Allowlist rejects a scheme.
type UnsupportedSchemeError struct {
	Scheme  string
	Allowed []Family
}

func (e *UnsupportedSchemeError) Error() string {
	if e.Scheme == "" {
		return "connection target has no scheme"
	}
	return fmt.Sprintf("unsupported scheme %q (allowed families: %v)", e.Scheme, e.Allowed)
}

// Code returns the CLI error code.
func (e *UnsupportedSchemeError) Code() string { return ErrCodeUnsupportedScheme }
