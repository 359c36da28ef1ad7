package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/typica/internal/conn"
	"github.com/roach88/typica/internal/schema"
)

// CLI error codes (E001-E099). Domain packages own E2xx (conn), E3xx
// (filter), E4xx (schema) and E5xx (meta).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // Input could not be read
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeInvalidFlag = "E008" // Flag value rejected
	ErrCodeConfig      = "E009" // Config file rejected
)

// StdinPath names standard input as a payload source.
const StdinPath = "-"

// LoadError represents an error that occurred while reading input.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ReadInput reads the file at path, or stdin when path is "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading stdin: %v", err)}
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("payload file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}

// LoadPayload reads and decodes a payload. Read failures are *LoadError;
// schema violations are *schema.PayloadError.
func LoadPayload(path string, stdin io.Reader) (*schema.Payload, error) {
	data, err := ReadInput(path, stdin)
	if err != nil {
		return nil, err
	}
	return schema.Decode(data)
}

// coded is implemented by every domain error that carries an error code.
type coded interface {
	error
	Code() string
}

// describeError splits an error into code, message and details for output,
// and picks the exit code: input the command could not read is a command
// error, input it rejected is a failure.
func describeError(err error) (code, message string, details any, exit int) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message, nil, ExitCommandError
	}

	var payloadErr *schema.PayloadError
	if errors.As(err, &payloadErr) {
		return payloadErr.Code(), payloadErr.Error(), payloadErr.Issues, ExitFailure
	}

	var malformed *conn.MalformedError
	if errors.As(err, &malformed) {
		details := map[string]string{"stage": string(malformed.Stage), "reason": malformed.Reason}
		return malformed.Code(), malformed.Error(), details, ExitFailure
	}

	var c coded
	if errors.As(err, &c) {
		return c.Code(), c.Error(), nil, ExitFailure
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return ErrCodeGeneric, exitErr.Error(), nil, exitErr.Code
	}

	return ErrCodeGeneric, err.Error(), nil, ExitFailure
}

// fail outputs err and returns the matching ExitError.
func fail(f *OutputFormatter, err error) error {
	code, message, details, exit := describeError(err)
	_ = f.Error(code, message, details)
	return WrapExitError(exit, code, err)
}
