package schema

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/typica/internal/filter"
)

// Payload error codes (E400-E499).
const (
	ErrCodeDecode     = "E401" // input is neither JSON nor YAML
	ErrCodeSchema     = "E402" // input does not match #Payload
	ErrCodeTimezone   = "E403" // unknown timezone
	ErrCodeDateFormat = "E404" // timeframe bound does not match formatDate
)

// Issue is one problem found in a payload.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Path, i.Message)
}

// PayloadError collects every issue found in a payload.
type PayloadError struct {
	Issues []Issue
}

func (e *PayloadError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid payload: " + e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("invalid payload (%d issues): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Code returns the code of the first issue.
func (e *PayloadError) Code() string {
	if len(e.Issues) == 0 {
		return ErrCodeSchema
	}
	return e.Issues[0].Code
}

// fromCUE flattens a CUE error list into issues.
func fromCUE(err error) *PayloadError {
	var issues []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issues = append(issues, Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrCodeSchema,
		})
	}
	if len(issues) == 0 {
		issues = append(issues, Issue{Message: err.Error(), Code: ErrCodeSchema})
	}
	return &PayloadError{Issues: issues}
}

func fromValidation(errs []filter.ValidationError) *PayloadError {
	issues := make([]Issue, len(errs))
	for i, e := range errs {
		issues[i] = Issue{Path: e.Field, Message: e.Message, Code: e.Code}
	}
	return &PayloadError{Issues: issues}
}
