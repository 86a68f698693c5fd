package serial

import (
	"errors"
	"fmt"
)

// FormatErrorCode categorizes decode failures.
type FormatErrorCode string

const (
	// ErrCodeBadMagic indicates the file is not a verdant graph at all.
	ErrCodeBadMagic FormatErrorCode = "BAD_MAGIC"

	// ErrCodeVersionMismatch indicates a graph written under a different
	// format version. Not corruption - just unreadable by this engine.
	ErrCodeVersionMismatch FormatErrorCode = "VERSION_MISMATCH"

	// ErrCodeTruncated indicates the byte stream ended mid-structure.
	ErrCodeTruncated FormatErrorCode = "TRUNCATED"

	// ErrCodeCorrupt indicates internally inconsistent structure:
	// out-of-range edge targets, malformed CSR ranges, invalid kinds.
	ErrCodeCorrupt FormatErrorCode = "CORRUPT"
)

// FormatError reports an unreadable serialized graph.
//
// Format errors are always recoverable at the policy layer: the previous
// graph is discarded and the session proceeds as a full build. They are
// never surfaced to the user as a hard failure.
type FormatError struct {
	Code    FormatErrorCode
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dep-graph format error [%s]: %s", e.Code, e.Message)
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsVersionMismatch reports whether err is a format-version mismatch.
func IsVersionMismatch(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe) && fe.Code == ErrCodeVersionMismatch
}

func formatErrorf(code FormatErrorCode, format string, args ...any) *FormatError {
	return &FormatError{Code: code, Message: fmt.Sprintf(format, args...)}
}
