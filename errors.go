package tjdecode

import (
	"errors"
	"fmt"
	"os"
)

// Error types represent different categories of errors

// ValidationError represents a configuration or parameter validation error,
// including key material of the wrong size
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatError reports a file that is not a well-formed container
type FormatError struct {
	Path    string // File path
	Magic   []byte // First bytes of the file, at most MagicSize
	Message string // Human-readable error message
	Err     error  // ErrNotAContainer or ErrTruncatedHeader
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("format error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("format error: %s", e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DecodeError represents a key derivation or decryption failure
type DecodeError struct {
	Operation string // "derive" or "decrypt"
	Path      string // File path, if applicable
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Operation, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IOError represents a file system I/O error
type IOError struct {
	Operation string // "read", "write", "mkdir", "rename", etc.
	Path      string // File path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CorruptionError reports a recovered plaintext length outside the window
// the encoder can produce. It almost always means the base key is wrong.
type CorruptionError struct {
	Length  uint32 // Recovered length read from the last word
	Words   int    // Number of 32-bit words in the payload
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corruption error: %s", e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrNotAContainer      = errors.New("not a tj!/tje/tjz container")
	ErrTruncatedHeader    = errors.New("container header is truncated")
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	ErrCorruptLength      = errors.New("recovered length out of range")
	ErrNilConfig          = errors.New("config cannot be nil")
	ErrNilKeyProvider     = errors.New("key provider cannot be nil")
	ErrNilFileSystem      = errors.New("filesystem cannot be nil")
	ErrReadOnly           = fmt.Errorf("decoded view is read-only: %w", os.ErrPermission)
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewKeyMaterialError creates a validation error for key material of the
// wrong size
func NewKeyMaterialError(field string, size int) error {
	return &ValidationError{
		Field:   field,
		Value:   size,
		Message: fmt.Sprintf("must be %d bytes, got %d", KeySize, size),
		Err:     ErrInvalidKeyMaterial,
	}
}

// NewDecodeError creates a new decode error
func NewDecodeError(operation, path string, err error) error {
	return &DecodeError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFormatError checks if an error is a format error
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsCorruptionError checks if an error is a corruption error
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// ErrorKind is the user-facing category of a decode failure
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindNotAContainer
	KindTruncatedHeader
	KindInvalidKeyMaterial
	KindCorruptLength
	KindIO
	KindUnknown
)

// String returns the name of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotAContainer:
		return "not-a-container"
	case KindTruncatedHeader:
		return "truncated-header"
	case KindInvalidKeyMaterial:
		return "invalid-key-material"
	case KindCorruptLength:
		return "corrupt-length"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Hint names the corrective action for the kind
func (k ErrorKind) Hint() string {
	switch k {
	case KindNotAContainer, KindTruncatedHeader:
		return "not a recognized container; check the folder"
	case KindInvalidKeyMaterial, KindCorruptLength:
		return "key/length mismatch; check the base key for this client build"
	case KindIO:
		return "disk I/O problem; check the path and permissions"
	default:
		return ""
	}
}

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotAContainer):
		return KindNotAContainer
	case errors.Is(err, ErrTruncatedHeader):
		return KindTruncatedHeader
	case errors.Is(err, ErrInvalidKeyMaterial):
		return KindInvalidKeyMaterial
	case errors.Is(err, ErrCorruptLength):
		return KindCorruptLength
	case IsIOError(err):
		return KindIO
	default:
		return KindUnknown
	}
}
