package tjdecode

import (
	"fmt"
	"strings"
)

// Input validation helpers

// ValidateKeyMaterial checks that key is a 16-byte key. The returned error
// wraps ErrInvalidKeyMaterial.
func ValidateKeyMaterial(key []byte, field string) error {
	if key == nil {
		return &ValidationError{
			Field:   field,
			Message: "key cannot be nil",
			Err:     ErrInvalidKeyMaterial,
		}
	}
	if len(key) != KeySize {
		return NewKeyMaterialError(field, len(key))
	}
	return nil
}

// ValidatePayloadOffset checks that a payload offset leaves room for the
// magic and the full header
func ValidatePayloadOffset(offset int) error {
	if offset < MinPayloadOffset {
		return &ValidationError{
			Field:   "payload_offset",
			Value:   offset,
			Message: fmt.Sprintf("offset too small: got %d, minimum is %d", offset, MinPayloadOffset),
		}
	}
	return nil
}

// ValidateFilePath checks if a file path is valid (not empty)
func ValidateFilePath(path string) error {
	if path == "" {
		return &ValidationError{
			Field:   "path",
			Message: "file path cannot be empty",
		}
	}
	return nil
}

// ValidateOutputPath checks that an explicit output path does not name the
// source file itself
func ValidateOutputPath(source, output string) error {
	if err := ValidateFilePath(output); err != nil {
		return err
	}
	if cleanSlash(source) == cleanSlash(output) {
		return &ValidationError{
			Field:   "output",
			Value:   output,
			Message: "output would overwrite the source file",
		}
	}
	return nil
}

// ValidateWorkers checks a worker count. Zero means one worker per CPU.
func ValidateWorkers(n int) error {
	if n < 0 {
		return &ValidationError{
			Field:   "max_workers",
			Value:   n,
			Message: "worker count cannot be negative",
		}
	}
	return nil
}

// ValidateInfix checks an output infix
func ValidateInfix(infix string) error {
	if strings.ContainsAny(infix, "/\\") {
		return &ValidationError{
			Field:   "output_infix",
			Value:   infix,
			Message: "infix cannot contain path separators",
		}
	}
	return nil
}
