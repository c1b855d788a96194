package tjdecode

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// KeyProvider supplies the 16-byte base key of a client build
type KeyProvider interface {
	// BaseKey returns the base key. The returned slice must not be modified.
	BaseKey() ([]byte, error)
}

// DefaultBaseKeyHex is the base key of the stock client build
const DefaultBaseKeyHex = "67 1c b6 06 83 8b 3b 78 3f 47 5b b2 a3 14 d3 1f"

// DefaultEnvVar is the environment variable read by the command line tool
const DefaultEnvVar = "TJDECODE_BASE_KEY"

// ParseKeyHex parses a key written as hex byte pairs. Pairs may be separated
// by whitespace, commas or both, or not separated at all.
func ParseKeyHex(s string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ',':
			return -1
		}
		return r
	}, s)

	key, err := hex.DecodeString(compact)
	if err != nil {
		return nil, &ValidationError{
			Field:   "base_key",
			Value:   s,
			Message: fmt.Sprintf("not a hex byte sequence: %v", err),
			Err:     ErrInvalidKeyMaterial,
		}
	}
	if len(key) != KeySize {
		return nil, NewKeyMaterialError("base_key", len(key))
	}
	return key, nil
}

// FormatKeyHex renders a key the way ParseKeyHex reads it
func FormatKeyHex(key []byte) string {
	parts := make([]string, len(key))
	for i, b := range key {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// StaticKeyProvider implements KeyProvider with a fixed key
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a provider for a raw 16-byte key
func NewStaticKeyProvider(key []byte) (*StaticKeyProvider, error) {
	if err := ValidateKeyMaterial(key, "base_key"); err != nil {
		return nil, err
	}
	return &StaticKeyProvider{key: append([]byte(nil), key...)}, nil
}

// NewHexKeyProvider creates a provider from a hex key string
func NewHexKeyProvider(s string) (*StaticKeyProvider, error) {
	key, err := ParseKeyHex(s)
	if err != nil {
		return nil, err
	}
	return &StaticKeyProvider{key: key}, nil
}

// BaseKey returns the fixed key
func (p *StaticKeyProvider) BaseKey() ([]byte, error) {
	return p.key, nil
}

// DefaultKeyProvider returns a provider for the stock client base key
func DefaultKeyProvider() *StaticKeyProvider {
	p, err := NewHexKeyProvider(DefaultBaseKeyHex)
	if err != nil {
		panic(err)
	}
	return p
}

// EnvKeyProvider implements KeyProvider using an environment variable
// holding the key in hex
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates a new environment variable key provider
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

// Set reports whether the variable is present and non-empty
func (e *EnvKeyProvider) Set() bool {
	return strings.TrimSpace(os.Getenv(e.envVar)) != ""
}

// BaseKey parses the key from the environment variable
func (e *EnvKeyProvider) BaseKey() ([]byte, error) {
	keyHex := os.Getenv(e.envVar)
	if strings.TrimSpace(keyHex) == "" {
		return nil, fmt.Errorf("environment variable %s not set", e.envVar)
	}
	key, err := ParseKeyHex(keyHex)
	if err != nil {
		return nil, fmt.Errorf("environment variable %s: %w", e.envVar, err)
	}
	return key, nil
}
