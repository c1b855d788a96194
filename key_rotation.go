package tjdecode

import (
	"errors"
	"fmt"
)

// MultiKeyProvider holds the base keys of several client builds. Decoding
// tries them in order and keeps the first whose recovered length is valid.
type MultiKeyProvider struct {
	providers []KeyProvider
	names     []string
}

// NewMultiKeyProvider creates a new multi-key provider. The first provider
// is the primary one and is what BaseKey returns.
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one key provider required")
	}
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("provider %d: %w", i, ErrNilKeyProvider)
		}
	}
	names := make([]string, len(providers))
	for i := range names {
		names[i] = fmt.Sprintf("#%d", i)
	}
	return &MultiKeyProvider{providers: providers, names: names}, nil
}

// NewNamedKeyProvider creates a multi-key provider whose entries carry
// names, typically the profile names of a configuration file. names and
// providers must have the same length.
func NewNamedKeyProvider(names []string, providers []KeyProvider) (*MultiKeyProvider, error) {
	if len(names) != len(providers) {
		return nil, fmt.Errorf("got %d names for %d providers", len(names), len(providers))
	}
	m, err := NewMultiKeyProvider(providers...)
	if err != nil {
		return nil, err
	}
	copy(m.names, names)
	return m, nil
}

// BaseKey uses the primary provider
func (m *MultiKeyProvider) BaseKey() ([]byte, error) {
	return m.providers[0].BaseKey()
}

// Name returns the name of the i-th provider
func (m *MultiKeyProvider) Name(i int) string {
	if i < 0 || i >= len(m.names) {
		return ""
	}
	return m.names[i]
}

// Len returns the number of providers
func (m *MultiKeyProvider) Len() int {
	return len(m.providers)
}

// candidateKey is one base key to try, with the index of the provider that
// supplied it
type candidateKey struct {
	index int
	key   []byte
}

// candidateKeys lists the base keys a provider offers, in trial order.
// Providers that fail are skipped; it is an error only if all of them fail.
func candidateKeys(p KeyProvider) ([]candidateKey, error) {
	m, ok := p.(*MultiKeyProvider)
	if !ok {
		key, err := p.BaseKey()
		if err != nil {
			return nil, err
		}
		return []candidateKey{{index: 0, key: key}}, nil
	}

	var keys []candidateKey
	var lastErr error
	for i, provider := range m.providers {
		key, err := provider.BaseKey()
		if err != nil {
			lastErr = err
			continue
		}
		keys = append(keys, candidateKey{index: i, key: key})
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("all key providers failed: %w", lastErr)
	}
	return keys, nil
}

// decryptWithKeys decrypts a container payload with each candidate in turn.
// Only a corrupt recovered length moves on to the next key; any other error
// is returned at once. The error from the last candidate is kept when none
// succeed.
func decryptWithKeys(name string, c *Container, keys []candidateKey) ([]byte, int, error) {
	var lastErr error
	for _, cand := range keys {
		fileKey, err := DeriveFileKey(cand.key, c.Header[:])
		if err != nil {
			return nil, -1, NewDecodeError("derive", name, err)
		}
		plain, err := DecryptBlock(c.Payload, fileKey)
		if err == nil {
			return plain, cand.index, nil
		}
		lastErr = err
		if !errors.Is(err, ErrCorruptLength) {
			break
		}
	}
	return nil, -1, NewDecodeError("decrypt", name, lastErr)
}
