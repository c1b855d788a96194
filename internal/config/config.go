// Package config loads the tjdecode YAML configuration file and turns it
// into decoder settings.
//
// A configuration file looks like:
//
//	profile: global
//	fallback: true
//	profiles:
//	  - name: global
//	    base_key: "67 1c b6 06 83 8b 3b 78 3f 47 5b b2 a3 14 d3 1f"
//	  - name: jp
//	    base_key: "00112233445566778899aabbccddeeff"
//	workers: 8
//	variants: [tj!, tje]
//	exclude: ["**/cache/**"]
//	output_infix: .dec
//	header_size: 23
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/absfs/tjdecode"
	"gopkg.in/yaml.v3"
)

// BuiltinProfile names the built-in base key when it takes part in a
// fallback chain
const BuiltinProfile = "builtin"

// Profile is a named base key, usually one per client build
type Profile struct {
	Name    string `yaml:"name"`
	BaseKey string `yaml:"base_key"`
}

// File is the on-disk configuration
type File struct {
	// Profile selects the default profile
	Profile string `yaml:"profile"`

	// Profiles lists the known base keys in fallback order
	Profiles []Profile `yaml:"profiles"`

	// Fallback tries every profile, then the built-in key, when the
	// selected key yields a corrupt length
	Fallback bool `yaml:"fallback"`

	Workers     int      `yaml:"workers"`
	Variants    []string `yaml:"variants"`
	Exclude     []string `yaml:"exclude"`
	OutputInfix string   `yaml:"output_infix"`

	// HeaderSize is the payload offset in bytes
	HeaderSize int `yaml:"header_size"`
}

// DefaultPath returns the per-user configuration file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tjdecode", "config.yaml"), nil
}

// Load reads and validates a configuration file. An empty name loads the
// file at DefaultPath if there is one, and otherwise returns an empty
// configuration.
func Load(name string) (*File, error) {
	explicit := name != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &File{}, nil
		}
		name = p
	}

	data, err := os.ReadFile(name)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Parse decodes and validates configuration YAML. Unknown keys are errors.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the profiles and numeric settings
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Profiles))
	for i, p := range f.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile %d: name is required", i)
		}
		if p.Name == BuiltinProfile {
			return fmt.Errorf("profile %q: name is reserved", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("profile %q: defined twice", p.Name)
		}
		seen[p.Name] = true
		if _, err := tjdecode.NewHexKeyProvider(p.BaseKey); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	if f.Profile != "" && !seen[f.Profile] {
		return fmt.Errorf("profile %q: not defined", f.Profile)
	}
	if err := tjdecode.ValidateWorkers(f.Workers); err != nil {
		return err
	}
	if f.HeaderSize != 0 {
		if err := tjdecode.ValidatePayloadOffset(f.HeaderSize); err != nil {
			return err
		}
	}
	if f.OutputInfix != "" {
		if err := tjdecode.ValidateInfix(f.OutputInfix); err != nil {
			return err
		}
	}
	if _, err := ParseVariants(f.Variants); err != nil {
		return err
	}
	return nil
}

// VariantSet returns the configured variants for ScanOptions.Variants.
// It is nil, selecting the defaults, when the file has no variants key; an
// empty list selects nothing.
func (f *File) VariantSet() *tjdecode.VariantSet {
	if f.Variants == nil {
		return nil
	}
	s, err := ParseVariants(f.Variants)
	if err != nil {
		return nil
	}
	return s.Only()
}

// ParseVariants turns variant names into a set. Blank names are ignored,
// so an empty list gives an empty set.
func ParseVariants(names []string) (tjdecode.VariantSet, error) {
	var s tjdecode.VariantSet
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		v, ok := tjdecode.ParseVariant(name)
		if !ok {
			return 0, fmt.Errorf("unknown variant %q", name)
		}
		s = s.With(v)
	}
	return s, nil
}

func (f *File) profile(name string) (Profile, bool) {
	for _, p := range f.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// KeyProvider resolves the base key. baseKeyHex (from --base-key) wins,
// then the environment variable, then the named profile (or the file's
// default profile), then the built-in key. With Fallback set, the remaining
// profiles and the built-in key follow the chosen key in trial order.
func (f *File) KeyProvider(profile, baseKeyHex string) (tjdecode.KeyProvider, error) {
	if baseKeyHex != "" {
		p, err := tjdecode.NewHexKeyProvider(baseKeyHex)
		if err != nil {
			return nil, fmt.Errorf("--base-key: %w", err)
		}
		return p, nil
	}

	env := tjdecode.NewEnvKeyProvider(tjdecode.DefaultEnvVar)
	if env.Set() {
		if _, err := env.BaseKey(); err != nil {
			return nil, err
		}
		return env, nil
	}

	if profile == "" {
		profile = f.Profile
	}

	var names []string
	var providers []tjdecode.KeyProvider
	add := func(name string, p tjdecode.KeyProvider) {
		names = append(names, name)
		providers = append(providers, p)
	}

	if profile != "" {
		p, ok := f.profile(profile)
		if !ok {
			return nil, fmt.Errorf("profile %q: not defined", profile)
		}
		kp, err := tjdecode.NewHexKeyProvider(p.BaseKey)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		add(p.Name, kp)
	} else {
		add(BuiltinProfile, tjdecode.DefaultKeyProvider())
	}

	if !f.Fallback {
		return providers[0], nil
	}

	for _, p := range f.Profiles {
		if p.Name == profile {
			continue
		}
		kp, err := tjdecode.NewHexKeyProvider(p.BaseKey)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		add(p.Name, kp)
	}
	if profile != "" {
		add(BuiltinProfile, tjdecode.DefaultKeyProvider())
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	return tjdecode.NewNamedKeyProvider(names, providers)
}
