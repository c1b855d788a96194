package tjdecode

import (
	"log/slog"
	"strings"
)

// Variant identifies which of the three container formats a file uses
type Variant uint8

const (
	// VariantUnknown is reported for anything that is not a container,
	// including files that could not be read
	VariantUnknown Variant = iota
	// VariantBang is the "tj!" container (scripts and JSON data)
	VariantBang
	// VariantE is the "tje" container (PNG/JPG images)
	VariantE
	// VariantZ is the "tjz" container
	VariantZ
)

// String returns the magic tag of the variant, or "unknown"
func (v Variant) String() string {
	switch v {
	case VariantBang:
		return "tj!"
	case VariantE:
		return "tje"
	case VariantZ:
		return "tjz"
	default:
		return "unknown"
	}
}

// Magic returns the 3-byte tag that starts a container of this variant.
// VariantUnknown has no tag and returns nil.
func (v Variant) Magic() []byte {
	if v == VariantUnknown {
		return nil
	}
	return []byte(v.String())
}

// Experimental reports whether decoding this variant is known to be
// unreliable for the named file. JSON payloads in "tj!" containers and every
// "tjz" container have not been verified against real client output.
func (v Variant) Experimental(name string) bool {
	switch v {
	case VariantZ:
		return true
	case VariantBang:
		return strings.EqualFold(extension(name), ".json")
	default:
		return false
	}
}

// ParseVariant parses a variant name. Both the magic tag ("tj!") and the
// short names used on command lines ("bang", "e", "z") are accepted.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tj!", "bang", "!":
		return VariantBang, true
	case "tje", "e":
		return VariantE, true
	case "tjz", "z":
		return VariantZ, true
	default:
		return VariantUnknown, false
	}
}

// VariantSet selects which variants a scan or batch run should process
type VariantSet uint8

const (
	// AllVariants enables every container variant
	AllVariants = VariantSet(1<<VariantBang | 1<<VariantE | 1<<VariantZ)

	// DefaultVariants enables "tj!" and "tje". "tjz" is opt-in.
	DefaultVariants = VariantSet(1<<VariantBang | 1<<VariantE)
)

// NewVariantSet builds a set from individual flags
func NewVariantSet(bang, e, z bool) VariantSet {
	var s VariantSet
	if bang {
		s = s.With(VariantBang)
	}
	if e {
		s = s.With(VariantE)
	}
	if z {
		s = s.With(VariantZ)
	}
	return s
}

// With returns a copy of the set with v enabled
func (s VariantSet) With(v Variant) VariantSet {
	if v == VariantUnknown {
		return s
	}
	return s | 1<<v
}

// Only returns a pointer to a copy of s, for ScanOptions.Variants
func (s VariantSet) Only() *VariantSet {
	return &s
}

// Has reports whether v is enabled. VariantUnknown is never a member.
func (s VariantSet) Has(v Variant) bool {
	return v != VariantUnknown && s&(1<<v) != 0
}

// String lists the enabled variants separated by commas, or "none"
func (s VariantSet) String() string {
	if s&AllVariants == 0 {
		return "none"
	}
	var names []string
	for _, v := range []Variant{VariantBang, VariantE, VariantZ} {
		if s.Has(v) {
			names = append(names, v.String())
		}
	}
	return strings.Join(names, ",")
}

// Config contains configuration for a Decoder
type Config struct {
	// KeyProvider supplies the base key of the client build.
	// Defaults to the built-in key when nil.
	KeyProvider KeyProvider

	// PayloadOffset is where the cipher payload begins. It covers the magic,
	// the 16-byte header and the 4 reserved bytes, so it cannot be smaller
	// than MagicSize+HeaderSize. Zero selects DefaultPayloadOffset.
	PayloadOffset int

	// OutputInfix is inserted before the extension of the source file to
	// build the default output path. Empty selects DefaultOutputInfix.
	OutputInfix string

	// Logger receives structured diagnostics. Nil discards them.
	Logger *slog.Logger

	// Parallel controls the batch worker pool
	Parallel ParallelConfig
}

// DefaultConfig returns a configuration using the built-in base key
func DefaultConfig() *Config {
	return &Config{
		KeyProvider:   DefaultKeyProvider(),
		PayloadOffset: DefaultPayloadOffset,
		OutputInfix:   DefaultOutputInfix,
		Parallel:      DefaultParallelConfig(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.PayloadOffset != 0 {
		if err := ValidatePayloadOffset(c.PayloadOffset); err != nil {
			return err
		}
	}
	if err := ValidateInfix(c.OutputInfix); err != nil {
		return err
	}
	return c.Parallel.Validate()
}

// withDefaults returns a copy of the configuration with zero values filled in
func (c *Config) withDefaults() *Config {
	out := *c
	if out.KeyProvider == nil {
		out.KeyProvider = DefaultKeyProvider()
	}
	if out.PayloadOffset == 0 {
		out.PayloadOffset = DefaultPayloadOffset
	}
	if out.OutputInfix == "" {
		out.OutputInfix = DefaultOutputInfix
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return &out
}
