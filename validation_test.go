package tjdecode

import (
	"errors"
	"strings"
	"testing"
)

// TestConfig_Validate tests the Config validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
			errMsg:  "config cannot be nil",
		},
		{
			name:    "zero config",
			config:  &Config{},
			wantErr: false,
		},
		{
			name:    "default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "payload offset inside header",
			config:  &Config{PayloadOffset: 10},
			wantErr: true,
			errMsg:  "offset too small",
		},
		{
			name:    "minimum payload offset",
			config:  &Config{PayloadOffset: MinPayloadOffset},
			wantErr: false,
		},
		{
			name:    "infix with separator",
			config:  &Config{OutputInfix: "/dec"},
			wantErr: true,
			errMsg:  "infix cannot contain path separators",
		},
		{
			name:    "negative workers",
			config:  &Config{Parallel: ParallelConfig{MaxWorkers: -1}},
			wantErr: true,
			errMsg:  "worker count cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Config.Validate() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Config.Validate() error = %q, want it to contain %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestParallelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ParallelConfig
		wantErr bool
	}{
		{"zero means per CPU", ParallelConfig{}, false},
		{"negative workers", ParallelConfig{MaxWorkers: -1}, true},
		{"too many workers", ParallelConfig{MaxWorkers: 2000}, true},
		{"valid config", ParallelConfig{MaxWorkers: 8}, false},
		{"default config", DefaultParallelConfig(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("ParallelConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if (ParallelConfig{}).workers() < 1 {
		t.Error("zero config must resolve to at least one worker")
	}
}

func TestValidateKeyMaterial(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{"valid", make([]byte, KeySize), false},
		{"nil", nil, true},
		{"empty", []byte{}, true},
		{"too short", make([]byte, 15), true},
		{"too long", make([]byte, 32), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeyMaterial(tt.key, "key")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateKeyMaterial() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidKeyMaterial) {
				t.Errorf("expected ErrInvalidKeyMaterial, got %v", err)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	if err := ValidateFilePath(""); !IsValidationError(err) {
		t.Errorf("empty path: expected validation error, got %v", err)
	}
	if err := ValidateFilePath("/game/a.tj"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		source, output string
		wantErr        bool
	}{
		{"/a/b.tj", "/a/b.dec.tj", false},
		{"/a/b.tj", "/a/b.tj", true},
		{"/a/b.tj", "/a/../a/b.tj", true},
		{"/a/b.tj", "", true},
	}

	for _, tt := range tests {
		err := ValidateOutputPath(tt.source, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOutputPath(%q, %q) error = %v, wantErr %v", tt.source, tt.output, err, tt.wantErr)
		}
	}
}

func TestValidatePayloadOffset(t *testing.T) {
	for offset, wantErr := range map[int]bool{
		0:                    true,
		MinPayloadOffset - 1: true,
		MinPayloadOffset:     false,
		DefaultPayloadOffset: false,
		4096:                 false,
	} {
		if err := ValidatePayloadOffset(offset); (err != nil) != wantErr {
			t.Errorf("ValidatePayloadOffset(%d) error = %v, wantErr %v", offset, err, wantErr)
		}
	}
}
