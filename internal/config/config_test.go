package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %q, want %q", c.ServiceURL, DefaultServiceURL)
	}
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if c.DecoyRatio != DefaultDecoyRatio {
		t.Errorf("DecoyRatio = %v, want %v", c.DecoyRatio, DefaultDecoyRatio)
	}
	if len(c.Jurisdictions) != 1 || c.Jurisdictions[0] != "FR" {
		t.Errorf("Jurisdictions = %v, want [FR]", c.Jurisdictions)
	}
	if c.AliasStyle != "generic" {
		t.Errorf("AliasStyle = %q, want generic", c.AliasStyle)
	}
	if c.DBDir == "" {
		t.Error("DBDir should default to the XDG data directory")
	}

	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestValidate tests every validation rule.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.MaxBatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "decoy ratio above one",
			mutate:  func(c *Config) { c.DecoyRatio = 1.5 },
			wantErr: ErrInvalidDecoyRatio,
		},
		{
			name:    "negative decoy ratio",
			mutate:  func(c *Config) { c.DecoyRatio = -0.1 },
			wantErr: ErrInvalidDecoyRatio,
		},
		{
			name:    "empty jurisdictions",
			mutate:  func(c *Config) { c.Jurisdictions = nil },
			wantErr: ErrNoJurisdiction,
		},
		{
			name:    "unknown alias style",
			mutate:  func(c *Config) { c.AliasStyle = "anonymous" },
			wantErr: ErrInvalidAliasStyle,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("alias style is case insensitive", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		c.AliasStyle = "Realistic"
		if err := c.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("zero decoy ratio is allowed", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		c.DecoyRatio = 0
		if err := c.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads profiles with defaults", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  aliasStyle: generic
  jurisdictions: [FR]
profiles:
  export:
    aliasStyle: realistic
    decoyRatio: 0.5
  audit:
    jurisdictions: [FR, DE]
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		export := cf.GetProfile("export")
		if export.AliasStyle != "realistic" {
			t.Errorf("export alias style = %q, want realistic", export.AliasStyle)
		}
		if export.DecoyRatio == nil || *export.DecoyRatio != 0.5 {
			t.Errorf("export decoy ratio = %v, want 0.5", export.DecoyRatio)
		}
		// Unset fields fall back to the file defaults.
		if len(export.Jurisdictions) != 1 || export.Jurisdictions[0] != "FR" {
			t.Errorf("export jurisdictions = %v, want [FR]", export.Jurisdictions)
		}

		audit := cf.GetProfile("audit")
		if len(audit.Jurisdictions) != 2 {
			t.Errorf("audit jurisdictions = %v, want [FR DE]", audit.Jurisdictions)
		}
		if audit.AliasStyle != "generic" {
			t.Errorf("audit alias style = %q, want generic from defaults", audit.AliasStyle)
		}
	})

	t.Run("invalid YAML is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("profiles: ["), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestApplyProfile tests overlaying a profile onto a config.
func TestApplyProfile(t *testing.T) {
	t.Parallel()

	ratio := 0.2
	c := NewConfig()
	c.Profiles = &File{
		Profiles: map[string]Profile{
			"export": {AliasStyle: "realistic", DecoyRatio: &ratio},
		},
	}

	if !c.ApplyProfile("export") {
		t.Fatal("profile export should exist")
	}
	if c.AliasStyle != "realistic" {
		t.Errorf("AliasStyle = %q, want realistic", c.AliasStyle)
	}
	if c.DecoyRatio != 0.2 {
		t.Errorf("DecoyRatio = %v, want 0.2", c.DecoyRatio)
	}
	// Untouched fields keep their values.
	if c.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %q, should be unchanged", c.ServiceURL)
	}

	if c.ApplyProfile("missing") {
		t.Error("missing profile should report false")
	}
}

// TestFindConfigFile tests discovery order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins when it exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("got %q, want %q", got, path)
		}
	})

	t.Run("missing explicit path yields empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent")); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}
