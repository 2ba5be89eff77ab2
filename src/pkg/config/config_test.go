package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DEFAULT_CONFIG_FILE)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestLoader_LoadConfig tests loading configuration files
func TestLoader_LoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected *JitDiffConfig
		wantErr  bool
	}{
		{
			name:     "empty file keeps defaults",
			content:  "",
			expected: DefaultConfig(),
		},
		{
			name: "all keys",
			content: `knownNoise:
  - "JIT_Patchpoint"
maxMethods: 5
maxReportBytes: 1000
concurrency: 3
includeKnownNoise: true
includeRemovedMethods: true
includeNewMethods: true
diffContextLines: 10
annotations: notes.yaml
`,
			expected: &JitDiffConfig{
				KnownNoise:            []string{"JIT_Patchpoint"},
				MaxMethods:            5,
				MaxReportBytes:        1000,
				Concurrency:           3,
				IncludeKnownNoise:     true,
				IncludeRemovedMethods: true,
				IncludeNewMethods:     true,
				DiffContextLines:      10,
				Annotations:           "notes.yaml",
			},
		},
		{
			name:    "partial file",
			content: "maxMethods: 7\n",
			expected: &JitDiffConfig{
				MaxMethods:     7,
				MaxReportBytes: DEFAULT_MAX_REPORT_BYTES,
			},
		},
		{
			name:    "invalid yaml",
			content: "maxMethods: [not, a, number\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader()
			config, err := loader.LoadConfig(writeConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(config, tt.expected) {
				t.Errorf("LoadConfig() = %+v, want %+v", config, tt.expected)
			}
		})
	}
}

// TestLoader_LoadConfig_MissingFile tests that a missing file is an error
func TestLoader_LoadConfig_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
}

// TestLoader_ValidateConfig tests configuration validation
func TestLoader_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *JitDiffConfig)
		wantErr bool
	}{
		{name: "defaults are valid", modify: func(c *JitDiffConfig) {}},
		{name: "negative maxMethods", modify: func(c *JitDiffConfig) { c.MaxMethods = -1 }, wantErr: true},
		{name: "zero maxReportBytes", modify: func(c *JitDiffConfig) { c.MaxReportBytes = 0 }, wantErr: true},
		{name: "negative concurrency", modify: func(c *JitDiffConfig) { c.Concurrency = -2 }, wantErr: true},
		{name: "negative context", modify: func(c *JitDiffConfig) { c.DiffContextLines = -1 }, wantErr: true},
		{name: "blank noise pattern", modify: func(c *JitDiffConfig) { c.KnownNoise = []string{"ok", "  "} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := NewLoader().ValidateConfig(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
