package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gh-nvat/jitdiff/src/internal/runner"
	"github.com/gh-nvat/jitdiff/src/pkg/config"
)

func noneChanged(string) bool { return false }

func TestBuildRunnerOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxMethods = 5
	cfg.IncludeKnownNoise = true
	cfg.KnownNoise = []string{"CORINFO_HELP_X"}

	opts := &options{
		runMode:           runner.RUN_MODE_LOCAL,
		mainDir:           "main",
		prDir:             "pr",
		maxMethods:        config.DEFAULT_MAX_METHODS,
		maxReportBytes:    1000,
		includeKnownNoise: false,
	}

	t.Run("config values when flags are untouched", func(t *testing.T) {
		ro := buildRunnerOptions(opts, cfg, noneChanged)
		if ro.MaxMethods != 5 {
			t.Errorf("MaxMethods = %d, want 5", ro.MaxMethods)
		}
		if !ro.IncludeKnownNoise {
			t.Error("IncludeKnownNoise should come from config")
		}
		if ro.MaxReportBytes != config.DEFAULT_MAX_REPORT_BYTES {
			t.Errorf("MaxReportBytes = %d, want %d", ro.MaxReportBytes, config.DEFAULT_MAX_REPORT_BYTES)
		}
		if len(ro.KnownNoise) != 1 {
			t.Errorf("KnownNoise = %v", ro.KnownNoise)
		}
	})

	t.Run("explicit flags override config", func(t *testing.T) {
		changed := func(name string) bool {
			return name == "max-report-bytes" || name == "include-known-noise"
		}
		ro := buildRunnerOptions(opts, cfg, changed)
		if ro.MaxReportBytes != 1000 {
			t.Errorf("MaxReportBytes = %d, want 1000", ro.MaxReportBytes)
		}
		if ro.IncludeKnownNoise {
			t.Error("IncludeKnownNoise flag should win over config")
		}
		if ro.MaxMethods != 5 {
			t.Errorf("MaxMethods = %d, want 5", ro.MaxMethods)
		}
	})
}

func TestValidateOptions(t *testing.T) {
	valid := func() *runner.Options {
		return &runner.Options{
			RunMode:        runner.RUN_MODE_LOCAL,
			MainDir:        "main",
			PrDir:          "pr",
			MaxMethods:     20,
			MaxReportBytes: 60000,
			OutputDir:      "out",
		}
	}

	tests := []struct {
		name    string
		modify  func(o *runner.Options)
		wantErr bool
	}{
		{name: "valid local", modify: func(o *runner.Options) {}},
		{name: "valid github", modify: func(o *runner.Options) {
			o.RunMode = runner.RUN_MODE_GITHUB
			o.GhRepo = "org/repo"
			o.GhPrNumber = 3
		}},
		{name: "missing pr dir", modify: func(o *runner.Options) { o.PrDir = "" }, wantErr: true},
		{name: "zero budget", modify: func(o *runner.Options) { o.MaxReportBytes = 0 }, wantErr: true},
		{name: "negative concurrency", modify: func(o *runner.Options) { o.Concurrency = -1 }, wantErr: true},
		{name: "unknown mode", modify: func(o *runner.Options) { o.RunMode = "ci" }, wantErr: true},
		{name: "github without repo", modify: func(o *runner.Options) {
			o.RunMode = runner.RUN_MODE_GITHUB
			o.GhPrNumber = 3
		}, wantErr: true},
		{name: "github without pr", modify: func(o *runner.Options) {
			o.RunMode = runner.RUN_MODE_GITHUB
			o.GhRepo = "org/repo"
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.modify(o)
			err := validateOptions(o)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jitdiff.yaml")
	if err := os.WriteFile(path, []byte("maxMethods: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.MaxMethods != 3 || cfg.MaxReportBytes != config.DEFAULT_MAX_REPORT_BYTES {
		t.Errorf("loadConfig() = %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("maxReportBytes: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig() expected validation error")
	}
}

func TestRootCmd_RequiresDumpDirs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--summary-file", "s.txt"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Error("Execute() expected error for missing --main-dir and --pr-dir")
	}
}
