package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "analyze")

const (
	DEFAULT_ANALYZE_BIN = "jit-analyze"
	DUMP_FILE_EXT       = ".dasm"

	// marker proving the output is a method summary even when the tool exits non-zero
	summaryMarker = "Top method"
)

// SummaryAnalyzer defines the interface for producing the analysis summary
type SummaryAnalyzer interface {
	// Analyze compares the dump directories and returns the summary text
	Analyze(ctx context.Context, mainDir, prDir string, count int) (string, error)
	// ValidateDumpDirs checks that both directories exist and hold dump files
	ValidateDumpDirs(mainDir, prDir string) error
}

// Analyzer runs a jit-analyze compatible binary
type Analyzer struct {
	binary string
}

// Ensure Analyzer implements SummaryAnalyzer
var _ SummaryAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates a new analyzer, an empty binary means DEFAULT_ANALYZE_BIN from PATH
func NewAnalyzer(binary string) *Analyzer {
	if binary == "" {
		binary = DEFAULT_ANALYZE_BIN
	}
	return &Analyzer{binary: binary}
}

// Analyze runs `<binary> -b <mainDir> -d <prDir> -r -c <count>` and returns its stdout.
// It is run once, failures are not retried.
func (a *Analyzer) Analyze(ctx context.Context, mainDir, prDir string, count int) (string, error) {
	args := []string{"-b", mainDir, "-d", prDir, "-r", "-c", strconv.Itoa(count)}
	logger.WithField("binary", a.binary).WithField("args", args).Debug("Running analyzer")

	cmd := exec.CommandContext(ctx, a.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// some versions exit non-zero whenever diffs were found
			if strings.Contains(string(output), summaryMarker) {
				logger.WithField("exitCode", exitErr.ExitCode()).Warn("Analyzer exited with non-zero code, using its output")
				return string(output), nil
			}
			return "", fmt.Errorf("%s failed: %w\nOutput: %s", a.binary, err, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("%s failed: %w", a.binary, err)
	}

	return string(output), nil
}

// ValidateDumpDirs checks that mainDir and prDir are directories holding at least one dump file
func (a *Analyzer) ValidateDumpDirs(mainDir, prDir string) error {
	for _, dir := range []string{mainDir, prDir} {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("dump directory '%s' not found", dir)
		}
		if err != nil {
			return fmt.Errorf("failed to stat dump directory '%s': %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("'%s' is not a directory", dir)
		}

		matches, err := filepath.Glob(filepath.Join(dir, "*"+DUMP_FILE_EXT))
		if err != nil {
			return fmt.Errorf("failed to list dump files in '%s': %w", dir, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("no %s files found in '%s'", DUMP_FILE_EXT, dir)
		}
	}

	return nil
}
