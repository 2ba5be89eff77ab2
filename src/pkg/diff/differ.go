package diff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "diff")

// FULL_CONTEXT is large enough that every unchanged line of a method is kept
const FULL_CONTEXT = 1000000

// LineDiffer defines the interface for comparing two method dumps
type LineDiffer interface {
	// DiffLines returns the body of a full-context unified diff, one entry per line.
	// Lines are prefixed with '+', '-' or ' '. It returns nil when base and head are equal.
	DiffLines(ctx context.Context, base, head string) ([]string, error)
}

// Differ diffs dumps with the system diff binary
type Differ struct {
	binary       string
	contextLines int
}

// Ensure Differ implements LineDiffer
var _ LineDiffer = (*Differ)(nil)

// NewDiffer creates a new differ using the diff binary found in PATH
func NewDiffer() *Differ {
	return NewDifferWithBinary("diff")
}

// NewDifferWithBinary creates a differ using a specific diff binary
func NewDifferWithBinary(binary string) *Differ {
	if binary == "" {
		binary = "diff"
	}
	return &Differ{binary: binary, contextLines: FULL_CONTEXT}
}

// WithContextLines limits the unchanged lines kept around each change, n <= 0 keeps the whole method
func (d *Differ) WithContextLines(n int) *Differ {
	d.contextLines = contextOrFull(n)
	return d
}

// DiffLines diffs base against head with full context
func (d *Differ) DiffLines(ctx context.Context, base, head string) ([]string, error) {
	out, err := d.Diff(ctx, []byte(base), []byte(head))
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return ParseUnifiedLines(out)
}

// Diff compares two dumps and returns the raw unified diff
func (d *Differ) Diff(ctx context.Context, base, head []byte) (string, error) {
	if string(base) == string(head) {
		return "", nil
	}
	return d.unifiedDiff(ctx, base, head)
}

// unifiedDiff writes both sides to temp files and runs diff -U on them
func (d *Differ) unifiedDiff(ctx context.Context, base, head []byte) (string, error) {
	baseFile, err := os.CreateTemp("", "base-*.dasm")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(baseFile.Name())
	}()
	defer func() {
		_ = baseFile.Close()
	}()

	headFile, err := os.CreateTemp("", "head-*.dasm")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(headFile.Name())
	}()
	defer func() {
		_ = headFile.Close()
	}()

	if _, err := baseFile.Write(base); err != nil {
		return "", fmt.Errorf("failed to write base dump: %w", err)
	}
	if err := baseFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close base file: %w", err)
	}

	if _, err := headFile.Write(head); err != nil {
		return "", fmt.Errorf("failed to write head dump: %w", err)
	}
	if err := headFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close head file: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.binary,
		"-U", strconv.Itoa(d.contextLines),
		"-L", "base", "-L", "head",
		baseFile.Name(), headFile.Name())
	output, err := cmd.Output()

	// diff returns exit code 1 when files differ (not an error)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("diff command failed: %w", err)
		}
	}

	logger.WithField("bytes", len(output)).Trace("Diffed dumps")
	return string(output), nil
}

func contextOrFull(n int) int {
	if n <= 0 {
		return FULL_CONTEXT
	}
	return n
}

// FormatForMarkdown formats diff lines as a fenced diff block
func FormatForMarkdown(lines []string) string {
	var result strings.Builder
	result.WriteString("```diff\n")
	for _, line := range lines {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString("```")
	return result.String()
}
