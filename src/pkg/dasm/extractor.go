package dasm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "dasm")

const (
	// MAX_METHOD_BYTES caps the text captured for a single method
	MAX_METHOD_BYTES = 1024 * 1024

	METHOD_START_PREFIX = "; Assembly listing for method "

	// how many lines are scanned between context checks
	ctxCheckInterval = 4096
)

// METHOD_END_MARKER terminates every method block in a dump file
var METHOD_END_MARKER = "; " + strings.Repeat("=", 60)

type scanState int

const (
	stateSeeking scanState = iota
	stateCapturing
	stateDone
)

// MethodExtractor defines the interface for pulling one method out of a dump file
type MethodExtractor interface {
	// ExtractMethod returns the disassembly block of method, or "" if it is not present
	ExtractMethod(ctx context.Context, path, method string) (string, error)
}

// Extractor streams dump files and captures a single method block
type Extractor struct {
	maxBytes int
}

// Ensure Extractor implements MethodExtractor
var _ MethodExtractor = (*Extractor)(nil)

// NewExtractor creates a new extractor using MAX_METHOD_BYTES
func NewExtractor() *Extractor {
	return &Extractor{maxBytes: MAX_METHOD_BYTES}
}

// NewExtractorWithLimit creates an extractor with a custom size cap
func NewExtractorWithLimit(maxBytes int) *Extractor {
	if maxBytes <= 0 {
		maxBytes = MAX_METHOD_BYTES
	}
	return &Extractor{maxBytes: maxBytes}
}

// ExtractMethod opens path read-only and extracts method from it.
// A missing file is treated like a missing method.
func (e *Extractor) ExtractMethod(ctx context.Context, path, method string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.WithField("path", path).Debug("Dump file not found")
			return "", nil
		}
		return "", fmt.Errorf("failed to open dump file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	text, err := e.ExtractMethodFrom(ctx, f, method)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s from %s: %w", method, path, err)
	}
	return text, nil
}

// ExtractMethodFrom scans r once and returns the block of method.
// The block starts at the line prefixed with METHOD_START_PREFIX+method and ends
// before the next METHOD_END_MARKER line. Blocks that are never terminated or that
// grow past the size cap yield "".
func (e *Extractor) ExtractMethodFrom(ctx context.Context, r io.Reader, method string) (string, error) {
	start := []byte(METHOD_START_PREFIX + method)
	end := []byte(METHOD_END_MARKER)

	lr := NewLineReader(r, e.maxBytes+1)
	var buf bytes.Buffer
	state := stateSeeking

	for n := 0; state != stateDone; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}

		line, clipped, err := lr.Next()
		if errors.Is(err, io.EOF) {
			if state == stateCapturing {
				logger.WithField("method", method).Debug("Method block not terminated")
			}
			return "", nil
		}
		if err != nil {
			return "", err
		}

		switch state {
		case stateSeeking:
			if !bytes.HasPrefix(line, start) {
				continue
			}
			state = stateCapturing
		case stateCapturing:
			if bytes.HasPrefix(line, end) {
				state = stateDone
				continue
			}
		}

		if clipped || buf.Len()+len(line)+1 > e.maxBytes {
			logger.WithField("method", method).WithField("limit", e.maxBytes).Debug("Method block too large, skipping")
			return "", nil
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	return buf.String(), nil
}
