package noise

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed known_noise.yaml
var knownNoiseYAML []byte

// DefaultPatterns is the built-in known-noise table
var DefaultPatterns []string

func init() {
	var table struct {
		Patterns []string `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(knownNoiseYAML, &table); err != nil {
		// embedded at compile time, so this is a programming error
		panic(fmt.Sprintf("failed to parse embedded known_noise.yaml: %v", err))
	}
	DefaultPatterns = table.Patterns
}

// NoiseClassifier decides whether a changed diff line is known nondeterminism
type NoiseClassifier interface {
	IsKnownNoise(line string) bool
	ContainsKnownNoise(lines []string) bool
}

// Classifier matches changed lines against a fixed pattern table.
// It is immutable and safe for concurrent use.
type Classifier struct {
	patterns []string
}

// Ensure Classifier implements NoiseClassifier
var _ NoiseClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier from DefaultPatterns plus any extra patterns
func NewClassifier(extra ...string) *Classifier {
	patterns := make([]string, 0, len(DefaultPatterns)+len(extra))
	patterns = append(patterns, DefaultPatterns...)
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Classifier{patterns: patterns}
}

// Patterns returns a copy of the pattern table
func (c *Classifier) Patterns() []string {
	return append([]string(nil), c.patterns...)
}

// IsKnownNoise reports whether line is an added or removed line containing a known-noise pattern.
// Context lines and empty lines are never noise.
func (c *Classifier) IsKnownNoise(line string) bool {
	if line == "" || (line[0] != '+' && line[0] != '-') {
		return false
	}
	content := line[1:]
	for _, p := range c.patterns {
		if strings.Contains(content, p) {
			return true
		}
	}
	return false
}

// ContainsKnownNoise reports whether any line of a diff is known noise
func (c *Classifier) ContainsKnownNoise(lines []string) bool {
	for _, line := range lines {
		if c.IsKnownNoise(line) {
			return true
		}
	}
	return false
}
