package annotate

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// annotationFile is the on-disk layout:
//
//	methods:
//	  "System.Number:FormatFloat(double):this": "Expected after the inliner change."
type annotationFile struct {
	Methods map[string]string `yaml:"methods"`
}

// FileAnnotator serves per-method notes loaded from a YAML file.
// It is read-only after loading and safe for concurrent use.
type FileAnnotator struct {
	notes map[string]string
}

// LoadFile reads annotations from path
func LoadFile(path string) (*FileAnnotator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}

	var file annotationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse annotations: %w", err)
	}
	if file.Methods == nil {
		file.Methods = map[string]string{}
	}

	return &FileAnnotator{notes: file.Methods}, nil
}

// NewFileAnnotator creates an annotator from an in-memory table
func NewFileAnnotator(notes map[string]string) *FileAnnotator {
	copied := make(map[string]string, len(notes))
	for k, v := range notes {
		copied[k] = v
	}
	return &FileAnnotator{notes: copied}
}

// Annotate returns the note for method, or "" when there is none
func (a *FileAnnotator) Annotate(_ context.Context, method string) (string, error) {
	return a.notes[method], nil
}

// Len returns the number of annotated methods
func (a *FileAnnotator) Len() int {
	return len(a.notes)
}
