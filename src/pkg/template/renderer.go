package template

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ToolCommentSignature marks comments created by jitdiff so they can be updated in place
const ToolCommentSignature = "<!-- jitdiff: auto-generated comment, please do not remove -->"

// Renderer handles template rendering
type Renderer struct {
	funcMap  template.FuncMap
	markdown goldmark.Markdown
}

// NewRenderer creates a new template renderer
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: template.FuncMap{
			"gt":    func(a, b int) bool { return a > b },
			"bytes": func(n int) string { return humanize.Bytes(uint64(max(n, 0))) },
			"comma": func(n int) string { return humanize.Comma(int64(n)) },
		},
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// fragments carry raw <details> blocks
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// RenderWithTemplates renders templates with support for includes.
// templateDir must hold comment.md.tmpl and section.md.tmpl; the latter is
// available to the former as the "section" template.
func (r *Renderer) RenderWithTemplates(templateDir string, data interface{}) (string, error) {
	commentPath := filepath.Join(templateDir, "comment.md.tmpl")
	sectionPath := filepath.Join(templateDir, "section.md.tmpl")

	if _, err := os.Stat(commentPath); err != nil {
		return "", fmt.Errorf("comment template not found: %w", err)
	}
	if _, err := os.Stat(sectionPath); err != nil {
		return "", fmt.Errorf("section template not found: %w", err)
	}

	tmpl := template.New("").Funcs(r.funcMap)

	sectionContent, err := os.ReadFile(sectionPath)
	if err != nil {
		return "", fmt.Errorf("failed to read section template: %w", err)
	}
	if _, err := tmpl.New("section").Parse(string(sectionContent)); err != nil {
		return "", fmt.Errorf("failed to parse section template: %w", err)
	}

	commentContent, err := os.ReadFile(commentPath)
	if err != nil {
		return "", fmt.Errorf("failed to read comment template: %w", err)
	}
	mainTmpl, err := tmpl.New("comment").Parse(string(commentContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse comment template: %w", err)
	}

	var buf bytes.Buffer
	if err := mainTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// RenderString renders a template string with the provided data
func (r *Renderer) RenderString(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("template").Funcs(r.funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// RenderDefault renders the built-in comment template
func (r *Renderer) RenderDefault(data interface{}) (string, error) {
	return r.RenderString(r.GetDefaultCommentTemplate(), data)
}

// RenderHTML converts a rendered markdown report into an HTML preview
func (r *Renderer) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// GetDefaultCommentTemplate returns the default comment template
// This template supports models.ReportData
func (r *Renderer) GetDefaultCommentTemplate() string {
	return ToolCommentSignature + `

# 🔬 JIT Diffs

| Timestamp | Base | Head | Budget |
|-|-|-|-|
| {{.Timestamp.Format "2006-01-02 15:04:05 UTC"}} | ` + "`{{.BaseCommit}}`" + ` | ` + "`{{.HeadCommit}}`" + ` | {{bytes .MaxReportBytes}} |

**Regressions:** {{.Regressions.Fragments}} diffed of {{.Regressions.Candidates}} reported ({{comma .Regressions.ChangedLines}} lines changed)  
**Improvements:** {{.Improvements.Fragments}} diffed of {{.Improvements.Candidates}} reported ({{comma .Improvements.ChangedLines}} lines changed)

{{if or .Regressions.HasChanges .Improvements.HasChanges}}
{{- if .Regressions.HasChanges}}
{{.Regressions.Rendered}}
{{end}}
{{- if .Improvements.HasChanges}}
{{.Improvements.Rendered}}
{{end}}
{{- else}}
✅ No method diffs to show.
{{end}}
{{- if .NoiseRemoved}}
> ⚠️ Some methods were hidden because their diffs contain known nondeterministic noise. Re-run with ` + "`--include-known-noise`" + ` to show them.
{{end}}
---

_Generated by [jitdiff](https://github.com/gh-nvat/jitdiff)_{{if .RunID}} · run ` + "`{{.RunID}}`" + `{{end}}
`
}
