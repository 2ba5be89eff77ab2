package models

import "time"

// ReportData represents the complete report data structure
type ReportData struct {
	RunID      string    `json:"runId"`
	Timestamp  time.Time `json:"timestamp"`
	BaseCommit string    `json:"baseCommit"`
	HeadCommit string    `json:"headCommit"`

	Regressions  SectionData `json:"regressions"`
	Improvements SectionData `json:"improvements"`

	// Set when at least one method was left out because its diff contained known noise
	NoiseRemoved bool `json:"noiseRemoved"`

	// Byte budget the whole report was rendered against
	MaxReportBytes int `json:"maxReportBytes"`
}

// SectionData holds the outcome of one summary section
type SectionData struct {
	Kind ChangeKind `json:"kind"`

	// Number of entries listed by the summary for this section
	Candidates int `json:"candidates"`
	// Number of fragments produced by the assembler
	Fragments int `json:"fragments"`
	// Number of changed lines across the produced fragments
	ChangedLines int `json:"changedLines"`

	Methods   []DiffResult `json:"methods,omitempty"`
	Truncated bool         `json:"truncated"`

	// Markdown produced by the budgeter, empty when nothing changed
	Rendered string `json:"-"`
}

// HasChanges reports whether the section rendered anything
func (s SectionData) HasChanges() bool {
	return s.Rendered != ""
}

/* sample of desired report

<!-- jitdiff: auto-generated comment, please do not remove -->

# 🔬 JIT Diffs

| Timestamp | Base | Head |
|-|-|-|
| 2025-10-22 00:31:12 UTC | `main` | `pr` |

## Top method regressions

<details>
<summary>24 (12.50 % of base) - System.Text.Json.JsonSerializer:Foo(int):this</summary>

```diff
 ; Assembly listing for method System.Text.Json.JsonSerializer:Foo(int):this
        push     rbp
-       mov      eax, 1
+       xor      eax, eax
        ret
```

</details>

Note: some changes were skipped as they were too large to fit into a comment.

*/
