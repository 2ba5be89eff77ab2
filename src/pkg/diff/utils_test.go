package diff

import (
	"reflect"
	"testing"
)

// TestCalcLineChanges tests the line counting utility function
func TestCalcLineChanges(t *testing.T) {
	tests := []struct {
		name            string
		lines           []string
		expectedAdded   int
		expectedDeleted int
		expectedTotal   int
	}{
		{
			name:            "empty diff",
			lines:           nil,
			expectedAdded:   0,
			expectedDeleted: 0,
			expectedTotal:   0,
		},
		{
			name:            "additions and deletions",
			lines:           []string{" push rbp", "-mov eax, 1", "-mov ecx, 2", "+mov eax, 3", "+xor ecx, ecx", "+nop", " ret"},
			expectedAdded:   3,
			expectedDeleted: 2,
			expectedTotal:   5,
		},
		{
			name:            "only context",
			lines:           []string{" push rbp", " ret"},
			expectedAdded:   0,
			expectedDeleted: 0,
			expectedTotal:   0,
		},
		{
			name:            "operands starting with a sign are counted once",
			lines:           []string{"+-1", "--1"},
			expectedAdded:   1,
			expectedDeleted: 1,
			expectedTotal:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, deleted, total := CalcLineChanges(tt.lines)
			if added != tt.expectedAdded {
				t.Errorf("CalcLineChanges() added = %v, want %v", added, tt.expectedAdded)
			}
			if deleted != tt.expectedDeleted {
				t.Errorf("CalcLineChanges() deleted = %v, want %v", deleted, tt.expectedDeleted)
			}
			if total != tt.expectedTotal {
				t.Errorf("CalcLineChanges() total = %v, want %v", total, tt.expectedTotal)
			}
		})
	}
}

// TestParseUnifiedLines tests extracting hunk bodies from unified diff text
func TestParseUnifiedLines(t *testing.T) {
	tests := []struct {
		name     string
		unified  string
		expected []string
		wantErr  bool
	}{
		{
			name: "single hunk",
			unified: `--- base
+++ head
@@ -1,3 +1,3 @@
 line1
-line2
+line2_modified
 line3
`,
			expected: []string{" line1", "-line2", "+line2_modified", " line3"},
		},
		{
			name: "no newline marker is dropped",
			unified: `--- base
+++ head
@@ -1,2 +1,2 @@
 line1
-line2
\ No newline at end of file
+line3
\ No newline at end of file
`,
			expected: []string{" line1", "-line2", "+line3"},
		},
		{
			name: "multiple hunks are concatenated",
			unified: `--- base
+++ head
@@ -1,2 +1,2 @@
-a
+b
 c
@@ -10,2 +10,2 @@
 x
-y
+z
`,
			expected: []string{"-a", "+b", " c", " x", "-y", "+z"},
		},
		{
			name:    "malformed hunk header",
			unified: "--- base\n+++ head\n@@ bogus @@\n-a\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnifiedLines(tt.unified)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnifiedLines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseUnifiedLines() = %q, want %q", got, tt.expected)
			}
		})
	}
}
