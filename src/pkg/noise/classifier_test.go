package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatterns(t *testing.T) {
	assert.Equal(t, []string{
		"CORINFO_HELP_CLASSINIT_SHARED_DYNAMICCLASS",
		"ProcessorIdCache:RefreshCurrentProcessorId",
		"Interop+Sys:SchedGetCpu()",
	}, DefaultPatterns)
}

func TestClassifier_IsKnownNoise(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected bool
	}{
		{"added classinit helper", "+       call     CORINFO_HELP_CLASSINIT_SHARED_DYNAMICCLASS", true},
		{"removed processor id", "-       call     [System.Threading.ProcessorIdCache:RefreshCurrentProcessorId():int]", true},
		{"sched get cpu", "+       call     [Interop+Sys:SchedGetCpu():int]", true},
		{"context line with pattern", "        call     CORINFO_HELP_CLASSINIT_SHARED_DYNAMICCLASS", false},
		{"changed line without pattern", "+       mov      eax, 1", false},
		{"empty line", "", false},
		{"bare marker", "+", false},
		{"pattern needs exact case", "+ corinfo_help_classinit_shared_dynamicclass", false},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsKnownNoise(tt.line), tt.line)
		})
	}
}

func TestClassifier_ExtraPatterns(t *testing.T) {
	c := NewClassifier("CORINFO_HELP_GETSHARED_GCSTATIC_BASE", "  ")

	assert.True(t, c.IsKnownNoise("-       call     CORINFO_HELP_GETSHARED_GCSTATIC_BASE"))
	// blank patterns are ignored
	require.Len(t, c.Patterns(), len(DefaultPatterns)+1)
}

func TestClassifier_ContainsKnownNoise(t *testing.T) {
	c := NewClassifier()
	lines := []string{
		" ; Assembly listing for method A:B()",
		"-       mov      eax, 1",
		"+       call     [Interop+Sys:SchedGetCpu():int]",
	}
	assert.True(t, c.ContainsKnownNoise(lines))
	assert.False(t, c.ContainsKnownNoise(lines[:2]))
	assert.False(t, c.ContainsKnownNoise(nil))
}
