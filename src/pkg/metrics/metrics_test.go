package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gh-nvat/jitdiff/src/pkg/assembler"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMetrics_ObserveSection(t *testing.T) {
	m := NewRunMetrics()
	m.ObserveSection(models.KindRegressions,
		assembler.Stats{Candidates: 6, Accepted: 2, Filtered: 1, Unchanged: 1, Noisy: 1, Failed: 1},
		models.SectionData{Fragments: 2, Rendered: "12345", Truncated: true},
	)
	m.SetNoiseRemoved(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.entriesTotal.WithLabelValues("regressions", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entriesTotal.WithLabelValues("regressions", "failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fragmentsTotal.WithLabelValues("regressions")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.sectionBytes.WithLabelValues("regressions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.truncated.WithLabelValues("regressions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.noiseRemoved))
}

func TestRunMetrics_WriteToTextfile(t *testing.T) {
	m := NewRunMetrics()
	m.ObserveSection(models.KindImprovements, assembler.Stats{Accepted: 1}, models.SectionData{Fragments: 1})
	m.SetDuration(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), METRICS_FILE_NAME)
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jitdiff_fragments_total{kind="improvements"} 1`)
	assert.Contains(t, string(data), "jitdiff_run_duration_seconds 1.5")
}
