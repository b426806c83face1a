package progress_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/ordsync/internal/progress"
)

func TestReportEveryRecord(t *testing.T) {
	r := progress.New(nil)

	var reported []int
	for i := 1; i <= 20; i++ {
		if p, ok := r.Report(i, 20); ok {
			reported = append(reported, p)
		}
	}
	assert.Equal(t, []int{10, 25, 40, 50, 65, 80, 95, 100}, reported)
	assert.Empty(t, r.Remaining())
}

func TestReportOnceEach(t *testing.T) {
	r := progress.New(nil)

	p, ok := r.Report(1, 10)
	assert.True(t, ok)
	assert.Equal(t, 10, p)

	_, ok = r.Report(1, 10)
	assert.False(t, ok, "a threshold is reported at most once")

	_, ok = r.Report(2, 10)
	assert.False(t, ok)
}

func TestReportLargeStep(t *testing.T) {
	r := progress.New(nil)

	p, ok := r.Report(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 50, p)
	assert.Equal(t, []int{65, 80, 95, 100}, r.Remaining())

	p, ok = r.Report(2, 2)
	assert.True(t, ok)
	assert.Equal(t, 100, p)
}

func TestReportIgnoresUnknownTotals(t *testing.T) {
	r := progress.New(nil)
	_, ok := r.Report(5, 0)
	assert.False(t, ok)
	_, ok = r.Report(-1, 10)
	assert.False(t, ok)
	assert.Len(t, r.Remaining(), 8)
}

func TestReportWritesMessages(t *testing.T) {
	var buf bytes.Buffer
	r := progress.New(&buf, 50, 100)

	for i := 1; i <= 4; i++ {
		r.Report(i, 4)
	}
	assert.Equal(t, "50 percent of records written\n100 percent of records written\n", buf.String())
}

func TestCustomThresholdsAreCopied(t *testing.T) {
	thresholds := []int{30, 60}
	r := progress.New(nil, thresholds...)
	r.Report(1, 1)
	assert.Equal(t, []int{30, 60}, thresholds)
}
