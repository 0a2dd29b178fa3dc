package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10)

	tracker.Start(20)
	for range 20 {
		tracker.Increment()
	}

	output := buf.String()
	assert.Contains(t, output, "10/20")
	assert.Contains(t, output, "20/20")
	assert.Contains(t, output, "100.0%")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1)

	tracker.Start(2)
	tracker.Increment()
	tracker.Increment()
	tracker.Increment()

	assert.NotContains(t, buf.String(), "3/2")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100)

	tracker.Start(5)
	tracker.Increment()
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "1/5")
	assert.Contains(t, output, "\n", "finish should print newline")

	// Finishing twice prints nothing more
	length := buf.Len()
	tracker.Finish()
	assert.Equal(t, length, buf.Len())
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0)

	tracker.Increment()
	tracker.Finish()
	assert.Empty(t, buf.String())
}
