package formatter

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a bytes.Buffer against the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_WritesMessageAndElapsed(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner("solving")
	s.w = &buf

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("reconstructing")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "solving")
	assert.Contains(t, out, "reconstructing")
	assert.Contains(t, out, "(0s)")
	assert.Contains(t, out, "\r\033[K", "line is cleared on stop")
}

func TestSpinner_StopTwiceIsSafe(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner("solving")
	s.w = &buf

	s.Start()
	s.Stop()
	s.Stop()
}
