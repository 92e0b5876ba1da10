package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitUntilBelowReturnsImmediatelyWhenAlreadyUnder(t *testing.T) {
	p := newProducerBuffer()
	p.extend(make([]float32, 4))

	done := make(chan struct{})
	go func() {
		p.waitUntilBelow(10)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitUntilBelow blocked despite being under the limit")
	}
}

func TestWaitUntilBelowBlocksUntilTakeDrainsBuffer(t *testing.T) {
	p := newProducerBuffer()
	p.extend(make([]float32, 20))

	done := make(chan struct{})
	go func() {
		p.waitUntilBelow(4)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("waitUntilBelow returned before the buffer drained")
	case <-time.After(20 * time.Millisecond):
	}

	p.take(make([]float32, 18)) // leaves 2, under the limit of 4

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitUntilBelow never woke after take drained the buffer")
	}
}

func TestWaitUntilBelowUnblocksOnClose(t *testing.T) {
	p := newProducerBuffer()
	p.extend(make([]float32, 20))

	done := make(chan struct{})
	go func() {
		p.waitUntilBelow(4)
		close(done)
	}()

	p.close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitUntilBelow never woke on close")
	}
}

func TestPeekTailReturnsLastNSamplesWithoutConsuming(t *testing.T) {
	p := newProducerBuffer()
	p.extend([]float32{1, 2, 3, 4, 5})

	assert.Equal(t, []float32{3, 4, 5}, p.peekTail(3))
	assert.Equal(t, 5, p.len())
}
