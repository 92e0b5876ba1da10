package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutThenTake(t *testing.T) {
	m := New[int]()
	require.True(t, m.Put(42))
	v, ok := m.Take()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTakeBlocksUntilPut(t *testing.T) {
	m := New[string]()
	done := make(chan string, 1)
	go func() {
		v, _ := m.Take()
		done <- v
	}()
	time.Sleep(10 * time.Millisecond)
	m.Put("hello")
	select {
	case v := <-done:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked")
	}
}

func TestCloseWakesBlockedTake(t *testing.T) {
	m := New[int]()
	done := make(chan bool, 1)
	go func() {
		_, ok := m.Take()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	m.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked on close")
	}
}

func TestTryTakeOnEmptyReturnsFalse(t *testing.T) {
	m := New[int]()
	_, ok := m.TryTake()
	assert.False(t, ok)
}

func TestCloseReturnsPendingValue(t *testing.T) {
	m := New[int]()
	m.Put(7)
	v, had := m.Close()
	assert.True(t, had)
	assert.Equal(t, 7, v)
}
