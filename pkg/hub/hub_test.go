package hub

import (
	"sync"
	"testing"
	"time"
)

func TestStopIsIdempotentAndConcurrent(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Stop()
		}()
	}
	wg.Wait()
	h.Stop() // and again after everyone is done
}

func TestAddAfterStopDoesNotBlock(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	h.Stop()

	client := &Client{hub: h, send: make(chan Message, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.add(client)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("add blocked on a stopped hub")
	}

	// The client was turned away: its send channel is closed so the
	// write pump would exit immediately.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed send channel, got a message")
		}
	default:
		t.Fatal("send channel left open on a stopped hub")
	}
}

func TestRemoveAfterStopDoesNotBlock(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	client := &Client{hub: h, send: make(chan Message, 1)}
	h.add(client)
	h.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.remove(client)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("remove blocked on a stopped hub")
	}
}

func TestStopClosesRegisteredClients(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	client := &Client{hub: h, send: make(chan Message, 1)}
	h.add(client)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && h.ClientCount() != 1 {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", h.ClientCount())
	}

	h.Stop()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected close, got a message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed by Stop")
	}
}
