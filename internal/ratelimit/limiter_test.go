package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time { return base.Add(offset) }

func TestAdmit_SlidingWindow(t *testing.T) {
	l := New(DefaultWindow, DefaultMax)

	for i := 0; i < DefaultMax; i++ {
		if !l.Admit("10.0.0.1", at(0)) {
			t.Fatalf("call %d at t=0 should admit", i+1)
		}
	}

	if l.Admit("10.0.0.1", at(0)) {
		t.Error("11th call at t=0 should be rejected")
	}
	if l.Admit("10.0.0.1", at(100*time.Millisecond)) {
		t.Error("call at t=100ms should be rejected, 10 admits still in window")
	}
	if !l.Admit("10.0.0.1", at(501*time.Millisecond)) {
		t.Error("call at t=501ms should admit, the window has fully elapsed")
	}
}

func TestAdmit_RejectionsLeaveNoTrace(t *testing.T) {
	l := New(DefaultWindow, 1)

	if !l.Admit("client", at(0)) {
		t.Fatal("first call should admit")
	}

	// Hammering while rejected must not extend the window.
	for off := time.Duration(0); off < 400*time.Millisecond; off += 50 * time.Millisecond {
		if l.Admit("client", at(off)) {
			t.Fatalf("call at %v should be rejected", off)
		}
	}

	if !l.Admit("client", at(501*time.Millisecond)) {
		t.Error("rejections recorded state: call after the window should admit")
	}
}

func TestAdmit_ClientsAreIndependent(t *testing.T) {
	l := New(DefaultWindow, 1)

	if !l.Admit("10.0.0.1", at(0)) {
		t.Fatal("first client should admit")
	}
	if !l.Admit("10.0.0.2", at(0)) {
		t.Error("second client must not be throttled by the first")
	}
}

func TestAdmit_WindowSlidesContinuously(t *testing.T) {
	l := New(500*time.Millisecond, 2)

	if !l.Admit("c", at(0)) || !l.Admit("c", at(250*time.Millisecond)) {
		t.Fatal("setup admits failed")
	}
	if l.Admit("c", at(400*time.Millisecond)) {
		t.Error("both admits still inside the trailing window")
	}
	// t=0 admit has aged out at t=550ms, the t=250ms one has not.
	if !l.Admit("c", at(550*time.Millisecond)) {
		t.Error("expected admit once the oldest timestamp left the window")
	}
	if l.Admit("c", at(560*time.Millisecond)) {
		t.Error("window is full again after the t=550ms admit")
	}
}

func TestAdmit_ConcurrentSameClient(t *testing.T) {
	const workers = 64

	l := New(DefaultWindow, DefaultMax)
	now := at(0)

	var wg sync.WaitGroup
	admitted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared", now) {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != DefaultMax {
		t.Errorf("expected exactly %d concurrent admits, got %d", DefaultMax, count)
	}
}

func TestAdmit_ConcurrentDistinctClients(t *testing.T) {
	l := New(DefaultWindow, 1)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("10.0.%d.%d", n/256, n%256)
			if !l.Admit(id, at(0)) {
				t.Errorf("client %s should admit its first request", id)
			}
		}(i)
	}
	wg.Wait()
}
