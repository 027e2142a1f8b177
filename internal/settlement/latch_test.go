package settlement

import (
	"testing"
	"time"
)

func TestSaveLatchAcquireOnce(t *testing.T) {
	latch := NewSaveLatch(time.Minute)

	if !latch.TryAcquire("a|b|50|0xhash") {
		t.Fatal("first acquire should succeed")
	}
	if latch.TryAcquire("a|b|50|0xhash") {
		t.Fatal("second acquire of same key should fail")
	}
}

func TestSaveLatchKeysAreIndependent(t *testing.T) {
	latch := NewSaveLatch(time.Minute)

	if !latch.TryAcquire("donor1|alice|50|0x1") {
		t.Fatal("first key should acquire")
	}
	// A different donation must not be blocked by the first one's latch.
	if !latch.TryAcquire("donor2|bob|25|0x2") {
		t.Fatal("distinct key should acquire")
	}
}

func TestSaveLatchRelease(t *testing.T) {
	latch := NewSaveLatch(time.Minute)

	latch.TryAcquire("k")
	latch.Release("k")
	if !latch.TryAcquire("k") {
		t.Fatal("released key should be acquirable again")
	}
}

func TestSaveLatchExpiry(t *testing.T) {
	latch := NewSaveLatch(10 * time.Millisecond)

	latch.TryAcquire("k")
	time.Sleep(20 * time.Millisecond)
	if !latch.TryAcquire("k") {
		t.Fatal("expired key should be acquirable again")
	}
}

func TestSaveLatchCleanup(t *testing.T) {
	latch := NewSaveLatch(10 * time.Millisecond)

	latch.TryAcquire("old")
	time.Sleep(20 * time.Millisecond)
	latch.Cleanup()

	latch.mu.Lock()
	n := len(latch.taken)
	latch.mu.Unlock()
	if n != 0 {
		t.Fatalf("taken has %d entries after cleanup, want 0", n)
	}
}
