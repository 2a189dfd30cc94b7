package infrastructure

import (
	"testing"
	"time"
)

func TestConversationGuard_SecondAcquireBlocked(t *testing.T) {
	g := NewConversationGuard(time.Millisecond)

	if !g.TryAcquire("t1:+549") {
		t.Fatal("first acquire must succeed")
	}
	if g.TryAcquire("t1:+549") {
		t.Error("second acquire on the same conversation must fail while held")
	}
	if !g.TryAcquire("t1:+548") {
		t.Error("a different conversation must not be affected")
	}
}

func TestConversationGuard_ReleaseAllowsReacquire(t *testing.T) {
	g := NewConversationGuard(time.Millisecond)

	if !g.TryAcquire("k") {
		t.Fatal("first acquire must succeed")
	}
	g.Release("k")
	time.Sleep(5 * time.Millisecond)
	if !g.TryAcquire("k") {
		t.Error("acquire after release and debounce must succeed")
	}
}

func TestReplyRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewReplyRateLimiter(0.0001, 2)

	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatal("burst allowance must admit the first two replies")
	}
	if rl.Allow("k") {
		t.Error("third reply within the window must be denied")
	}
	if !rl.Allow("other") {
		t.Error("a different conversation has its own bucket")
	}
}
