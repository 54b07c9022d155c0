package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStalenessGateNotifiesOncePerSnapshot(t *testing.T) {
	gate := NewStalenessGate(time.Hour)
	session := "user-a:session-1"
	snap := uuid.New()

	if !gate.ShouldNotify(session, snap) {
		t.Fatalf("first observation should notify")
	}
	if gate.ShouldNotify(session, snap) {
		t.Fatalf("second observation of same snapshot should not notify")
	}
}

func TestStalenessGateResetsOnNewSnapshot(t *testing.T) {
	gate := NewStalenessGate(time.Hour)
	session := "user-a:session-1"

	first := uuid.New()
	second := uuid.New()

	if !gate.ShouldNotify(session, first) {
		t.Fatalf("first snapshot should notify")
	}
	if !gate.ShouldNotify(session, second) {
		t.Fatalf("new active snapshot should notify again")
	}
	if gate.ShouldNotify(session, second) {
		t.Fatalf("repeat of new snapshot should not notify")
	}
}

func TestStalenessGateIsPerSession(t *testing.T) {
	gate := NewStalenessGate(time.Hour)
	snap := uuid.New()

	if !gate.ShouldNotify("user-a:session-1", snap) {
		t.Fatalf("session 1 should notify")
	}
	if !gate.ShouldNotify("user-a:session-2", snap) {
		t.Fatalf("session 2 has its own watermark")
	}
}

func TestStalenessGateExpiresEntries(t *testing.T) {
	gate := NewStalenessGate(time.Minute)
	current := time.Now()
	gate.now = func() time.Time { return current }

	session := "user-a:session-1"
	snap := uuid.New()

	if !gate.ShouldNotify(session, snap) {
		t.Fatalf("first observation should notify")
	}

	current = current.Add(2 * time.Minute)
	if !gate.ShouldNotify(session, snap) {
		t.Fatalf("expired watermark should notify again")
	}
}

func TestStalenessGateIgnoresBlankInputs(t *testing.T) {
	gate := NewStalenessGate(time.Hour)
	if gate.ShouldNotify("", uuid.New()) {
		t.Fatalf("blank session key should never notify")
	}
	if gate.ShouldNotify("user-a:session-1", uuid.Nil) {
		t.Fatalf("nil snapshot id should never notify")
	}
}
