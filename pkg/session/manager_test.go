package session_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

func newManager(t *testing.T, size int, opts ...session.ManagerOption) *session.Manager {
	t.Helper()

	form := testsupport.MustParse(t, signupJSON)
	manager, err := session.NewManager(size, func(id string) *session.Session {
		return session.New(form, session.WithID(id))
	}, opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := newManager(t, 4)

	first, created := manager.GetOrCreate("unknown")
	if !created || first.ID() == "" || first.ID() == "unknown" {
		t.Fatalf("expected a fresh session with a generated id, got %q created=%v", first.ID(), created)
	}

	again, created := manager.GetOrCreate(first.ID())
	if created || again != first {
		t.Fatalf("expected the same session back")
	}
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	manager := newManager(t, 2)

	a := manager.Create()
	b := manager.Create()
	if _, ok := manager.Get(a.ID()); !ok {
		t.Fatalf("a should be present")
	}
	c := manager.Create()

	if _, ok := manager.Get(b.ID()); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := manager.Get(a.ID()); !ok {
		t.Fatalf("a was used recently and should survive")
	}
	if _, ok := manager.Get(c.ID()); !ok {
		t.Fatalf("c should be present")
	}
	if manager.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", manager.Len())
	}
}

func TestManager_IdleSessionsExpire(t *testing.T) {
	manager := newManager(t, 0, session.WithIdleTimeout(time.Nanosecond))

	sess := manager.Create()
	time.Sleep(time.Millisecond)

	if _, ok := manager.Get(sess.ID()); ok {
		t.Fatalf("idle session should expire")
	}
	if manager.Len() != 0 {
		t.Fatalf("expired session should be removed")
	}
}

func TestNewManager_RequiresFactory(t *testing.T) {
	if _, err := session.NewManager(1, nil); err == nil {
		t.Fatalf("expected error for nil factory")
	}
}
