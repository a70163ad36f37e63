package session

import "testing"

func TestRegistry_RegisterGetUnregister(t *testing.T) {
	r := NewRegistry()
	s := &Session{ID: "call-1", OwnerID: "owner-1"}

	r.Register(s)
	if got := r.Get("call-1"); got != s {
		t.Fatal("expected registered session back")
	}
	if got := r.Get("call-2"); got != nil {
		t.Fatalf("expected nil for unknown call, got %+v", got)
	}

	r.Unregister("call-1")
	if got := r.Get("call-1"); got != nil {
		t.Fatal("expected session removed")
	}
	r.Unregister("call-1")
}

func TestRegistry_ListActive(t *testing.T) {
	r := NewRegistry()
	if got := len(r.ListActive()); got != 0 {
		t.Fatalf("expected empty list, got %d", got)
	}

	r.Register(&Session{ID: "call-1"})
	r.Register(&Session{ID: "call-2"})

	seen := make(map[string]bool)
	for _, s := range r.ListActive() {
		seen[s.ID] = true
	}
	if !seen["call-1"] || !seen["call-2"] || len(seen) != 2 {
		t.Fatalf("unexpected listing: %v", seen)
	}
}
