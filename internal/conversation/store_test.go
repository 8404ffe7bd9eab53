package conversation

import (
	"sync"
	"testing"
)

func TestStoreCreatesSessionOnFirstContact(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if _, ok := store.Get("user-1"); ok {
		t.Fatal("Get returned a session before first contact")
	}

	err := store.Do("user-1", func(sess *Session) error {
		if sess.UserID != "user-1" {
			t.Fatalf("session user = %q, want user-1", sess.UserID)
		}
		if !sess.Idle() {
			t.Fatalf("new session state = %q, want idle", sess.State())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}

	if _, ok := store.Get("user-1"); !ok {
		t.Fatal("session not retained after Do")
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestStoreSerializesSameUser(t *testing.T) {
	t.Parallel()

	store := NewStore()
	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = store.Do("shared", func(sess *Session) error {
					sess.Step++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	sess, ok := store.Get("shared")
	if !ok {
		t.Fatal("shared session missing")
	}
	if sess.Step != workers*perWorker {
		t.Fatalf("step = %d, want %d", sess.Step, workers*perWorker)
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var wg sync.WaitGroup
	for _, userID := range []string{"alice", "bob", "carol"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = store.Do(id, func(sess *Session) error {
				sess.Record.Name = id
				return nil
			})
		}(userID)
	}
	wg.Wait()

	for _, userID := range []string{"alice", "bob", "carol"} {
		sess, ok := store.Get(userID)
		if !ok {
			t.Fatalf("session for %q missing", userID)
		}
		if sess.Record.Name != userID {
			t.Fatalf("session %q holds name %q", userID, sess.Record.Name)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_ = store.Do("user-1", func(*Session) error { return nil })
	store.Delete("user-1")
	if _, ok := store.Get("user-1"); ok {
		t.Fatal("session survived Delete")
	}
}

func TestStoreSweepAll(t *testing.T) {
	t.Parallel()

	store := NewStore()
	for _, userID := range []string{"a", "b", "c"} {
		_ = store.Do(userID, func(*Session) error { return nil })
	}

	if dropped := store.SweepAll(); dropped != 3 {
		t.Fatalf("SweepAll() = %d, want 3", dropped)
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("Len() after sweep = %d, want 0", got)
	}
	if dropped := store.SweepAll(); dropped != 0 {
		t.Fatalf("second SweepAll() = %d, want 0", dropped)
	}

	// A user who was swept mid-conversation starts over from idle.
	_ = store.Do("a", func(sess *Session) error {
		if !sess.Idle() {
			t.Fatalf("post-sweep session state = %q, want idle", sess.State())
		}
		return nil
	})
}
