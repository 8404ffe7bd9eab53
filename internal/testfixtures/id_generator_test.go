package testfixtures

import (
	"sync"
	"testing"
)

func TestIDGeneratorSequence(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("req")
	for i, want := range []string{"req-1", "req-2", "req-3"} {
		if got := gen.Next(); got != want {
			t.Fatalf("Next() call %d = %q, want %q", i+1, got, want)
		}
	}
}

func TestIDGeneratorDefaultPrefix(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("Next() = %q, want id-1", got)
	}
}

func TestIDGeneratorIsConcurrencySafe(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("c")
	const total = 200

	var wg sync.WaitGroup
	ids := make(chan string, total)
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, total)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = true
	}
	if len(seen) != total {
		t.Fatalf("generated %d unique identifiers, want %d", len(seen), total)
	}
}

func TestIDGeneratorNextFuncOnNilGenerator(t *testing.T) {
	t.Parallel()

	var gen *IDGenerator
	if got := gen.NextFunc()(); got != "" {
		t.Fatalf("nil generator NextFunc = %q, want empty", got)
	}
}
