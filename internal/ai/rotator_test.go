package ai

import (
	"sync"
	"testing"
)

func TestNewKeyRotatorRequiresKeys(t *testing.T) {
	if _, err := NewKeyRotator(nil, "test"); err == nil {
		t.Fatal("expected error for empty key list")
	}
}

func TestKeyRotatorRoundRobin(t *testing.T) {
	r, err := NewKeyRotator([]string{"a", "b", "c"}, "test")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Current(); got != "a" {
		t.Errorf("Current() = %q, want a", got)
	}
	// Current does not advance
	if got := r.Current(); got != "a" {
		t.Errorf("second Current() = %q, want a", got)
	}
	want := []string{"b", "c", "a", "b"}
	for i, w := range want {
		if got := r.Next(); got != w {
			t.Errorf("Next() #%d = %q, want %q", i, got, w)
		}
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
}

func TestKeyRotatorConcurrent(t *testing.T) {
	r, err := NewKeyRotator([]string{"a", "b"}, "test")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Next()
			_ = r.Current()
		}()
	}
	wg.Wait()
	got := r.Current()
	if got != "a" && got != "b" {
		t.Errorf("Current() = %q, want one of the configured keys", got)
	}
}
