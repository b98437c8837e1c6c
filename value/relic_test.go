package value

import "testing"

func TestRelicGetSet(t *testing.T) {
	r := NewRelic(map[string]Value{"a": Number(1)})
	v, ok := r.Get("a")
	if !ok || v.Number() != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}

	out := r.Set("b", Number(2))
	if _, ok := r.Get("b"); ok {
		t.Error("Set mutated the source Relic")
	}
	if v, ok := out.Get("b"); !ok || v.Number() != 2 {
		t.Errorf("Set result missing new key: %v, %v", v, ok)
	}
}

func TestRelicOrderedPreservesInsertionOrder(t *testing.T) {
	r := NewRelicOrdered([]string{"z", "a", "m"}, map[string]Value{
		"z": Number(1), "a": Number(2), "m": Number(3),
	})
	keys := r.Keys()
	want := []string{"z", "a", "m"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys()[%d] = %q, want %q (got %v)", i, keys[i], k, keys)
		}
	}
}

func TestRelicSetAppendsNewKeyAtEnd(t *testing.T) {
	r := NewRelicOrdered([]string{"a", "b"}, map[string]Value{"a": Number(1), "b": Number(2)})
	out := r.Set("c", Number(3))
	keys := out.Keys()
	if len(keys) != 3 || keys[2] != "c" {
		t.Errorf("Set should append new keys at the end, got %v", keys)
	}
}

func TestRelicLenAndMissingKey(t *testing.T) {
	r := NewRelic(map[string]Value{"a": Number(1), "b": Number(2)})
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get on a missing key should report not-found")
	}
}
