package value

import "testing"

// These cases back the testable property that every mutating-shaped array
// operation leaves the source untouched and only the returned array
// reflects the change.

func TestArrayPushDoesNotMutateSource(t *testing.T) {
	src := NewArray([]Value{Number(1), Number(2), Number(3)})
	out := src.Push(Number(4))

	if src.Len() != 3 {
		t.Errorf("source length changed after push: got %d, want 3", src.Len())
	}
	if out.Len() != 4 {
		t.Errorf("pushed array length = %d, want 4", out.Len())
	}
	last, _ := out.Last()
	if last.Number() != 4 {
		t.Errorf("pushed array's last element = %v, want 4", last.Number())
	}
}

func TestArrayPopDoesNotMutateSource(t *testing.T) {
	src := NewArray([]Value{Number(1), Number(2), Number(3)})
	out := src.Pop()

	if src.Len() != 3 {
		t.Error("source length changed after pop")
	}
	if out.Len() != 2 {
		t.Errorf("popped array length = %d, want 2", out.Len())
	}
}

func TestArrayPopEmpty(t *testing.T) {
	src := NewArray(nil)
	out := src.Pop()
	if out.Len() != 0 {
		t.Errorf("popping an empty array should yield an empty array, got len %d", out.Len())
	}
}

func TestArrayConcatDoesNotMutateEither(t *testing.T) {
	a := NewArray([]Value{Number(1)})
	b := NewArray([]Value{Number(2)})
	out := a.Concat(b)

	if a.Len() != 1 || b.Len() != 1 {
		t.Error("concat mutated a source array")
	}
	if out.Len() != 2 {
		t.Errorf("concat result length = %d, want 2", out.Len())
	}
}

func TestArrayReverseDoesNotMutateSource(t *testing.T) {
	src := NewArray([]Value{Number(1), Number(2), Number(3)})
	out := src.Reverse()

	first, _ := src.At(0)
	if first.Number() != 1 {
		t.Error("reverse mutated the source array's order")
	}
	outFirst, _ := out.At(0)
	if outFirst.Number() != 3 {
		t.Errorf("reversed array's first element = %v, want 3", outFirst.Number())
	}
}

func TestArraySliceClampsBounds(t *testing.T) {
	src := NewArray([]Value{Number(1), Number(2), Number(3)})

	out := src.Slice(1, 10)
	if out.Len() != 2 {
		t.Errorf("slice(1,10) length = %d, want 2", out.Len())
	}

	out2 := src.Slice(-5, 2)
	if out2.Len() != 2 {
		t.Errorf("slice(-5,2) length = %d, want 2", out2.Len())
	}

	out3 := src.Slice(2, 1)
	if out3.Len() != 0 {
		t.Errorf("a descending slice range should yield an empty array, got len %d", out3.Len())
	}

	if src.Len() != 3 {
		t.Error("slice mutated the source array")
	}
}

func TestArrayJoin(t *testing.T) {
	src := NewArray([]Value{Str("a"), Str("b"), Str("c")})
	if got := src.Join(", "); got != "a, b, c" {
		t.Errorf("join = %q, want %q", got, "a, b, c")
	}
}

func TestArrayAtOutOfRange(t *testing.T) {
	src := NewArray([]Value{Number(1)})
	if _, ok := src.At(5); ok {
		t.Error("At(5) on a 1-element array should report not-found")
	}
}
