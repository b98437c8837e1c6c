package value

import "testing"

func TestToGoFromGoRoundTrip(t *testing.T) {
	original := MapValue(NewRelicOrdered(
		[]string{"name", "count", "tags", "active", "missing"},
		map[string]Value{
			"name":    Str("flow"),
			"count":   Number(3),
			"tags":    ArrayValue(NewArray([]Value{Str("a"), Str("b")})),
			"active":  Bool(true),
			"missing": Null(),
		},
	))

	goVal := ToGo(original)
	m, ok := goVal.(map[string]any)
	if !ok {
		t.Fatalf("ToGo on a map should produce a map[string]any, got %T", goVal)
	}
	if m["name"] != "flow" {
		t.Errorf("name = %v, want flow", m["name"])
	}
	if m["count"] != float64(3) {
		t.Errorf("count = %v, want 3", m["count"])
	}

	back := FromGo(goVal)
	if back.Kind() != KindMap {
		t.Fatalf("FromGo should reconstruct a map, got kind %v", back.Kind())
	}
	nameV, ok := back.Map().Get("name")
	if !ok || nameV.String() != "flow" {
		t.Errorf("round-tripped name = %v, %v; want flow, true", nameV, ok)
	}
	tagsV, ok := back.Map().Get("tags")
	if !ok || tagsV.Kind() != KindArray || tagsV.Array().Len() != 2 {
		t.Errorf("round-tripped tags missing or wrong shape: %v", tagsV)
	}
}

func TestFromGoNull(t *testing.T) {
	if FromGo(nil).Kind() != KindNull {
		t.Error("FromGo(nil) should produce a Null value")
	}
}
