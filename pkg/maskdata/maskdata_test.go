package maskdata

import (
	"reflect"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		fromStart bool
		percent   int
		want      string
	}{
		{"mask head default", "0912345678", true, 80, "********78"},
		{"mask tail", "0912345678", false, 80, "09********"},
		{"full mask", "abc", true, 100, "***"},
		{"over 100 percent", "abc", true, 150, "***"},
		{"zero percent", "abc", true, 0, "abc"},
		{"empty", "", true, 80, ""},
		{"single char", "x", true, 80, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.in, tt.fromStart, tt.percent); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue(t *testing.T) {
	in := map[string]any{
		"name":   "jonathan smith",
		"age":    42,
		"phones": []any{"0912345678"},
	}

	got, ok := Value(in).(map[string]any)
	if !ok {
		t.Fatalf("Value() returned %T, want map", Value(in))
	}

	if got["name"] == "jonathan smith" {
		t.Error("string field was not masked")
	}
	if got["age"] != "***MASKED***" {
		t.Errorf("non-string field = %v, want ***MASKED***", got["age"])
	}

	phones, ok := got["phones"].([]any)
	if !ok || len(phones) != 1 {
		t.Fatalf("phones = %v, want 1-element slice", got["phones"])
	}
	if phones[0] == "0912345678" {
		t.Error("slice element was not masked")
	}

	// Original value untouched.
	want := map[string]any{"name": "jonathan smith", "age": 42, "phones": []any{"0912345678"}}
	if !reflect.DeepEqual(in, want) {
		t.Error("Value() mutated its input")
	}
}
