package json

import (
	"testing"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/json")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type Secret struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	original := Secret{Name: "api-token", Value: 42}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored Secret
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored != original {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
}

func TestMarshalUnsupported(t *testing.T) {
	c := New()

	if _, err := c.Marshal(make(chan int)); err == nil {
		t.Error("Marshal() should fail on a channel")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v map[string]any
	if err := c.Unmarshal([]byte("{truncated"), &v); err == nil {
		t.Error("Unmarshal() should fail on invalid JSON")
	}
}
