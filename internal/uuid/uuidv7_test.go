package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("expected valid uuid, got %q", id)
	}
	if id[14] != '7' {
		t.Errorf("expected version 7, got %q", id)
	}
	if New() == id {
		t.Error("expected distinct ids")
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(strings.ToUpper("00000000-0000-7000-8000-000000000001"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "00000000-0000-7000-8000-000000000001" {
		t.Errorf("expected canonical lower-case form, got %s", got)
	}

	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for invalid uuid")
	}
	if IsValid("Principal") {
		t.Error("box names must not parse as ids")
	}
}
