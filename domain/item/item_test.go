package item

import (
	"errors"
	"testing"
)

func TestNewRejectsEmptyId(t *testing.T) {
	if _, err := New("", map[string]any{}); !errors.Is(err, ErrInvalidId) {
		t.Errorf("Expected ErrInvalidId, got %v", err)
	}
}

func TestNewAcceptsWhitespaceId(t *testing.T) {
	it, err := New(" ", map[string]any{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if it.Id != " " {
		t.Errorf("Expected id to be kept as is, got %q", it.Id)
	}
}

func TestNewDefaultsNilData(t *testing.T) {
	it, err := New("foo", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if it.Data == nil || len(it.Data) != 0 {
		t.Errorf("Expected empty data, got %v", it.Data)
	}
}

func TestSerialize(t *testing.T) {
	it := Item{Id: "foo", Data: map[string]any{"value": "V", "name": "A"}}
	raw, err := it.Serialize()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(raw) != `{"name":"A","value":"V"}` {
		t.Errorf("Expected sorted JSON object, got %s", raw)
	}
}

func TestParseDataKeepsLargeIntegers(t *testing.T) {
	data, err := ParseDataBytes([]byte(`{"n":9007199254740993,"nested":{"m":[12345678901234567890]}}`))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	raw, err := (&Item{Id: "big", Data: data}).Serialize()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(raw) != `{"n":9007199254740993,"nested":{"m":[12345678901234567890]}}` {
		t.Errorf("Expected integers to be kept exactly, got %s", raw)
	}
}

func TestParseDataRejectsNonObjects(t *testing.T) {
	for _, body := range []string{``, `null`, `[1]`, `"text"`, `{"name":`, `{"name":"A"} garbage`, `{"a":1}{"b":2}`} {
		if _, err := ParseDataBytes([]byte(body)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Expected ErrInvalidPayload for %q, got %v", body, err)
		}
	}
}

func TestParseDataAllowsTrailingWhitespace(t *testing.T) {
	data, err := ParseDataBytes([]byte("{\"name\":\"A\"}\n  "))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if data["name"] != "A" {
		t.Errorf("Expected name A, got %v", data["name"])
	}
}
