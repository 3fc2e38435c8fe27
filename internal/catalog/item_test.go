package catalog

import (
	"encoding/json"
	"testing"
)

func TestFromRaws(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"id":"a","name":"Track A"}`),
		json.RawMessage(`{"name":"no id"}`),
		json.RawMessage(`not json`),
		json.RawMessage(`{"id":"b"}`),
	}

	items := FromRaws(raws)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Errorf("unexpected IDs: %q, %q", items[0].ID, items[1].ID)
	}
	// Payload must round-trip byte-for-byte.
	if string(items[0].Raw) != `{"id":"a","name":"Track A"}` {
		t.Errorf("payload altered: %s", items[0].Raw)
	}
}

func TestFromRaws_Empty(t *testing.T) {
	if items := FromRaws(nil); len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestDedupeByID(t *testing.T) {
	items := []Item{
		{ID: "a", Raw: json.RawMessage(`{"id":"a","v":1}`)},
		{ID: "b", Raw: json.RawMessage(`{"id":"b"}`)},
		{ID: "a", Raw: json.RawMessage(`{"id":"a","v":2}`)},
	}

	deduped := DedupeByID(items)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 items, got %d", len(deduped))
	}
	// First occurrence wins.
	if string(deduped[0].Raw) != `{"id":"a","v":1}` {
		t.Errorf("expected first occurrence kept, got %s", deduped[0].Raw)
	}
}

func TestIDsAndRaws_PreserveOrder(t *testing.T) {
	items := []Item{
		{ID: "x", Raw: json.RawMessage(`{"id":"x"}`)},
		{ID: "y", Raw: json.RawMessage(`{"id":"y"}`)},
	}

	ids := IDs(items)
	if len(ids) != 2 || ids[0] != "x" || ids[1] != "y" {
		t.Errorf("unexpected IDs: %v", ids)
	}

	raws := Raws(items)
	if len(raws) != 2 || string(raws[1]) != `{"id":"y"}` {
		t.Errorf("unexpected raws: %v", raws)
	}
}
