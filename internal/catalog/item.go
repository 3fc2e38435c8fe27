package catalog

import "encoding/json"

// Item is one opaque upstream record (a track or artist) paired with the ID
// extracted from it. Raw preserves the upstream JSON byte-for-byte so cached
// payloads round-trip without loss.
type Item struct {
	ID  string
	Raw json.RawMessage
}

// newItem marshals an upstream value into an opaque Item. Values without an
// ID are rejected by returning a zero Item; callers skip those.
func newItem(id string, v any) (Item, error) {
	if id == "" {
		return Item{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Item{}, err
	}
	return Item{ID: id, Raw: raw}, nil
}

// Raws returns the opaque payloads of items, in order, for storage.
func Raws(items []Item) []json.RawMessage {
	raws := make([]json.RawMessage, len(items))
	for i, item := range items {
		raws[i] = item.Raw
	}
	return raws
}

// IDs returns the IDs of items, in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// FromRaws rebuilds items from stored opaque payloads by reading each
// record's "id" field. Records without an id are skipped.
func FromRaws(raws []json.RawMessage) []Item {
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil || probe.ID == "" {
			continue
		}
		items = append(items, Item{ID: probe.ID, Raw: raw})
	}
	return items
}

// DedupeByID removes duplicate items by ID, keeping the first occurrence.
func DedupeByID(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	deduped := make([]Item, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped
}
