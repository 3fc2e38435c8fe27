package web

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sseEvent is the JSON payload of one server-sent event.
type sseEvent struct {
	Type        string `json:"type"`
	Message     string `json:"message,omitempty"`
	PlaylistURL string `json:"playlist_url,omitempty"`
	EmbedURL    string `json:"embed_url,omitempty"`
}

// sseStream writes server-sent events over a flushable response writer.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEStream prepares the response for event streaming.
func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &sseStream{w: w, flusher: flusher}, nil
}

// Send writes one event and flushes it to the client.
func (s *sseStream) Send(event sseEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	s.flusher.Flush()
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
