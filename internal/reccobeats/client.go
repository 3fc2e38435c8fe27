package reccobeats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.reccobeats.com/v1"
	userAgent      = "cadence-playlist/1.0"

	// MaxBatchSize is the upstream limit on IDs per audio-features request.
	MaxBatchSize = 40

	// requestTimeout bounds every upstream call so a hung request cannot
	// stall a whole pipeline run.
	requestTimeout = 20 * time.Second

	// similarityDelay is the minimum spacing between similarity requests;
	// that endpoint is sensitive to burst volume.
	similarityDelay = 100 * time.Millisecond
)

// ErrBatchTooLarge is returned when more than MaxBatchSize IDs are requested
// in one audio-features call.
var ErrBatchTooLarge = errors.New("too many IDs for one batch request")

// Client is a ReccoBeats API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a new ReccoBeats API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(similarityDelay), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FeaturesBatch fetches audio features for up to MaxBatchSize track IDs in
// one request. The response may cover fewer tracks than requested; each
// returned record identifies its own track via href, so results never rely
// on positional alignment with the request. Records whose href does not
// yield a track ID are dropped.
func (c *Client) FeaturesBatch(ctx context.Context, trackIDs []string) ([]Feature, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}
	if len(trackIDs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(trackIDs), MaxBatchSize)
	}

	params := url.Values{"ids": {strings.Join(trackIDs, ",")}}
	body, err := c.doRequest(ctx, "/audio-features", params)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features: %w", err)
	}

	var resp envelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing audio features response: %w", err)
	}

	features := make([]Feature, 0, len(resp.Content))
	for _, raw := range resp.Content {
		var fields featureFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		trackID := ExtractTrackID(fields.Href)
		if trackID == "" {
			continue
		}
		features = append(features, Feature{
			TrackID: trackID,
			Tempo:   fields.Tempo,
			Raw:     raw,
		})
	}
	return features, nil
}

// Similar fetches similarity recommendations for a seed track. Calls are
// spaced by the client's rate limiter.
func (c *Client) Similar(ctx context.Context, seedID string, size int) ([]Recommendation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"seeds": {seedID},
		"size":  {fmt.Sprint(size)},
	}
	body, err := c.doRequest(ctx, "/track/recommendation", params)
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations for %s: %w", seedID, err)
	}

	var resp envelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing recommendation response: %w", err)
	}

	recs := make([]Recommendation, 0, len(resp.Content))
	for _, raw := range resp.Content {
		var fields featureFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		trackID := ExtractTrackID(fields.Href)
		if trackID == "" {
			continue
		}
		recs = append(recs, Recommendation{TrackID: trackID, Raw: raw})
	}
	return recs, nil
}

// doRequest performs a single HTTP GET request against the API.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// ExtractTrackID parses a Spotify track ID out of a ReccoBeats href. The ID
// is the path segment following the literal "track/" marker, with any
// trailing query string stripped; hrefs without the marker are taken as the
// ID itself. Returns "" when nothing remains.
func ExtractTrackID(href string) string {
	if href == "" {
		return ""
	}
	segment := href
	if _, after, found := strings.Cut(href, "track/"); found {
		segment = after
	}
	segment, _, _ = strings.Cut(segment, "?")
	return segment
}
