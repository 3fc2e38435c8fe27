// Package playlist runs the end-to-end cadence playlist pipeline: gather
// candidate tracks from every source, reconcile tempo data, filter to the
// cadence band, and create the resulting Spotify playlist.
package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-cadence-playlist/internal/cadence"
	"github.com/justestif/go-cadence-playlist/internal/catalog"
	"github.com/justestif/go-cadence-playlist/internal/library"
)

const (
	// recThreshold bounds the cost of the similarity fan-out: users with a
	// large saved library skip recommendations entirely.
	recThreshold = 500

	// recsPerSeed is the similarity result size requested per top track.
	recsPerSeed = 3
)

// Terminal pipeline errors. Both are user-visible outcomes, distinct from
// transient upstream trouble (which only skips the affected unit).
var (
	// ErrInvalidCadence is returned for a non-positive cadence.
	ErrInvalidCadence = errors.New("cadence must be a positive BPM value")

	// ErrNoCandidates means no tracks at all were found across the
	// user's library sources.
	ErrNoCandidates = errors.New("no candidate tracks found in your library")

	// ErrNoMatchingTracks means candidates existed but none had a tempo
	// inside the cadence band.
	ErrNoMatchingTracks = errors.New("no tracks matched that cadence")
)

// Stage identifies a pipeline step for progress observation.
type Stage string

// Pipeline stages, in execution order.
const (
	StageTopTracks    Stage = "top_tracks"
	StageSavedTracks  Stage = "saved_tracks"
	StageTopArtists   Stage = "top_artists"
	StageArtistTracks Stage = "artist_tracks"
	StageSimilar      Stage = "similar"
	StageTempo        Stage = "tempo"
	StageAssembling   Stage = "assembling"
)

// Progress reports the start of a pipeline stage. Count is the number of
// items produced by the preceding stages (its exact meaning varies per
// stage: tracks found so far, candidates collected, matches kept).
type Progress struct {
	Stage Stage
	Count int
}

// ProgressFunc observes pipeline progress. The engine itself stays a plain
// sequence of calls; transports that want to stream progress inject an
// observer here.
type ProgressFunc func(Progress)

// PlaylistCreator is the downstream capability that turns a filtered track
// set into a real playlist.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, userID, name, description string) (*catalog.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
}

var _ PlaylistCreator = (*catalog.Client)(nil)

// Generator runs the pipeline for one user.
type Generator struct {
	lib      *library.Service
	creator  PlaylistCreator
	logger   *log.Logger
	progress ProgressFunc
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the structured logger.
func WithLogger(logger *log.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithProgress registers a progress observer.
func WithProgress(fn ProgressFunc) GeneratorOption {
	return func(g *Generator) {
		g.progress = fn
	}
}

// NewGenerator creates a pipeline generator.
func NewGenerator(lib *library.Service, creator PlaylistCreator, opts ...GeneratorOption) *Generator {
	g := &Generator{
		lib:      lib,
		creator:  creator,
		logger:   log.Default(),
		progress: func(Progress) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result describes the created playlist.
type Result struct {
	ID         string
	Name       string
	URL        string
	EmbedURL   string
	TrackCount int
	Cadence    int
}

// Generate runs the full pipeline for one user and cadence: collect the
// four candidate sources, union and persist them, reconcile tempo data,
// filter to the cadence band, and create the playlist.
func (g *Generator) Generate(ctx context.Context, userID string, cadenceBPM int) (*Result, error) {
	if cadenceBPM <= 0 {
		return nil, ErrInvalidCadence
	}

	g.progress(Progress{Stage: StageTopTracks})
	topTracks, err := g.lib.TopTracks(ctx, userID)
	if err != nil {
		return nil, err
	}
	topTracks = catalog.DedupeByID(topTracks)

	g.progress(Progress{Stage: StageSavedTracks, Count: len(topTracks)})
	savedTracks, err := g.lib.SavedTracks(ctx, userID)
	if err != nil {
		return nil, err
	}
	savedTracks = catalog.DedupeByID(savedTracks)

	g.progress(Progress{Stage: StageTopArtists, Count: len(savedTracks)})
	topArtists, err := g.lib.TopArtists(ctx, userID)
	if err != nil {
		return nil, err
	}

	g.progress(Progress{Stage: StageArtistTracks, Count: len(topArtists)})
	artistTracks, err := g.lib.ArtistsTopTracks(ctx, topArtists)
	if err != nil {
		return nil, err
	}
	artistTracks = catalog.DedupeByID(artistTracks)

	// The similarity fan-out is the most expensive call in the pipeline;
	// users with a deep saved library already have plenty of candidates.
	var similarIDs []string
	if len(savedTracks) < recThreshold {
		g.progress(Progress{Stage: StageSimilar, Count: len(topTracks)})
		similarIDs, err = g.lib.SimilarTrackIDs(ctx, topTracks, recsPerSeed)
		if err != nil {
			return nil, err
		}
	}

	candidates := library.UnionIDs(
		catalog.IDs(topTracks),
		catalog.IDs(savedTracks),
		catalog.IDs(artistTracks),
		similarIDs,
	)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	if err := g.lib.SaveCombinedTracks(ctx, userID, candidates); err != nil {
		return nil, err
	}

	g.progress(Progress{Stage: StageTempo, Count: len(candidates)})
	features, err := g.lib.EnsureFeatures(ctx, candidates)
	if err != nil {
		return nil, err
	}

	band := cadence.BandFor(cadenceBPM)
	matched := filterByTempo(candidates, features, band)
	g.logger.Info("tempo filter complete",
		"candidates", len(candidates), "matched", len(matched),
		"band_min", band.Min, "band_max", band.Max)
	if len(matched) == 0 {
		return nil, ErrNoMatchingTracks
	}

	g.progress(Progress{Stage: StageAssembling, Count: len(matched)})
	name := fmt.Sprintf("Run Cadence %d BPM", cadenceBPM)
	created, err := g.creator.CreatePlaylist(ctx, userID, name, "Generated by Cadence Playlist Generator")
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	if err := g.creator.AddTracksToPlaylist(ctx, created.ID, matched); err != nil {
		return nil, fmt.Errorf("filling playlist: %w", err)
	}

	return &Result{
		ID:         created.ID,
		Name:       created.Name,
		URL:        created.URL,
		EmbedURL:   "https://open.spotify.com/embed/playlist/" + created.ID,
		TrackCount: len(matched),
		Cadence:    cadenceBPM,
	}, nil
}
