package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/go-cadence-playlist/internal/cadence"
	"github.com/justestif/go-cadence-playlist/internal/catalog"
	"github.com/justestif/go-cadence-playlist/internal/db"
	"github.com/justestif/go-cadence-playlist/internal/library"
	"github.com/justestif/go-cadence-playlist/internal/playlist"
	"github.com/justestif/go-cadence-playlist/internal/reccobeats"
)

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth      *spotifyauth.Authenticator
	sessions  SessionManager
	templates *Templates
	database  *db.DB
	tempo     *reccobeats.Client
	logger    *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(auth *spotifyauth.Authenticator, sessions SessionManager, templates *Templates, database *db.DB, tempo *reccobeats.Client, logger *log.Logger) *Handlers {
	return &Handlers{
		auth:      auth,
		sessions:  sessions,
		templates: templates,
		database:  database,
		tempo:     tempo,
		logger:    logger,
	}
}

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)

	data := HomePageData{
		PageData: PageData{
			Title:       "Cadence Playlist Generator",
			CurrentPath: r.URL.Path,
		},
		Authenticated:  session != nil,
		CadenceOptions: cadence.Options,
	}

	if session != nil {
		data.User = &UserData{
			ID:   session.UserID,
			Name: session.UserName,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "home", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	url := h.auth.AuthURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	// Exchange code for token
	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}

	// Get user info from Spotify
	client := spotify.New(h.auth.Client(r.Context(), token))
	user, err := client.CurrentUser(r.Context())
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	if err := h.database.Users().Upsert(r.Context(), &db.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}); err != nil {
		h.logger.Error("upserting user", "user", user.ID, "err", err)
	}

	session, err := h.sessions.Create(r.Context(), token, user.ID, user.DisplayName)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.sessions.SetCookie(w, session)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session and redirects to home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// statusMessages maps pipeline stages to user-facing progress text.
var statusMessages = map[playlist.Stage]string{
	playlist.StageTopTracks:    "Fetching your top tracks...",
	playlist.StageSavedTracks:  "Fetching your saved tracks...",
	playlist.StageTopArtists:   "Fetching your top artists...",
	playlist.StageArtistTracks: "Fetching top tracks from your artists...",
	playlist.StageSimilar:      "Finding similar tracks...",
	playlist.StageTempo:        "Analyzing track tempos...",
	playlist.StageAssembling:   "Building your playlist...",
}

// Generate runs the playlist pipeline and streams progress as server-sent
// events (GET /generate?cadence=N).
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	cadenceBPM, err := strconv.Atoi(r.URL.Query().Get("cadence"))
	if err != nil || cadenceBPM <= 0 {
		http.Error(w, "Invalid cadence", http.StatusBadRequest)
		return
	}

	stream, err := newSSEStream(w)
	if err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	client := spotify.New(h.auth.Client(ctx, session.Token))
	defer h.persistRefreshedToken(ctx, client, session)
	cat := catalog.New(client)
	lib := library.New(h.database, cat, h.tempo, library.WithLogger(h.logger))

	gen := playlist.NewGenerator(lib, cat,
		playlist.WithLogger(h.logger),
		playlist.WithProgress(func(p playlist.Progress) {
			if msg, ok := statusMessages[p.Stage]; ok {
				stream.Send(sseEvent{Type: "status", Message: msg})
			}
		}),
	)

	result, err := gen.Generate(ctx, session.UserID, cadenceBPM)
	if err != nil {
		stream.Send(sseEvent{Type: "error", Message: userFacingError(err)})
		return
	}

	stream.Send(sseEvent{
		Type:        "done",
		Message:     fmt.Sprintf("Created %q with %d tracks", result.Name, result.TrackCount),
		PlaylistURL: result.URL,
		EmbedURL:    result.EmbedURL,
	})
}

// Suggest recommends a cadence based on the tempo distribution of the
// user's cached library (GET /api/suggest).
func (h *Handlers) Suggest(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	client := spotify.New(h.auth.Client(ctx, session.Token))
	defer h.persistRefreshedToken(ctx, client, session)
	cat := catalog.New(client)
	lib := library.New(h.database, cat, h.tempo, library.WithLogger(h.logger))

	tempos, err := lib.TempoProfile(ctx, session.UserID)
	if err != nil {
		http.Error(w, "Failed to load tempo profile", http.StatusInternalServerError)
		return
	}

	bpm, ok := cadence.Suggest(tempos)
	writeJSON(w, map[string]any{
		"cadence":   bpm,
		"confident": ok,
		"samples":   len(tempos),
	})
}

// persistRefreshedToken saves the client's current token back to the
// session when the oauth2 transport refreshed it during the request, so
// later requests do not redo the refresh.
func (h *Handlers) persistRefreshedToken(ctx context.Context, client *spotify.Client, session *Session) {
	token, err := client.Token()
	if err != nil {
		return
	}
	if token.AccessToken != session.Token.AccessToken {
		h.sessions.UpdateToken(ctx, session.ID, token)
	}
}

// userFacingError maps pipeline errors to messages safe to show the user.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, playlist.ErrInvalidCadence),
		errors.Is(err, playlist.ErrNoCandidates),
		errors.Is(err, playlist.ErrNoMatchingTracks):
		return err.Error()
	default:
		return "Something went wrong generating your playlist. Please try again."
	}
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
