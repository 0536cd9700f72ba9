package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"songlist/internal/app/songs"
	"songlist/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// SongService coordinates playlist operations.
type SongService interface {
	List(ctx context.Context) ([]store.Song, error)
	Shuffle(ctx context.Context) ([]store.Song, error)
	Get(ctx context.Context, id string) (store.Song, error)
	Add(ctx context.Context, caller string, info songs.Info) (store.Song, error)
	MarkFavorite(ctx context.Context, caller, id string) (store.Song, error)
	RemoveFavorite(ctx context.Context, caller, id string) (store.Song, error)
	Delete(ctx context.Context, id string) (store.Song, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users UserService
	songs SongService
}

// New configures a Server with the given services.
func New(users UserService, songs SongService) *Server {
	return &Server{users: users, songs: songs}
}

// Routes exposes the HTTP handlers for accounts and songs.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	// shuffle must be registered ahead of /songs/{id}
	api.HandleFunc("/songs", s.handleListSongs).Methods(http.MethodGet)
	api.HandleFunc("/songs", s.handleAddSong).Methods(http.MethodPost)
	api.HandleFunc("/songs/shuffle", s.handleShuffleSongs).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id}", s.handleGetSong).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id}", s.handleDeleteSong).Methods(http.MethodDelete)
	api.HandleFunc("/songs/{id}/favorite", s.handleMarkFavorite).Methods(http.MethodPost)
	api.HandleFunc("/songs/{id}/favorite", s.handleRemoveFavorite).Methods(http.MethodDelete)

	return router
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.users.Signup(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		case errors.Is(err, store.ErrInvalidAccount):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("signup failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
