package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"songlist/internal/app/songs"
	"songlist/internal/auth"
	"songlist/internal/logging"
	"songlist/internal/store"
)

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	list, err := s.songs.List(r.Context())
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: list})
}

func (s *Server) handleShuffleSongs(w http.ResponseWriter, r *http.Request) {
	list, err := s.songs.Shuffle(r.Context())
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: list})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), songID(r))
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	r, caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var info songs.Info
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeSongError(w, r, &songs.Error{Kind: songs.ErrInvalidInput, Msg: "invalid JSON payload"})
		return
	}

	song, err := s.songs.Add(r.Context(), caller, info)
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	r, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	song, err := s.songs.Delete(r.Context(), songID(r))
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleMarkFavorite(w http.ResponseWriter, r *http.Request) {
	r, caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	song, err := s.songs.MarkFavorite(r.Context(), caller, songID(r))
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	r, caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	song, err := s.songs.RemoveFavorite(r.Context(), caller, songID(r))
	if err != nil {
		writeSongError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func songID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// requireIdentity resolves the caller and returns the request with its
// logger annotated. It writes a 401 and reports false for anonymous requests.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*http.Request, string, bool) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		msg := "missing bearer token"
		if auth.TokenRejected(r.Context()) {
			msg = "invalid bearer token"
		}
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msg})
		return r, "", false
	}
	return r.WithContext(logging.WithIdentity(r.Context(), identity)), identity, true
}

func writeSongError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, songs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, songs.ErrAlreadyMarked), errors.Is(err, songs.ErrNotMarked):
		status = http.StatusConflict
	case errors.Is(err, songs.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("song operation failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
