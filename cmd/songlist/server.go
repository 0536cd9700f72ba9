package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"songlist/internal/app/songs"
	"songlist/internal/app/users"
	"songlist/internal/auth"
	"songlist/internal/config"
	"songlist/internal/http/middleware"
	"songlist/internal/httpapi"
	"songlist/internal/store"
)

// backend bundles the store implementations chosen by STORE_BACKEND.
type backend struct {
	playlist store.PlaylistStore
	users    store.UserStore
	db       *sql.DB
}

func (b *backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		mem := store.NewMemoryStore()
		return &backend{playlist: mem, users: mem}, nil
	case config.BackendPostgres:
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pg := store.New(db)
		return &backend{playlist: pg, users: pg, db: db}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

type app struct {
	issuer *auth.Issuer
	users  users.Service
	songs  songs.Service
}

func newApp(cfg *config.Config, b *backend) *app {
	issuer := auth.NewIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	return &app{
		issuer: issuer,
		users:  users.New(b.users, issuer),
		songs:  songs.New(b.playlist),
	}
}

func newHTTPHandler(cfg *config.Config, a *app) http.Handler {
	var handler http.Handler = httpapi.New(a.users, a.songs).Routes()
	handler = a.issuer.Middleware(handler)
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}
