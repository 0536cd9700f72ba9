package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidAccount rejects a signup with an empty username or password.
	ErrInvalidAccount = errors.New("username and password are required")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Song is the persisted playlist entry.
type Song struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Singer        string     `json:"singer"`
	Album         string     `json:"album,omitempty"`
	Producer      string     `json:"producer,omitempty"`
	Owner         string     `json:"owner"`
	FavoritedBy   []string   `json:"favoritedBy"`
	FavoriteCount int        `json:"favoriteCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// PlaylistStore is an ordered map of songs keyed by ID. Absence is reported
// through the boolean result; errors are reserved for backend failures.
type PlaylistStore interface {
	List(ctx context.Context) ([]Song, error)
	Get(ctx context.Context, id string) (Song, bool, error)
	Insert(ctx context.Context, song Song) (Song, bool, error)
	Remove(ctx context.Context, id string) (Song, bool, error)
}

// UserStore manages the accounts that back caller identities.
type UserStore interface {
	CreateUser(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func cloneSong(src Song) Song {
	clone := src
	clone.FavoritedBy = make([]string, len(src.FavoritedBy))
	copy(clone.FavoritedBy, src.FavoritedBy)
	if src.UpdatedAt != nil {
		updated := *src.UpdatedAt
		clone.UpdatedAt = &updated
	}
	return clone
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
