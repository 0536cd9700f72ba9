package songs

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"songlist/internal/store"
)

var (
	// ErrNotFound signals a missing song.
	ErrNotFound = errors.New("song not found")
	// ErrAlreadyMarked is returned when the caller already favorited the song.
	ErrAlreadyMarked = errors.New("already marked")
	// ErrNotMarked is returned when the caller has not favorited the song.
	ErrNotMarked = errors.New("not marked")
	// ErrInvalidInput indicates a request that could not be decoded.
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries the message shown to callers and unwraps to one of the
// sentinel errors above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// Info holds the caller supplied fields of a new song.
type Info struct {
	Title    string `json:"title"`
	Singer   string `json:"singer"`
	Album    string `json:"album"`
	Producer string `json:"producer"`
}

// Service exposes the playlist operations.
type Service interface {
	List(ctx context.Context) ([]store.Song, error)
	Shuffle(ctx context.Context) ([]store.Song, error)
	Get(ctx context.Context, id string) (store.Song, error)
	Add(ctx context.Context, caller string, info Info) (store.Song, error)
	MarkFavorite(ctx context.Context, caller, id string) (store.Song, error)
	RemoveFavorite(ctx context.Context, caller, id string) (store.Song, error)
	Delete(ctx context.Context, id string) (store.Song, error)
}

// Option customises a Service.
type Option func(*service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator overrides how new song IDs are produced.
func WithIDGenerator(next func() string) Option {
	return func(s *service) { s.newID = next }
}

// WithRand overrides the random source used by Shuffle.
func WithRand(r *rand.Rand) Option {
	return func(s *service) { s.rng = r }
}

type service struct {
	store store.PlaylistStore
	now   func() time.Time
	newID func() string
	rng   *rand.Rand

	// guards read-modify-write cycles, deletes and rng
	mu sync.Mutex
}

// defaultClock matches the microsecond precision of Postgres timestamps so
// records read back compare equal to the ones returned on write.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// New constructs a song Service backed by the provided store.
func New(st store.PlaylistStore, opts ...Option) Service {
	s := &service{
		store: st,
		now:   defaultClock,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

func (s *service) Shuffle(ctx context.Context) ([]store.Song, error) {
	songs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	shuffled := slices.Clone(songs)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled, nil
}

func (s *service) Get(ctx context.Context, id string) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	song, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return store.Song{}, err
	}
	if !ok {
		return store.Song{}, &Error{Kind: ErrNotFound, Msg: "Song not found"}
	}
	return song, nil
}

func (s *service) Add(ctx context.Context, caller string, info Info) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	song := store.Song{
		ID:            s.newID(),
		Title:         info.Title,
		Singer:        info.Singer,
		Album:         info.Album,
		Producer:      info.Producer,
		Owner:         caller,
		FavoritedBy:   []string{},
		FavoriteCount: 0,
		CreatedAt:     s.now(),
	}
	if _, _, err := s.store.Insert(ctx, song); err != nil {
		return store.Song{}, err
	}

	log.Ctx(ctx).Info().
		Str("song_id", song.ID).
		Str("identity", caller).
		Msg("song added")
	return song, nil
}

func (s *service) MarkFavorite(ctx context.Context, caller, id string) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return store.Song{}, err
	}
	if !ok {
		return store.Song{}, &Error{Kind: ErrNotFound, Msg: "Song not found"}
	}
	if slices.Contains(song.FavoritedBy, caller) {
		return store.Song{}, &Error{Kind: ErrAlreadyMarked, Msg: "Already marked as fav song"}
	}

	song.FavoritedBy = append(song.FavoritedBy, caller)
	song.FavoriteCount = len(song.FavoritedBy)
	now := s.now()
	song.UpdatedAt = &now

	if _, _, err := s.store.Insert(ctx, song); err != nil {
		return store.Song{}, err
	}

	log.Ctx(ctx).Debug().
		Str("song_id", id).
		Str("identity", caller).
		Int("favorite_count", song.FavoriteCount).
		Msg("song marked as favorite")
	return song, nil
}

func (s *service) RemoveFavorite(ctx context.Context, caller, id string) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return store.Song{}, err
	}
	if !ok {
		return store.Song{}, &Error{Kind: ErrNotFound, Msg: "Song not found"}
	}

	idx := slices.Index(song.FavoritedBy, caller)
	if idx < 0 {
		return store.Song{}, &Error{
			Kind: ErrNotMarked,
			Msg:  fmt.Sprintf("Not marked as fav song with id %s", id),
		}
	}

	song.FavoritedBy = slices.Delete(song.FavoritedBy, idx, idx+1)
	song.FavoriteCount = len(song.FavoritedBy)
	now := s.now()
	song.UpdatedAt = &now

	if _, _, err := s.store.Insert(ctx, song); err != nil {
		return store.Song{}, err
	}

	log.Ctx(ctx).Debug().
		Str("song_id", id).
		Str("identity", caller).
		Int("favorite_count", song.FavoriteCount).
		Msg("song unmarked as favorite")
	return song, nil
}

func (s *service) Delete(ctx context.Context, id string) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok, err := s.store.Remove(ctx, id)
	if err != nil {
		return store.Song{}, err
	}
	if !ok {
		return store.Song{}, &Error{
			Kind: ErrNotFound,
			Msg:  fmt.Sprintf("Couldn't delete a song with id=%s. Song not found.", id),
		}
	}

	log.Ctx(ctx).Info().Str("song_id", id).Msg("song deleted")
	return song, nil
}

func (s *service) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}
