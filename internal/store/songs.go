package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const songColumns = `id, title, singer, album, producer, owner, favorited_by, favorite_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// List returns every song ordered by key.
func (s *Store) List(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY id COLLATE "C" ASC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// Get returns a single song by ID.
func (s *Store) Get(ctx context.Context, id string) (Song, bool, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, false, nil
	}
	if err != nil {
		return Song{}, false, fmt.Errorf("get song: %w", err)
	}
	return song, true, nil
}

// Insert upserts the song and returns the record it replaced, if any.
func (s *Store) Insert(ctx context.Context, song Song) (Song, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	previous, err := scanSong(tx.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1
		FOR UPDATE`, song.ID))
	replaced := true
	if errors.Is(err, sql.ErrNoRows) {
		replaced = false
	} else if err != nil {
		return Song{}, false, fmt.Errorf("lookup song: %w", err)
	}

	favoritedBy := song.FavoritedBy
	if favoritedBy == nil {
		favoritedBy = []string{}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO songs (`+songColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			singer = EXCLUDED.singer,
			album = EXCLUDED.album,
			producer = EXCLUDED.producer,
			owner = EXCLUDED.owner,
			favorited_by = EXCLUDED.favorited_by,
			favorite_count = EXCLUDED.favorite_count,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`,
		song.ID, song.Title, song.Singer, song.Album, song.Producer, song.Owner,
		pq.Array(favoritedBy), song.FavoriteCount, song.CreatedAt, song.UpdatedAt,
	); err != nil {
		return Song{}, false, fmt.Errorf("upsert song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Song{}, false, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	if !replaced {
		return Song{}, false, nil
	}
	return previous, true, nil
}

// Remove deletes the song and returns the deleted record.
func (s *Store) Remove(ctx context.Context, id string) (Song, bool, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `
		DELETE FROM songs
		WHERE id = $1
		RETURNING `+songColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, false, nil
	}
	if err != nil {
		return Song{}, false, fmt.Errorf("delete song: %w", err)
	}
	return song, true, nil
}

func scanSong(row rowScanner) (Song, error) {
	var (
		song      Song
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&song.ID,
		&song.Title,
		&song.Singer,
		&song.Album,
		&song.Producer,
		&song.Owner,
		pq.Array(&song.FavoritedBy),
		&song.FavoriteCount,
		&song.CreatedAt,
		&updatedAt,
	); err != nil {
		return Song{}, err
	}
	if song.FavoritedBy == nil {
		song.FavoritedBy = []string{}
	}
	song.CreatedAt = song.CreatedAt.UTC()
	if updatedAt.Valid {
		updated := updatedAt.Time.UTC()
		song.UpdatedAt = &updated
	}
	return song, nil
}
