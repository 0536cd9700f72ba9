package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var songRowColumns = []string{
	"id", "title", "singer", "album", "producer", "owner",
	"favorited_by", "favorite_count", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestListSongs(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM songs
		ORDER BY id COLLATE "C" ASC`)).
		WillReturnRows(sqlmock.NewRows(songRowColumns).
			AddRow("a", "Title", "Singer", "", "", "alice", "{bob,carol}", 2, created, created).
			AddRow("b", "Other", "Singer", "Album", "Prod", "bob", "{}", 0, created, nil))

	songs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	if songs[0].FavoriteCount != 2 || len(songs[0].FavoritedBy) != 2 || songs[0].FavoritedBy[1] != "carol" {
		t.Fatalf("unexpected favorites on first song: %#v", songs[0])
	}
	if songs[0].UpdatedAt == nil || !songs[0].UpdatedAt.Equal(created) {
		t.Fatalf("expected updatedAt to be scanned, got %v", songs[0].UpdatedAt)
	}
	if songs[1].UpdatedAt != nil || songs[1].FavoritedBy == nil || len(songs[1].FavoritedBy) != 0 {
		t.Fatalf("unexpected second song: %#v", songs[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSongsEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM songs`)).
		WillReturnRows(sqlmock.NewRows(songRowColumns))

	songs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if songs == nil || len(songs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", songs)
	}
}

func TestGetSongMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(songRowColumns))

	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if ok {
		t.Fatalf("expected song to be absent")
	}
}

func TestGetSongQueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("a").
		WillReturnError(errors.New("connection reset"))

	if _, _, err := s.Get(context.Background(), "a"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestInsertSongNew(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(songRowColumns))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO songs`)).
		WithArgs("a", "Title", "Singer", "", "", "alice", sqlmock.AnyArg(), 0, created, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, replaced, err := s.Insert(context.Background(), Song{
		ID: "a", Title: "Title", Singer: "Singer", Owner: "alice", CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if replaced {
		t.Fatalf("expected no previous record")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertSongReplacesExisting(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(songRowColumns).
			AddRow("a", "Title", "Singer", "", "", "alice", "{}", 0, created, nil))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (id) DO UPDATE`)).
		WithArgs("a", "Title", "Singer", "", "", "alice", sqlmock.AnyArg(), 1, created, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	prev, replaced, err := s.Insert(context.Background(), Song{
		ID: "a", Title: "Title", Singer: "Singer", Owner: "alice",
		FavoritedBy: []string{"bob"}, FavoriteCount: 1,
		CreatedAt: created, UpdatedAt: &updated,
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if !replaced || prev.FavoriteCount != 0 {
		t.Fatalf("expected previous record with no favorites, got %#v (replaced=%v)", prev, replaced)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertSongRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(songRowColumns))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO songs`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if _, _, err := s.Insert(context.Background(), Song{ID: "a"}); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveSong(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM songs`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(songRowColumns).
			AddRow("a", "Title", "Singer", "", "", "alice", "{}", 0, created, nil))

	song, ok, err := s.Remove(context.Background(), "a")
	if err != nil || !ok || song.ID != "a" {
		t.Fatalf("Remove: song=%#v ok=%v err=%v", song, ok, err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM songs`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(songRowColumns))

	if _, ok, err := s.Remove(context.Background(), "missing"); err != nil || ok {
		t.Fatalf("expected nothing removed, ok=%v err=%v", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSongReturnsUTCTimes(t *testing.T) {
	s, mock := newMockStore(t)
	zone := time.FixedZone("CET", 3600)
	created := time.Date(2024, 1, 2, 4, 4, 5, 123000, zone)
	updated := created.Add(time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(songRowColumns).
			AddRow("a", "Title", "Singer", "", "", "alice", "{bob}", 1, created, updated))

	song, ok, err := s.Get(context.Background(), "a")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if song.CreatedAt.Location() != time.UTC || !song.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v, want %v in UTC", song.CreatedAt, created)
	}
	if song.UpdatedAt == nil || song.UpdatedAt.Location() != time.UTC || !song.UpdatedAt.Equal(updated) {
		t.Fatalf("updatedAt = %v, want %v in UTC", song.UpdatedAt, updated)
	}
}
