package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MemoryStore keeps songs and accounts in process memory. Keys are kept
// sorted so List matches the ordering of the Postgres store.
type MemoryStore struct {
	mu    sync.RWMutex
	keys  []string
	songs map[string]Song
	users map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		songs: make(map[string]Song),
		users: make(map[string][]byte),
	}
}

// List returns every song ordered by key.
func (m *MemoryStore) List(_ context.Context) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Song, 0, len(m.keys))
	for _, key := range m.keys {
		result = append(result, cloneSong(m.songs[key]))
	}
	return result, nil
}

// Get returns a song by id.
func (m *MemoryStore) Get(_ context.Context, id string) (Song, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	song, ok := m.songs[id]
	if !ok {
		return Song{}, false, nil
	}
	return cloneSong(song), true, nil
}

// Insert upserts a song and returns the record it replaced, if any.
func (m *MemoryStore) Insert(_ context.Context, song Song) (Song, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, replaced := m.songs[song.ID]
	if !replaced {
		idx := sort.SearchStrings(m.keys, song.ID)
		m.keys = append(m.keys, "")
		copy(m.keys[idx+1:], m.keys[idx:])
		m.keys[idx] = song.ID
	}
	m.songs[song.ID] = cloneSong(song)

	if !replaced {
		return Song{}, false, nil
	}
	return previous, true, nil
}

// Remove deletes a song and returns it.
func (m *MemoryStore) Remove(_ context.Context, id string) (Song, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	song, ok := m.songs[id]
	if !ok {
		return Song{}, false, nil
	}
	delete(m.songs, id)
	idx := sort.SearchStrings(m.keys, id)
	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	return song, true, nil
}

// CreateUser registers a new account.
func (m *MemoryStore) CreateUser(_ context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return ErrUserExists
	}
	m.users[username] = hash
	return nil
}

// Authenticate validates credentials and returns the identity they belong to.
func (m *MemoryStore) Authenticate(_ context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	m.mu.RLock()
	hash, ok := m.users[username]
	m.mu.RUnlock()

	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return username, nil
}
