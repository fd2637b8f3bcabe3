// Package store persists focusbuddy's records as JSON files: a user
// list and an append-only session history. Writes go through a temp
// file and rename so a crash never corrupts the store.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store file format version.
const currentVersion = 1

// Sentinel errors.
var (
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("store: email already registered")

	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("store: user not found")
)

// User is one registered local account. The password is stored in the
// clear; this is a single-user local study aid, not an auth system.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore keeps users in a JSON file.
type UserStore struct {
	path  string
	users map[string]*User // keyed by lowercased email
	mu    sync.RWMutex
}

type userFile struct {
	Version   int     `json:"version"`
	UpdatedAt string  `json:"updated_at"`
	Users     []*User `json:"users"`
}

// OpenUsers opens (or creates) the user store at path.
func OpenUsers(path string) (*UserStore, error) {
	s := &UserStore{
		path:  path,
		users: make(map[string]*User),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("store: load users: %w", err)
		}
	}

	return s, nil
}

func (s *UserStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var stored userFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	s.users = make(map[string]*User)
	for _, u := range stored.Users {
		s.users[strings.ToLower(u.Email)] = u
	}
	return nil
}

func (s *UserStore) save() error {
	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	stored := userFile{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Users:     users,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Create registers a new user. The email must be unused.
func (s *UserStore) Create(name, email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		return nil, ErrEmailTaken
	}

	u := &User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: time.Now(),
	}
	s.users[key] = u

	if err := s.save(); err != nil {
		delete(s.users, key)
		return nil, fmt.Errorf("store: save users: %w", err)
	}
	return u, nil
}

// FindByEmail looks up a user by email (case-insensitive).
func (s *UserStore) FindByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Authenticate returns the user when email and password match.
func (s *UserStore) Authenticate(email, password string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok || u.Password != password {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Count returns the number of registered users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
