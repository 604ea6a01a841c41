// Package store is the in-memory state of devapi: users and their contacts,
// optionally persisted to a JSON state file after every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contactbook/internal/model"
	"contactbook/internal/storage"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

const (
	stateVersion    = 1
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// User is a registered account. PasswordHash never leaves devapi.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

func (u User) Public() model.User {
	return model.User{ID: u.ID, Name: u.Name, Email: u.Email}
}

type Options struct {
	StateFile string
	Logger    zerolog.Logger
	Now       func() time.Time
}

type Store struct {
	mu sync.RWMutex

	stateFile string
	persistMu sync.Mutex
	log       zerolog.Logger
	now       func() time.Time

	usersByID      map[string]User
	userIDByEmail  map[string]string
	contactsByID   map[string]model.Contact
	contactsByUser map[string][]string
}

func New() *Store {
	return NewWithOptions(Options{Logger: zerolog.Nop()})
}

func NewWithOptions(opts Options) *Store {
	s := &Store{
		stateFile:      opts.StateFile,
		log:            opts.Logger,
		now:            opts.Now,
		usersByID:      make(map[string]User),
		userIDByEmail:  make(map[string]string),
		contactsByID:   make(map[string]model.Contact),
		contactsByUser: make(map[string][]string),
	}
	if s.now == nil {
		s.now = time.Now
	}

	if s.stateFile != "" {
		if err := s.loadFromFile(s.stateFile); err != nil {
			s.log.Error().Err(err).Str("file", s.stateFile).Msg("state persistence: load failed")
		}
	}

	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func (s *Store) CreateUser(name, email, passwordHash string) (User, error) {
	key := normalizeEmail(email)
	if key == "" {
		return User{}, errors.New("missing email")
	}

	s.mu.Lock()
	if _, exists := s.userIDByEmail[key]; exists {
		s.mu.Unlock()
		return User{}, ErrEmailTaken
	}
	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    s.timestamp(),
	}
	s.usersByID[u.ID] = u
	s.userIDByEmail[key] = u.ID
	s.commitLocked()
	return u, nil
}

func (s *Store) UserByEmail(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userIDByEmail[normalizeEmail(email)]
	if !ok {
		return User{}, false
	}
	return s.usersByID[id], true
}

func (s *Store) UserByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[id]
	return u, ok
}

// ListContacts returns userID's contacts in creation order.
func (s *Store) ListContacts(userID string) []model.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.contactsByUser[userID]
	result := make([]model.Contact, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.contactsByID[id])
	}
	return result
}

// GetContact returns ErrNotFound for unknown ids and for contacts owned by
// another user.
func (s *Store) GetContact(userID, id string) (model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contactsByID[id]
	if !ok || c.Owner != userID {
		return model.Contact{}, ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateContact(userID string, req model.CreateContactRequest) (model.Contact, error) {
	if userID == "" {
		return model.Contact{}, errors.New("missing userID")
	}

	s.mu.Lock()
	now := s.timestamp()
	c := model.Contact{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
		Owner:     userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.contactsByID[c.ID] = c
	s.contactsByUser[userID] = append(s.contactsByUser[userID], c.ID)
	s.commitLocked()
	return c, nil
}

// UpdateContact applies the non-nil fields of req and bumps the revision.
func (s *Store) UpdateContact(userID, id string, req model.UpdateContactRequest) (model.Contact, error) {
	s.mu.Lock()
	c, ok := s.contactsByID[id]
	if !ok || c.Owner != userID {
		s.mu.Unlock()
		return model.Contact{}, ErrNotFound
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		c.Address = strings.TrimSpace(*req.Address)
	}
	c.Revision++
	c.UpdatedAt = s.timestamp()
	s.contactsByID[id] = c
	s.commitLocked()
	return c, nil
}

func (s *Store) DeleteContact(userID, id string) error {
	s.mu.Lock()
	c, ok := s.contactsByID[id]
	if !ok || c.Owner != userID {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.contactsByID, id)
	ids := s.contactsByUser[userID]
	for i, existing := range ids {
		if existing == id {
			s.contactsByUser[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	s.commitLocked()
	return nil
}

type persistedStateFile struct {
	Version  int             `json:"version"`
	Users    []User          `json:"users"`
	Contacts []model.Contact `json:"contacts"`
	SavedAt  int64           `json:"savedAt"`
}

func (s *Store) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var file persistedStateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	if file.Version != stateVersion {
		return fmt.Errorf("unsupported state version %d", file.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range file.Users {
		if u.ID == "" || u.Email == "" {
			continue
		}
		s.usersByID[u.ID] = u
		s.userIDByEmail[normalizeEmail(u.Email)] = u.ID
	}
	for _, c := range file.Contacts {
		if c.ID == "" {
			continue
		}
		if _, ok := s.usersByID[c.Owner]; !ok {
			continue
		}
		s.contactsByID[c.ID] = c
		s.contactsByUser[c.Owner] = append(s.contactsByUser[c.Owner], c.ID)
	}
	return nil
}

// snapshotLocked returns nil when persistence is disabled.
func (s *Store) snapshotLocked() *persistedStateFile {
	if s.stateFile == "" {
		return nil
	}

	users := make([]User, 0, len(s.usersByID))
	for _, u := range s.usersByID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	contacts := make([]model.Contact, 0, len(s.contactsByID))
	for _, u := range users {
		for _, id := range s.contactsByUser[u.ID] {
			contacts = append(contacts, s.contactsByID[id])
		}
	}

	return &persistedStateFile{
		Version:  stateVersion,
		Users:    users,
		Contacts: contacts,
		SavedAt:  s.now().UnixMilli(),
	}
}

// commitLocked releases mu after snapshotting the state. persistMu is taken
// before mu is released so snapshots reach disk in mutation order.
func (s *Store) commitLocked() {
	snap := s.snapshotLocked()
	if snap == nil {
		s.mu.Unlock()
		return
	}
	s.persistMu.Lock()
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Str("file", s.stateFile).Msg("state persistence: marshal failed")
		return
	}
	if err := storage.WriteFileAtomic(s.stateFile, append(data, '\n')); err != nil {
		s.log.Error().Err(err).Str("file", s.stateFile).Msg("state persistence: write failed")
	}
}
