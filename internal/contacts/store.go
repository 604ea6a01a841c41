// Package contacts holds the client-side contact collection. The collection
// only changes after the backend confirms a mutation.
package contacts

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"contactbook/internal/model"
)

const (
	fallbackFetchError  = "Failed to fetch contacts"
	fallbackUnknown     = "An unknown error occurred"
	fallbackCreateError = "Failed to create contact"
	fallbackUpdateError = "Failed to update contact"
	fallbackDeleteError = "Failed to delete contact"
)

// API is the subset of the request client the store needs.
type API interface {
	ListContacts(ctx context.Context) (model.ContactsResponse, error)
	CreateContact(ctx context.Context, req model.CreateContactRequest) (model.Contact, error)
	UpdateContact(ctx context.Context, id string, req model.UpdateContactRequest) (model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

type State struct {
	Contacts  []model.Contact
	IsLoading bool
	Error     string
}

type Store struct {
	api API
	log zerolog.Logger

	mu       sync.RWMutex
	contacts []model.Contact
	loading  bool
	err      string
}

func New(api API, log zerolog.Logger) *Store {
	return &Store{api: api, log: log, contacts: []model.Contact{}}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Contacts:  slices.Clone(s.contacts),
		IsLoading: s.loading,
		Error:     s.err,
	}
}

// Fetch replaces the collection with the backend's list. On failure the
// previous collection is kept and Error is set.
func (s *Store) Fetch(ctx context.Context) {
	s.begin()
	resp, err := s.api.ListContacts(ctx)
	if err != nil {
		s.fail("fetch", errorMessage(err, fallbackUnknown), err)
		return
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = fallbackFetchError
		}
		s.fail("fetch", msg, nil)
		return
	}

	list := resp.Data
	if list == nil {
		list = []model.Contact{}
	}
	s.mu.Lock()
	s.contacts = slices.Clone(list)
	s.loading = false
	s.mu.Unlock()
	s.log.Debug().Int("count", len(list)).Msg("contacts: fetched")
}

// Create appends the backend-confirmed record and returns it. Failures set
// Error and are also returned.
func (s *Store) Create(ctx context.Context, req model.CreateContactRequest) (model.Contact, error) {
	s.begin()
	created, err := s.api.CreateContact(ctx, req)
	if err != nil {
		s.fail("create", errorMessage(err, fallbackCreateError), err)
		return model.Contact{}, err
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, created)
	s.loading = false
	s.mu.Unlock()
	s.log.Debug().Str("id", created.ID).Msg("contacts: created")
	return created, nil
}

// Update replaces the element with the given id in place, keeping its
// position.
func (s *Store) Update(ctx context.Context, id string, req model.UpdateContactRequest) (model.Contact, error) {
	s.begin()
	updated, err := s.api.UpdateContact(ctx, id, req)
	if err != nil {
		s.fail("update", errorMessage(err, fallbackUpdateError), err)
		return model.Contact{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.contacts[i] = updated
	}
	s.loading = false
	s.mu.Unlock()
	s.log.Debug().Str("id", id).Msg("contacts: updated")
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.api.DeleteContact(ctx, id); err != nil {
		s.fail("delete", errorMessage(err, fallbackDeleteError), err)
		return err
	}

	s.mu.Lock()
	s.contacts = slices.DeleteFunc(s.contacts, func(c model.Contact) bool { return c.ID == id })
	s.loading = false
	s.mu.Unlock()
	s.log.Debug().Str("id", id).Msg("contacts: deleted")
	return nil
}

// Get looks id up in the current collection without contacting the backend.
func (s *Store) Get(id string) (model.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.contacts[i], true
	}
	return model.Contact{}, false
}

// Search filters the current collection by a case-insensitive substring of
// name, email or phone. An empty query returns everything.
func (s *Store) Search(query string) []model.Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q == "" {
		return slices.Clone(s.contacts)
	}
	out := make([]model.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q) ||
			strings.Contains(strings.ToLower(c.Phone), q) {
			out = append(out, c)
		}
	}
	return out
}

// Reset empties the collection and clears flags, for use after logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.contacts = []model.Contact{}
	s.loading = false
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.contacts, func(c model.Contact) bool { return c.ID == id })
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) fail(op, msg string, cause error) {
	s.mu.Lock()
	s.err = msg
	s.loading = false
	s.mu.Unlock()
	s.log.Debug().Err(cause).Str("op", op).Str("reason", msg).Msg("contacts: operation failed")
}

func errorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
