// Package session holds the authenticated identity of the client: the
// current user, the bearer token, and the loading/error flags of the last
// login, register or logout call.
//
// Operations never return errors; callers read the outcome from State.
// Overlapping calls are not serialized and the last response to arrive wins.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"contactbook/internal/auth"
	"contactbook/internal/model"
	"contactbook/internal/storage"
)

const (
	fallbackLoginError    = "Login failed"
	fallbackRegisterError = "Registration failed"
	fallbackLogoutError   = "Logout failed"
	fallbackStorageError  = "Could not save session"
)

// AuthAPI is the subset of the request client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Logout(ctx context.Context) error
}

// State is a copy of the session at one instant.
type State struct {
	User            *model.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	ExpiresAt       *time.Time
}

type Store struct {
	api     AuthAPI
	storage storage.Storage
	log     zerolog.Logger

	mu      sync.RWMutex
	user    *model.User
	token   string
	loading bool
	err     string
}

// New builds a store and hydrates identity from the persisted snapshot, if
// any. Loading and error state are never restored.
func New(api AuthAPI, st storage.Storage, log zerolog.Logger) *Store {
	s := &Store{api: api, storage: st, log: log}
	s.hydrate(context.Background())
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, storage.SessionKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: read snapshot failed")
		return
	}
	if !ok || raw == "" {
		return
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: ignoring unreadable snapshot")
		return
	}
	// The request client only sends what sits under TokenKey, so a snapshot
	// without it cannot authenticate anything.
	token, ok, err := s.storage.Get(ctx, storage.TokenKey)
	if err != nil || !ok || token == "" {
		s.log.Warn().Err(err).Msg("session: snapshot has no bearer token, discarding")
		if err := s.storage.Remove(ctx, storage.SessionKey); err != nil {
			s.log.Warn().Err(err).Msg("session: remove snapshot failed")
		}
		return
	}
	s.user = snap.State.User
	if snap.State.Token != nil {
		s.token = *snap.State.Token
	}
}

// IsAuthenticated is derived from user and token on every call.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Store) authenticatedLocked() bool {
	return s.user != nil && s.token != ""
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Token:           s.token,
		IsAuthenticated: s.authenticatedLocked(),
		IsLoading:       s.loading,
		Error:           s.err,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	if exp, ok := auth.TokenExpiry(s.token); ok {
		st.ExpiresAt = &exp
	}
	return st
}

func (s *Store) Login(ctx context.Context, email, password string) {
	s.begin()
	resp, err := s.api.Login(ctx, model.LoginRequest{Email: email, Password: password})
	s.finishAuth(ctx, "login", resp, err, fallbackLoginError)
}

func (s *Store) Register(ctx context.Context, name, email, password string) {
	s.begin()
	resp, err := s.api.Register(ctx, model.RegisterRequest{Name: name, Email: email, Password: password})
	s.finishAuth(ctx, "register", resp, err, fallbackRegisterError)
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) finishAuth(ctx context.Context, op string, resp model.AuthResponse, err error, fallback string) {
	if err != nil {
		s.fail(op, errorMessage(err, fallback), err)
		return
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		s.fail(op, msg, nil)
		return
	}

	if err := s.storage.Set(ctx, storage.TokenKey, resp.Data.Token); err != nil {
		s.fail(op, fallbackStorageError, err)
		return
	}

	user := resp.Data.User
	s.mu.Lock()
	s.user = &user
	s.token = resp.Data.Token
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.log.Info().Str("op", op).Str("user_id", user.ID).Msg("session: authenticated")
}

func (s *Store) fail(op, msg string, cause error) {
	s.mu.Lock()
	s.err = msg
	s.loading = false
	s.mu.Unlock()
	s.log.Debug().Err(cause).Str("op", op).Str("reason", msg).Msg("session: operation failed")
}

// Logout drops the token through the API and, if that succeeds, resets
// identity and removes both storage keys. A failing API call leaves identity
// in place and sets Error.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.mu.Lock()
		s.err = errorMessage(err, fallbackLogoutError)
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("session: logout failed")
		return
	}
	s.clearIdentity(ctx)
	s.ClearError()
	s.log.Info().Msg("session: logged out")
}

// Expire resets identity after the backend rejected the bearer token. It
// does not touch Error.
func (s *Store) Expire() {
	s.clearIdentity(context.Background())
	s.log.Info().Msg("session: token rejected, identity cleared")
}

func (s *Store) clearIdentity(ctx context.Context) {
	if err := s.storage.Remove(ctx, storage.TokenKey); err != nil {
		s.log.Warn().Err(err).Msg("session: remove bearer token failed")
	}
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	if err := s.storage.Remove(ctx, storage.SessionKey); err != nil {
		s.log.Warn().Err(err).Msg("session: remove snapshot failed")
	}
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, snap snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: encode snapshot failed")
		return
	}
	if err := s.storage.Set(ctx, storage.SessionKey, string(data)); err != nil {
		s.log.Warn().Err(err).Msg("session: write snapshot failed")
	}
}

func errorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
