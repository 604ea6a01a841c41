package session

import (
	"encoding/json"

	"contactbook/internal/model"
)

// snapshot is the persisted form of the session. Only identity is kept;
// IsAuthenticated is written for readers of the raw value and recomputed on
// load.
type snapshot struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	User            *model.User `json:"user"`
	Token           *string     `json:"token"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{State: persistedState{IsAuthenticated: s.authenticatedLocked()}}
	if s.user != nil {
		u := *s.user
		snap.State.User = &u
	}
	if s.token != "" {
		t := s.token
		snap.State.Token = &t
	}
	return snap
}

func decodeSnapshot(raw string) (snapshot, error) {
	var snap snapshot
	err := json.Unmarshal([]byte(raw), &snap)
	return snap, err
}
