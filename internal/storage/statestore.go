// Package storage persists client state between CLI runs.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valter-silva-au/dlog/pkg/models"
	"gopkg.in/yaml.v3"
)

const stateVersion = "1.0"

// StateStore keeps the unsent draft and the pending follow-up session.
type StateStore interface {
	Load() error
	Save() error
	Draft() *models.WorkUpdateDraft
	SetDraft(d *models.WorkUpdateDraft)
	PendingFollowup() *models.PendingFollowup
	SetPendingFollowup(p *models.PendingFollowup)
}

type fileStateStore struct {
	basePath string

	mu    sync.Mutex
	state models.LocalState
}

// NewStateStore creates a StateStore backed by .dlog/state.yaml under
// basePath.
func NewStateStore(basePath string) StateStore {
	return &fileStateStore{
		basePath: basePath,
		state:    models.LocalState{Version: stateVersion},
	}
}

func (s *fileStateStore) stateDir() string {
	return filepath.Join(s.basePath, ".dlog")
}

func (s *fileStateStore) statePath() string {
	return filepath.Join(s.stateDir(), "state.yaml")
}

// Load reads the state file. A missing file leaves an empty state.
func (s *fileStateStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.state = models.LocalState{Version: stateVersion}
			return nil
		}
		return fmt.Errorf("loading state: reading file: %w", err)
	}

	var st models.LocalState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("loading state: parsing yaml: %w", err)
	}
	if st.Version == "" {
		st.Version = stateVersion
	}
	s.state = st
	return nil
}

// Save writes the state file atomically through a temp file and rename.
func (s *fileStateStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.stateDir(), 0o755); err != nil {
		return fmt.Errorf("saving state: creating directory: %w", err)
	}

	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("saving state: marshaling yaml: %w", err)
	}

	tmp := s.statePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving state: writing file: %w", err)
	}
	if err := os.Rename(tmp, s.statePath()); err != nil {
		return fmt.Errorf("saving state: replacing file: %w", err)
	}
	return nil
}

// Draft returns a copy of the saved draft, or nil.
func (s *fileStateStore) Draft() *models.WorkUpdateDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Draft == nil {
		return nil
	}
	d := *s.state.Draft
	return &d
}

// SetDraft replaces the saved draft; nil clears it.
func (s *fileStateStore) SetDraft(d *models.WorkUpdateDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.state.Draft = nil
		return
	}
	cp := *d
	s.state.Draft = &cp
}

// PendingFollowup returns a copy of the saved follow-up session, or nil.
func (s *fileStateStore) PendingFollowup() *models.PendingFollowup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Followup == nil {
		return nil
	}
	p := *s.state.Followup
	p.Session.Questions = append([]string(nil), p.Session.Questions...)
	p.Session.Answers = append([]string(nil), p.Session.Answers...)
	return &p
}

// SetPendingFollowup replaces the saved follow-up session; nil clears it.
// A zero StartedAt is stamped with the current time.
func (s *fileStateStore) SetPendingFollowup(p *models.PendingFollowup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.state.Followup = nil
		return
	}
	cp := *p
	cp.Session.Questions = append([]string(nil), p.Session.Questions...)
	cp.Session.Answers = append([]string(nil), p.Session.Answers...)
	if cp.StartedAt.IsZero() {
		cp.StartedAt = time.Now().UTC()
	}
	s.state.Followup = &cp
}
