// Package credstore is the single source of truth for who is signed in and
// with which access token. The token is kept sealed in memory and in the
// session snapshot; callers only ever see the decrypted value through
// AccessToken. Every mutation replaces the whole identity triple under one
// lock, so no reader observes a half-updated login.
package credstore

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tonimelisma/storefront-go/internal/model"
)

// SnapshotName is the session storage entry holding the redacted snapshot.
const SnapshotName = "auth-storage"

// State is a point-in-time copy of the store. IsAuthenticated is true iff
// IdentityID, Detail and EncryptedToken are all set.
type State struct {
	IdentityID      string
	Detail          *model.UserDetail
	EncryptedToken  string
	IsAuthenticated bool
}

// snapshot is the persisted JSON layout. Absent values serialize as null.
type snapshot struct {
	IdentityID      *string           `json:"identityId"`
	IdentityDetail  *model.UserDetail `json:"identityDetail"`
	EncryptedToken  *string           `json:"encryptedAccessToken"`
	IsAuthenticated bool              `json:"isAuthenticated"`
}

// Store holds the credential state. Construct with New; share one instance
// per application session.
type Store struct {
	cipher  TokenCipher
	storage SessionStorage
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
}

// New creates a Store and rehydrates it from storage when a consistent
// snapshot exists. A nil storage keeps the store purely in memory.
func New(tc TokenCipher, storage SessionStorage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	if storage == nil {
		storage = NewMemoryStorage()
	}

	s := &Store{
		cipher:  tc,
		storage: storage,
		logger:  logger,
	}

	s.rehydrate()

	return s
}

// Login seals rawAccessToken and replaces the identity triple. Incomplete
// input is logged and ignored; a sealing failure leaves the store logged out.
// Sealing happens under the write lock, so a Logout that starts after Login
// is always applied after it.
func (s *Store) Login(identityID string, detail *model.UserDetail, rawAccessToken string) {
	if identityID == "" || detail == nil || rawAccessToken == "" {
		s.logger.Warn("credstore: ignoring incomplete login",
			slog.Bool("has_identity", identityID != ""),
			slog.Bool("has_detail", detail != nil),
			slog.Bool("has_token", rawAccessToken != ""),
		)

		return
	}

	d := *detail

	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.cipher.Encrypt(rawAccessToken)
	if err != nil {
		s.logger.Error("credstore: sealing access token failed, logging out",
			slog.String("error", err.Error()),
		)
		s.logoutLocked()

		return
	}

	s.state = State{
		IdentityID:      identityID,
		Detail:          &d,
		EncryptedToken:  sealed,
		IsAuthenticated: true,
	}

	s.persistLocked()

	s.logger.Debug("credstore: logged in",
		slog.String("identity", identityID),
		slog.String("role", string(d.Role)),
	)
}

// Logout clears the identity triple and removes the snapshot.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logoutLocked()
}

// logoutLocked clears the state. Caller must hold mu.
func (s *Store) logoutLocked() {
	s.state = State{}

	if err := s.storage.Remove(SnapshotName); err != nil {
		s.logger.Warn("credstore: removing snapshot failed", slog.String("error", err.Error()))
	}

	s.logger.Debug("credstore: logged out")
}

// AccessToken returns the decrypted access token, or "" when there is none
// or it cannot be decrypted.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	sealed := s.state.EncryptedToken
	s.mu.RUnlock()

	if sealed == "" {
		return ""
	}

	tok, err := s.cipher.Decrypt(sealed)
	if err != nil {
		s.logger.Warn("credstore: decrypting access token failed", slog.String("error", err.Error()))
		return ""
	}

	return tok
}

// Role returns the signed-in principal's role, or "" when unauthenticated.
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Detail == nil {
		return ""
	}

	return string(s.state.Detail.Role)
}

// Identity returns the principal's id and detail. ok is false when nobody
// is signed in.
func (s *Store) Identity() (string, *model.UserDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.state.IsAuthenticated {
		return "", nil, false
	}

	d := *s.state.Detail

	return s.state.IdentityID, &d, true
}

// IsAuthenticated reports whether a complete identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.IsAuthenticated
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.Detail != nil {
		d := *st.Detail
		st.Detail = &d
	}

	return st
}

// persistLocked writes the redacted snapshot. Caller must hold mu.
func (s *Store) persistLocked() {
	snap := snapshot{IsAuthenticated: s.state.IsAuthenticated, IdentityDetail: s.state.Detail}
	if s.state.IsAuthenticated {
		snap.IdentityID = &s.state.IdentityID
		snap.EncryptedToken = &s.state.EncryptedToken
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("credstore: encoding snapshot failed", slog.String("error", err.Error()))
		return
	}

	if err := s.storage.Set(SnapshotName, data); err != nil {
		s.logger.Warn("credstore: persisting snapshot failed", slog.String("error", err.Error()))
	}
}

// rehydrate loads the snapshot saved by an earlier process in the same
// session. Inconsistent snapshots are dropped rather than partially applied.
func (s *Store) rehydrate() {
	data, err := s.storage.Get(SnapshotName)
	if err != nil {
		s.logger.Warn("credstore: reading snapshot failed", slog.String("error", err.Error()))
		return
	}

	if data == nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("credstore: discarding undecodable snapshot", slog.String("error", err.Error()))
		s.discardSnapshot()

		return
	}

	complete := snap.IdentityID != nil && *snap.IdentityID != "" &&
		snap.IdentityDetail != nil &&
		snap.EncryptedToken != nil && *snap.EncryptedToken != ""

	if !complete || !snap.IsAuthenticated {
		if complete || snap.IsAuthenticated || snap.IdentityID != nil || snap.EncryptedToken != nil {
			s.logger.Warn("credstore: discarding inconsistent snapshot")
		}

		s.discardSnapshot()

		return
	}

	s.state = State{
		IdentityID:      *snap.IdentityID,
		Detail:          snap.IdentityDetail,
		EncryptedToken:  *snap.EncryptedToken,
		IsAuthenticated: true,
	}

	s.logger.Debug("credstore: restored session", slog.String("identity", s.state.IdentityID))
}

func (s *Store) discardSnapshot() {
	if err := s.storage.Remove(SnapshotName); err != nil {
		s.logger.Warn("credstore: removing snapshot failed", slog.String("error", err.Error()))
	}
}
