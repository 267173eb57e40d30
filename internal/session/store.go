// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the bearer credential of the current user.
//
// The credential lives in a durable keyring slot with an expiry. Storage
// problems never surface as errors: they are logged and the store behaves as
// if no credential existed, which the transport treats as an anonymous request.
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/99designs/keyring"
	"go.uber.org/zap"

	"kenes/cli/internal/keychain"
)

// DefaultTTL is how long a credential stays valid after login.
const DefaultTTL = 7 * 24 * time.Hour

// Credential is a bearer token with its expiry.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the credential is unusable at now.
func (c Credential) Expired(now time.Time) bool {
	return c.Token == "" || !now.Before(c.ExpiresAt)
}

// Store provides thread-safe access to the credential slot.
// A Store with a nil ring keeps the credential in memory only.
type Store struct {
	mu     sync.RWMutex
	ring   keyring.Keyring
	cred   *Credential
	loaded bool
	now    func() time.Time
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLogger sets the logger used for storage failures.
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// NewStore creates a store backed by ring.
func NewStore(ring keyring.Keyring, opts ...Option) *Store {
	s := &Store{ring: ring, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Set stores token for ttl. If the token carries an earlier expiry claim, that one wins.
func (s *Store) Set(token string, ttl time.Duration) {
	if token == "" {
		s.Clear()
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expires := s.now().Add(ttl)
	if exp, ok := tokenExpiry(token); ok && exp.Before(expires) {
		expires = exp
	}
	cred := Credential{Token: token, ExpiresAt: expires}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &cred
	s.loaded = true

	if s.ring == nil {
		return
	}
	data, err := json.Marshal(cred)
	if err != nil {
		s.log.Warn("encode credential", zap.Error(err))
		return
	}
	if err := s.ring.Set(keyring.Item{Key: keychain.KeyAccessToken, Data: data, Label: "kenes access token"}); err != nil {
		s.log.Warn("persist credential", zap.Error(err))
	}
}

// Get returns the current token, or false when absent or expired.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	if s.loaded {
		cred := s.cred
		s.mu.RUnlock()
		if cred == nil {
			return "", false
		}
		if cred.Expired(s.now()) {
			s.expire(cred)
			return "", false
		}
		return cred.Token, true
	}
	s.mu.RUnlock()

	s.mu.Lock()
	if !s.loaded {
		s.cred = s.load()
		s.loaded = true
	}
	s.mu.Unlock()
	return s.Get()
}

// Clear removes the credential. It reports whether a credential was present.
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := s.cred != nil
	if !s.loaded && s.ring != nil {
		_, err := s.ring.Get(keychain.KeyAccessToken)
		had = err == nil
	}
	s.cred = nil
	s.loaded = true

	if s.ring != nil {
		if err := s.ring.Remove(keychain.KeyAccessToken); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			s.log.Warn("remove credential", zap.Error(err))
		}
	}
	return had
}

// expire drops cred if it is still the current credential. A credential
// stored by a concurrent Set is left alone.
func (s *Store) expire(cred *Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred != cred {
		return
	}
	s.cred = nil
	if s.ring != nil {
		if err := s.ring.Remove(keychain.KeyAccessToken); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			s.log.Warn("remove expired credential", zap.Error(err))
		}
	}
}

// ExpiresAt returns the expiry of the current credential.
func (s *Store) ExpiresAt() (time.Time, bool) {
	if _, ok := s.Get(); !ok {
		return time.Time{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return time.Time{}, false
	}
	return s.cred.ExpiresAt, true
}

// load reads the persisted credential. Must be called with s.mu held.
func (s *Store) load() *Credential {
	if s.ring == nil {
		return nil
	}
	it, err := s.ring.Get(keychain.KeyAccessToken)
	if err != nil {
		if !errors.Is(err, keyring.ErrKeyNotFound) {
			s.log.Warn("read credential", zap.Error(err))
		}
		return nil
	}
	var cred Credential
	if err := json.Unmarshal(it.Data, &cred); err != nil || cred.Token == "" {
		s.log.Warn("discarding unreadable credential", zap.Error(err))
		return nil
	}
	return &cred
}
