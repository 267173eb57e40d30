// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenes/cli/internal/keychain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T) (*Store, *keyring.ArrayKeyring, *clock) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	clk := &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	return NewStore(ring, WithClock(clk.now)), ring, clk
}

func TestStore_SetGet(t *testing.T) {
	s, ring, _ := newTestStore(t)

	_, ok := s.Get()
	assert.False(t, ok)

	s.Set("abc", DefaultTTL)

	token, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "abc", token)

	it, err := ring.Get(keychain.KeyAccessToken)
	require.NoError(t, err)
	var cred Credential
	require.NoError(t, json.Unmarshal(it.Data, &cred))
	assert.Equal(t, "abc", cred.Token)
	assert.Equal(t, time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC), cred.ExpiresAt)
}

func TestStore_Expiry(t *testing.T) {
	s, ring, clk := newTestStore(t)
	s.Set("abc", time.Hour)

	clk.t = clk.t.Add(59 * time.Minute)
	_, ok := s.Get()
	assert.True(t, ok)

	clk.t = clk.t.Add(time.Minute)
	_, ok = s.Get()
	assert.False(t, ok)

	_, err := ring.Get(keychain.KeyAccessToken)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestStore_ExpiryKeepsConcurrentSet(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var s *Store
	var onNow func()
	s = NewStore(ring, WithClock(func() time.Time {
		if f := onNow; f != nil {
			onNow = nil
			f()
		}
		return now
	}))

	s.Set("old", time.Hour)
	now = now.Add(2 * time.Hour)
	// A login lands after Get has seen the expired token but before it expires it.
	onNow = func() { s.Set("fresh", DefaultTTL) }

	_, ok := s.Get()
	assert.False(t, ok)

	token, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "fresh", token)

	it, err := ring.Get(keychain.KeyAccessToken)
	require.NoError(t, err)
	var cred Credential
	require.NoError(t, json.Unmarshal(it.Data, &cred))
	assert.Equal(t, "fresh", cred.Token)
}

func TestStore_ClearIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Set("abc", DefaultTTL)

	assert.True(t, s.Clear())
	assert.False(t, s.Clear())

	_, ok := s.Get()
	assert.False(t, ok)
}

func TestStore_LoadsPersistedCredential(t *testing.T) {
	clk := &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(Credential{Token: "persisted", ExpiresAt: clk.t.Add(time.Hour)})
	require.NoError(t, err)
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: keychain.KeyAccessToken, Data: data}})

	s := NewStore(ring, WithClock(clk.now))

	token, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestStore_UnreadableCredentialIsAnonymous(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: keychain.KeyAccessToken, Data: []byte("{broken")}})
	s := NewStore(ring)

	_, ok := s.Get()
	assert.False(t, ok)
}

func TestStore_NilRingKeepsMemoryOnly(t *testing.T) {
	s := NewStore(nil)
	s.Set("abc", DefaultTTL)

	token, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.True(t, s.Clear())
}

func TestStore_JWTExpiryWins(t *testing.T) {
	s, _, clk := newTestStore(t)
	exp := clk.t.Add(2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s.Set(token, DefaultTTL)

	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "expiry = %v, want %v", got, exp)

	clk.t = exp
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestStore_EmptyTokenClears(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Set("abc", DefaultTTL)
	s.Set("", DefaultTTL)

	_, ok := s.Get()
	assert.False(t, ok)
}
