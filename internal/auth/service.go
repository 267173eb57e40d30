// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides authentication services for the Kenes CLI.
// It signs the user in and out, keeps the session store and the query cache
// consistent with that, and serves the signed-in user from the cache.
// The access token itself lives in the OS keychain via internal/session.
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kenes/cli/internal/backend"
	"kenes/cli/internal/cache"
	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/events"
	"kenes/cli/internal/model"
	"kenes/cli/internal/queries"
	"kenes/cli/internal/session"
)

// CurrentUserStaleTime is how long the signed-in user is served from cache.
const CurrentUserStaleTime = 5 * time.Minute

// ErrNotSignedIn is returned by reads that need a session when there is none.
var ErrNotSignedIn = apierr.New(apierr.Auth, "not signed in, run `kenes login`")

// Service centralizes authentication-related operations against the backend
// and local secure storage.
type Service struct {
	api     backend.API
	session *session.Store
	cache   *cache.Client
	bus     *events.Bus
	log     *zap.Logger
}

// NewService wires an auth Service. bus and log may be nil.
func NewService(api backend.API, sess *session.Store, c *cache.Client, bus *events.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: api, session: sess, cache: c, bus: bus, log: log.Named("auth")}
}

// Login exchanges credentials for a token. On success the token is stored
// for session.DefaultTTL and the returned user seeds the current-user entry.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	resp, err := cache.Mutate(ctx, s.cache, cache.Mutation[*model.LoginResponse]{
		Name:    "login",
		Success: "Signed in",
		Failure: "Sign-in failed",
		OnSuccess: func(r *model.LoginResponse) {
			s.session.Set(r.AccessToken, session.DefaultTTL)
			user := r.User
			cache.SetData(s.cache, queries.CurrentUserKey, &user)
		},
	}, func(ctx context.Context) (*model.LoginResponse, error) {
		return s.api.Login(ctx, username, password)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("signed in", zap.Int64("user_id", resp.User.ID))
	return &resp.User, nil
}

// Logout performs remote logout (best-effort) and always clears the local
// session and every cached entry.
func (s *Service) Logout(ctx context.Context) {
	if s.IsAuthenticated() {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Warn("remote logout failed", zap.Error(err))
		}
	}
	s.session.Clear()
	s.cache.Clear()
	s.bus.Publish(events.Event{Type: events.Success, Operation: "logout", Message: "Signed out"})
}

// CurrentUser returns the signed-in user. Without a session it fails with
// ErrNotSignedIn and makes no network call.
func (s *Service) CurrentUser(ctx context.Context, opts ...cache.ReadOption) (cache.Result[*model.User], error) {
	if !s.IsAuthenticated() {
		return cache.Result[*model.User]{}, ErrNotSignedIn
	}
	opts = append([]cache.ReadOption{cache.StaleTime(CurrentUserStaleTime)}, opts...)
	return cache.Query(ctx, s.cache, queries.CurrentUserKey, s.api.CurrentUser, opts...)
}

// IsAuthenticated reports whether a non-expired credential is present.
func (s *Service) IsAuthenticated() bool {
	_, ok := s.session.Get()
	return ok
}

// ExpiresAt returns the expiry of the current credential.
func (s *Service) ExpiresAt() (time.Time, bool) {
	return s.session.ExpiresAt()
}
