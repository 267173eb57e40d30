// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/model"
)

// Login posts credentials to auth/login and returns the issued token and user.
// It does not touch the session; storing the token is the caller's decision.
func (g *Gateway) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	out, err := call[model.LoginResponse](ctx, g.c, Request{
		Method: http.MethodPost,
		Path:   pathLogin,
		Body:   model.LoginRequest{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, apierr.New(apierr.Server, "login response carried no access_token")
	}
	return out, nil
}

// Logout invalidates the current credential on the service.
func (g *Gateway) Logout(ctx context.Context) error {
	_, err := g.c.Do(ctx, Request{Method: http.MethodPost, Path: pathLogout})
	return err
}

// CurrentUser calls GET auth/current.
func (g *Gateway) CurrentUser(ctx context.Context) (*model.User, error) {
	return call[model.User](ctx, g.c, Request{Path: pathCurrentUser})
}

// Profile calls GET auth/profile.
func (g *Gateway) Profile(ctx context.Context) (*model.UserProfile, error) {
	return call[model.UserProfile](ctx, g.c, Request{Path: pathProfile})
}

// UpdateProfile calls PATCH auth/profile.
func (g *Gateway) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (*model.UserProfile, error) {
	return call[model.UserProfile](ctx, g.c, Request{
		Method: http.MethodPatch,
		Path:   pathProfile,
		Body:   patch,
	})
}

// Users lists accounts visible to the current user.
func (g *Gateway) Users(ctx context.Context, filters Filters) (*model.Page[model.User], error) {
	return call[model.Page[model.User]](ctx, g.c, Request{Path: pathUsers, Query: filters.Values()})
}

// User fetches one account.
func (g *Gateway) User(ctx context.Context, id int64) (*model.User, error) {
	return call[model.User](ctx, g.c, Request{Path: userPath(id)})
}
