// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model holds the resource records exchanged with the Kenes service.
// Records are snapshots of server state and are never modified after decoding.
package model

import "time"

// User is an account on the service.
type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Role          string     `json:"role"`
	Phone         string     `json:"phone"`
	IIN           string     `json:"iin"`
	Organization  string     `json:"organization"`
	Position      string     `json:"position"`
	IsVerified    bool       `json:"is_verified"`
	EmailVerified bool       `json:"email_verified"`
	PhoneVerified bool       `json:"phone_verified"`
	DateJoined    time.Time  `json:"date_joined"`
	LastLogin     *time.Time `json:"last_login"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return u.Email
}

// UserProfile carries the extended profile of the current user.
type UserProfile struct {
	ID             int64          `json:"id"`
	User           User           `json:"user"`
	Avatar         string         `json:"avatar"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	Region         string         `json:"region"`
	PostalCode     string         `json:"postal_code"`
	AdditionalInfo map[string]any `json:"additional_info"`
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Address        *string        `json:"address,omitempty"`
	City           *string        `json:"city,omitempty"`
	Region         *string        `json:"region,omitempty"`
	PostalCode     *string        `json:"postal_code,omitempty"`
	AdditionalInfo map[string]any `json:"additional_info,omitempty"`
}

// LoginRequest is the body of auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Page is the paginated envelope used by every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Message is the acknowledgement body returned by action endpoints.
type Message struct {
	Message string `json:"message"`
}

// Blob is an opaque binary payload such as a downloaded document.
type Blob struct {
	ContentType string
	Filename    string
	Data        []byte
}
