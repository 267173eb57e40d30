// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

// Gateway implements API over the HTTP client.
type Gateway struct {
	c *Client
}

var _ API = (*Gateway)(nil)

// New creates a backend API implementation on top of c.
func New(c *Client) *Gateway {
	return &Gateway{c: c}
}
