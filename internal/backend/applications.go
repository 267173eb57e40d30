// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"kenes/cli/internal/model"
)

// Applications lists applications matching filters (status, application_type, search, page, ...).
func (g *Gateway) Applications(ctx context.Context, filters Filters) (*model.Page[model.Application], error) {
	return call[model.Page[model.Application]](ctx, g.c, Request{
		Path:  pathApplications,
		Query: filters.Values(),
	})
}

// Application fetches one application.
func (g *Gateway) Application(ctx context.Context, id int64) (*model.Application, error) {
	return call[model.Application](ctx, g.c, Request{Path: applicationPath(id)})
}

// CreateApplication posts a new application and returns the stored record.
func (g *Gateway) CreateApplication(ctx context.Context, in model.ApplicationInput) (*model.Application, error) {
	return call[model.Application](ctx, g.c, Request{
		Method: http.MethodPost,
		Path:   pathApplications,
		Body:   in,
	})
}

// UpdateApplication patches an application and returns the stored record.
func (g *Gateway) UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (*model.Application, error) {
	return call[model.Application](ctx, g.c, Request{
		Method: http.MethodPatch,
		Path:   applicationPath(id),
		Body:   patch,
	})
}

// ApplicationStats fetches the server-computed statistics.
func (g *Gateway) ApplicationStats(ctx context.Context) (*model.ApplicationStats, error) {
	return call[model.ApplicationStats](ctx, g.c, Request{Path: pathApplicationStats})
}

// ApplicationHistory lists the recorded changes of an application, newest first.
func (g *Gateway) ApplicationHistory(ctx context.Context, id int64) (*model.Page[model.ApplicationHistoryEntry], error) {
	return call[model.Page[model.ApplicationHistoryEntry]](ctx, g.c, Request{Path: applicationHistoryPath(id)})
}

// ApplicationComments lists the comments visible to the caller.
func (g *Gateway) ApplicationComments(ctx context.Context, id int64) (*model.Page[model.ApplicationComment], error) {
	return call[model.Page[model.ApplicationComment]](ctx, g.c, Request{Path: applicationCommentsPath(id)})
}

// AddApplicationComment posts a comment as the signed-in user.
func (g *Gateway) AddApplicationComment(ctx context.Context, id int64, in model.ApplicationCommentInput) (*model.ApplicationComment, error) {
	return call[model.ApplicationComment](ctx, g.c, Request{
		Method: http.MethodPost,
		Path:   applicationCommentsPath(id),
		Body:   in,
	})
}
