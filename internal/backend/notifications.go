// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"kenes/cli/internal/model"
)

// Notifications lists notifications of the current user.
func (g *Gateway) Notifications(ctx context.Context, filters Filters) (*model.Page[model.Notification], error) {
	return call[model.Page[model.Notification]](ctx, g.c, Request{
		Path:  pathNotifications,
		Query: filters.Values(),
	})
}

// UnreadNotificationCount returns how many notifications are unread.
func (g *Gateway) UnreadNotificationCount(ctx context.Context) (int, error) {
	out, err := call[model.UnreadCount](ctx, g.c, Request{Path: pathUnreadCount})
	if err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

// MarkNotificationRead marks one notification as read.
func (g *Gateway) MarkNotificationRead(ctx context.Context, id int64) (*model.Message, error) {
	return call[model.Message](ctx, g.c, Request{Method: http.MethodPost, Path: notificationReadPath(id)})
}

// MarkAllNotificationsRead marks every pending notification as read.
func (g *Gateway) MarkAllNotificationsRead(ctx context.Context) (*model.Message, error) {
	return call[model.Message](ctx, g.c, Request{Method: http.MethodPost, Path: pathMarkAllRead})
}
