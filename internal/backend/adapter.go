// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the typed gateway to the Kenes REST service.
// It defines the API contract (one method per remote operation) and the HTTP
// client every call goes through. Gateway methods never catch errors: every
// failure reaches the caller as an *errors.E of one of the taxonomy kinds.
package backend

import (
	"context"

	"kenes/cli/internal/model"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*model.User, error)
	Profile(ctx context.Context) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, patch model.ProfilePatch) (*model.UserProfile, error)
	Users(ctx context.Context, filters Filters) (*model.Page[model.User], error)
	User(ctx context.Context, id int64) (*model.User, error)

	Applications(ctx context.Context, filters Filters) (*model.Page[model.Application], error)
	Application(ctx context.Context, id int64) (*model.Application, error)
	CreateApplication(ctx context.Context, in model.ApplicationInput) (*model.Application, error)
	UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (*model.Application, error)
	ApplicationStats(ctx context.Context) (*model.ApplicationStats, error)
	ApplicationHistory(ctx context.Context, id int64) (*model.Page[model.ApplicationHistoryEntry], error)
	ApplicationComments(ctx context.Context, id int64) (*model.Page[model.ApplicationComment], error)
	AddApplicationComment(ctx context.Context, id int64, in model.ApplicationCommentInput) (*model.ApplicationComment, error)

	DocumentTemplates(ctx context.Context) (*model.Page[model.DocumentTemplate], error)
	DocumentTemplate(ctx context.Context, code string) (*model.DocumentTemplate, error)
	Documents(ctx context.Context, filters Filters) (*model.Page[model.GeneratedDocument], error)
	GenerateDocument(ctx context.Context, in model.DocumentInput) (*model.GeneratedDocument, error)
	// DownloadDocument returns the raw file; it is never parsed.
	DownloadDocument(ctx context.Context, id int64) (*model.Blob, error)

	Notifications(ctx context.Context, filters Filters) (*model.Page[model.Notification], error)
	UnreadNotificationCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) (*model.Message, error)
	MarkAllNotificationsRead(ctx context.Context) (*model.Message, error)

	SendAIMessage(ctx context.Context, req model.AIChatRequest) (*model.AIChatReply, error)
	AIConversations(ctx context.Context) (*model.Page[model.AIConversation], error)
	AIConversationHistory(ctx context.Context, sessionID string) (*model.AIHistory, error)
	CloseAIConversation(ctx context.Context, sessionID string) (*model.Message, error)
}
