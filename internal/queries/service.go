// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package queries exposes every remote read and write of the Kenes service
// through the cache, with the invalidation each write implies.
package queries

import (
	"context"

	"kenes/cli/internal/backend"
	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

// Service is the cached data-access surface used by the commands.
type Service struct {
	api   backend.API
	cache *cache.Client
}

// NewService creates a Service reading through c.
func NewService(api backend.API, c *cache.Client) *Service {
	return &Service{api: api, cache: c}
}

// Cache returns the underlying cache client.
func (s *Service) Cache() *cache.Client { return s.cache }

// Applications

func (s *Service) Applications(ctx context.Context, filters backend.Filters, opts ...cache.ReadOption) (cache.Result[*model.Page[model.Application]], error) {
	return cache.Query(ctx, s.cache, listKey(OpApplications, filters), func(ctx context.Context) (*model.Page[model.Application], error) {
		return s.api.Applications(ctx, filters)
	}, opts...)
}

func (s *Service) Application(ctx context.Context, id int64, opts ...cache.ReadOption) (cache.Result[*model.Application], error) {
	return cache.Query(ctx, s.cache, idKey(OpApplication, id), func(ctx context.Context) (*model.Application, error) {
		return s.api.Application(ctx, id)
	}, opts...)
}

func (s *Service) ApplicationStats(ctx context.Context, opts ...cache.ReadOption) (cache.Result[*model.ApplicationStats], error) {
	return cache.Query(ctx, s.cache, cache.NewKey(OpApplicationStats, nil), s.api.ApplicationStats, opts...)
}

// CreateApplication refreshes every application list and the stats.
func (s *Service) CreateApplication(ctx context.Context, in model.ApplicationInput) (*model.Application, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.Application]{
		Name:        "create_application",
		Success:     "Application created",
		Failure:     "Could not create application",
		Invalidates: cache.Invalidates[*model.Application](cache.All(OpApplications), cache.All(OpApplicationStats)),
	}, func(ctx context.Context) (*model.Application, error) {
		return s.api.CreateApplication(ctx, in)
	})
}

func (s *Service) ApplicationHistory(ctx context.Context, id int64, opts ...cache.ReadOption) (cache.Result[*model.Page[model.ApplicationHistoryEntry]], error) {
	return cache.Query(ctx, s.cache, idKey(OpAppHistory, id), func(ctx context.Context) (*model.Page[model.ApplicationHistoryEntry], error) {
		return s.api.ApplicationHistory(ctx, id)
	}, opts...)
}

func (s *Service) ApplicationComments(ctx context.Context, id int64, opts ...cache.ReadOption) (cache.Result[*model.Page[model.ApplicationComment]], error) {
	return cache.Query(ctx, s.cache, idKey(OpAppComments, id), func(ctx context.Context) (*model.Page[model.ApplicationComment], error) {
		return s.api.ApplicationComments(ctx, id)
	}, opts...)
}

// AddApplicationComment refreshes the comments of that application.
func (s *Service) AddApplicationComment(ctx context.Context, id int64, in model.ApplicationCommentInput) (*model.ApplicationComment, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.ApplicationComment]{
		Name:        "add_application_comment",
		Success:     "Comment added",
		Failure:     "Could not add comment",
		Invalidates: cache.Invalidates[*model.ApplicationComment](idPattern(OpAppComments, id)),
	}, func(ctx context.Context) (*model.ApplicationComment, error) {
		return s.api.AddApplicationComment(ctx, id, in)
	})
}

// UpdateApplication refreshes the application with its history and comments,
// every list and the stats. A status change may carry a comment, which the
// service records in both.
func (s *Service) UpdateApplication(ctx context.Context, id int64, patch model.ApplicationPatch) (*model.Application, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.Application]{
		Name:    "update_application",
		Success: "Application updated",
		Failure: "Could not update application",
		Invalidates: cache.Invalidates[*model.Application](
			idPattern(OpApplication, id),
			idPattern(OpAppHistory, id),
			idPattern(OpAppComments, id),
			cache.All(OpApplications),
			cache.All(OpApplicationStats),
		),
	}, func(ctx context.Context) (*model.Application, error) {
		return s.api.UpdateApplication(ctx, id, patch)
	})
}

// Profile and users

func (s *Service) Profile(ctx context.Context, opts ...cache.ReadOption) (cache.Result[*model.UserProfile], error) {
	return cache.Query(ctx, s.cache, cache.NewKey(OpProfile, nil), s.api.Profile, opts...)
}

// UpdateProfile refreshes the profile and the signed-in user.
func (s *Service) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (*model.UserProfile, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.UserProfile]{
		Name:        "update_profile",
		Success:     "Profile updated",
		Failure:     "Could not update profile",
		Invalidates: cache.Invalidates[*model.UserProfile](cache.All(OpProfile), cache.All(OpCurrentUser)),
	}, func(ctx context.Context) (*model.UserProfile, error) {
		return s.api.UpdateProfile(ctx, patch)
	})
}

func (s *Service) Users(ctx context.Context, filters backend.Filters, opts ...cache.ReadOption) (cache.Result[*model.Page[model.User]], error) {
	return cache.Query(ctx, s.cache, listKey(OpUsers, filters), func(ctx context.Context) (*model.Page[model.User], error) {
		return s.api.Users(ctx, filters)
	}, opts...)
}

func (s *Service) User(ctx context.Context, id int64, opts ...cache.ReadOption) (cache.Result[*model.User], error) {
	return cache.Query(ctx, s.cache, idKey(OpUser, id), func(ctx context.Context) (*model.User, error) {
		return s.api.User(ctx, id)
	}, opts...)
}

// Documents

func (s *Service) DocumentTemplates(ctx context.Context, opts ...cache.ReadOption) (cache.Result[*model.Page[model.DocumentTemplate]], error) {
	opts = append([]cache.ReadOption{cache.StaleTime(TemplatesStaleTime)}, opts...)
	return cache.Query(ctx, s.cache, cache.NewKey(OpDocumentTemplates, nil), s.api.DocumentTemplates, opts...)
}

func (s *Service) DocumentTemplate(ctx context.Context, code string, opts ...cache.ReadOption) (cache.Result[*model.DocumentTemplate], error) {
	opts = append([]cache.ReadOption{cache.StaleTime(TemplatesStaleTime)}, opts...)
	key := cache.NewKey(OpDocumentTemplate, map[string]string{"code": code})
	return cache.Query(ctx, s.cache, key, func(ctx context.Context) (*model.DocumentTemplate, error) {
		return s.api.DocumentTemplate(ctx, code)
	}, opts...)
}

func (s *Service) Documents(ctx context.Context, filters backend.Filters, opts ...cache.ReadOption) (cache.Result[*model.Page[model.GeneratedDocument]], error) {
	return cache.Query(ctx, s.cache, listKey(OpDocuments, filters), func(ctx context.Context) (*model.Page[model.GeneratedDocument], error) {
		return s.api.Documents(ctx, filters)
	}, opts...)
}

// GenerateDocument refreshes every document list.
func (s *Service) GenerateDocument(ctx context.Context, in model.DocumentInput) (*model.GeneratedDocument, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.GeneratedDocument]{
		Name:        "generate_document",
		Success:     "Document generated",
		Failure:     "Could not generate document",
		Invalidates: cache.Invalidates[*model.GeneratedDocument](cache.All(OpDocuments)),
	}, func(ctx context.Context) (*model.GeneratedDocument, error) {
		return s.api.GenerateDocument(ctx, in)
	})
}

// DownloadDocument bypasses the cache; file bodies are not retained.
func (s *Service) DownloadDocument(ctx context.Context, id int64) (*model.Blob, error) {
	return s.api.DownloadDocument(ctx, id)
}

// Notifications

func (s *Service) Notifications(ctx context.Context, filters backend.Filters, opts ...cache.ReadOption) (cache.Result[*model.Page[model.Notification]], error) {
	return cache.Query(ctx, s.cache, listKey(OpNotifications, filters), func(ctx context.Context) (*model.Page[model.Notification], error) {
		return s.api.Notifications(ctx, filters)
	}, opts...)
}

func (s *Service) UnreadNotificationCount(ctx context.Context, opts ...cache.ReadOption) (cache.Result[int], error) {
	return cache.Query(ctx, s.cache, cache.NewKey(OpUnreadCount, nil), s.api.UnreadNotificationCount, opts...)
}

var notificationPatterns = []cache.Pattern{cache.All(OpNotifications), cache.All(OpUnreadCount)}

func (s *Service) MarkNotificationRead(ctx context.Context, id int64) (*model.Message, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.Message]{
		Name:        "mark_notification_read",
		Success:     "Notification marked as read",
		Failure:     "Could not mark notification as read",
		Invalidates: cache.Invalidates[*model.Message](notificationPatterns...),
	}, func(ctx context.Context) (*model.Message, error) {
		return s.api.MarkNotificationRead(ctx, id)
	})
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context) (*model.Message, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.Message]{
		Name:        "mark_all_notifications_read",
		Success:     "All notifications marked as read",
		Failure:     "Could not mark notifications as read",
		Invalidates: cache.Invalidates[*model.Message](notificationPatterns...),
	}, s.api.MarkAllNotificationsRead)
}

// AI assistant

func (s *Service) AIConversations(ctx context.Context, opts ...cache.ReadOption) (cache.Result[*model.Page[model.AIConversation]], error) {
	return cache.Query(ctx, s.cache, cache.NewKey(OpAIConversations, nil), s.api.AIConversations, opts...)
}

func (s *Service) AIConversationHistory(ctx context.Context, sessionID string, opts ...cache.ReadOption) (cache.Result[*model.AIHistory], error) {
	return cache.Query(ctx, s.cache, historyKey(sessionID), func(ctx context.Context) (*model.AIHistory, error) {
		return s.api.AIConversationHistory(ctx, sessionID)
	}, opts...)
}

// SendAIMessage refreshes the conversation list and the history of the
// conversation the reply belongs to, which may have just been created.
func (s *Service) SendAIMessage(ctx context.Context, req model.AIChatRequest) (*model.AIChatReply, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.AIChatReply]{
		Name:    "send_ai_message",
		Success: "Message sent",
		Failure: "Could not send message",
		Invalidates: func(reply *model.AIChatReply) []cache.Pattern {
			sessionID := reply.SessionID
			if sessionID == "" {
				sessionID = req.SessionID
			}
			return []cache.Pattern{cache.All(OpAIConversations), historyPattern(sessionID)}
		},
	}, func(ctx context.Context) (*model.AIChatReply, error) {
		return s.api.SendAIMessage(ctx, req)
	})
}

func (s *Service) CloseAIConversation(ctx context.Context, sessionID string) (*model.Message, error) {
	return cache.Mutate(ctx, s.cache, cache.Mutation[*model.Message]{
		Name:        "close_ai_conversation",
		Success:     "Conversation closed",
		Failure:     "Could not close conversation",
		Invalidates: cache.Invalidates[*model.Message](cache.All(OpAIConversations), historyPattern(sessionID)),
	}, func(ctx context.Context) (*model.Message, error) {
		return s.api.CloseAIConversation(ctx, sessionID)
	})
}
