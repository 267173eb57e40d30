// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package queries

import (
	"time"

	"kenes/cli/internal/backend"
	"kenes/cli/internal/cache"
)

// Operation names used in cache keys.
const (
	OpApplications      = "applications"
	OpApplication       = "application"
	OpApplicationStats  = "applicationStats"
	OpAppHistory        = "applicationHistory"
	OpAppComments       = "applicationComments"
	OpProfile           = "profile"
	OpCurrentUser       = "currentUser"
	OpUsers             = "users"
	OpUser              = "user"
	OpDocumentTemplates = "documentTemplates"
	OpDocumentTemplate  = "documentTemplate"
	OpDocuments         = "documents"
	OpNotifications     = "notifications"
	OpUnreadCount       = "unreadNotifications"
	OpAIConversations   = "aiConversations"
	OpAIHistory         = "aiHistory"
)

// TemplatesStaleTime is the staleness window for document templates, which
// change rarely.
const TemplatesStaleTime = 10 * time.Minute

func listKey(op string, filters backend.Filters) cache.Key { return cache.NewKey(op, filters) }

func idKey(op string, id int64) cache.Key { return cache.NewKey(op, map[string]int64{"id": id}) }

func idPattern(op string, id int64) cache.Pattern {
	return cache.Match(op, map[string]int64{"id": id})
}

func historyKey(sessionID string) cache.Key {
	return cache.NewKey(OpAIHistory, map[string]string{"session_id": sessionID})
}

func historyPattern(sessionID string) cache.Pattern {
	return cache.Match(OpAIHistory, map[string]string{"session_id": sessionID})
}

// CurrentUserKey is the key under which the signed-in user is cached.
var CurrentUserKey = cache.NewKey(OpCurrentUser, nil)
